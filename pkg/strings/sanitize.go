// Package strings cleans text received from remote parties before it is
// put into error messages or printed to a terminal.
package strings

import (
	"strings"
	"unicode"
)

// DefaultMaxLen bounds server-provided descriptions in error messages.
const DefaultMaxLen = 200

// MinTruncateLen is the smallest maxLen Truncate honours; it leaves room for
// one character plus "...".
const MinTruncateLen = 4

// SingleLine drops control characters, including terminal escape
// sequences' ESC, and collapses all whitespace runs into single spaces.
func SingleLine(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return ' '
		case unicode.IsControl(r), r == unicode.ReplacementChar:
			return -1
		default:
			return r
		}
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// Truncate shortens s to at most maxLen runes, ending in "..." when
// anything was cut. maxLen below MinTruncateLen is raised to it.
func Truncate(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// Sanitize is SingleLine followed by Truncate to DefaultMaxLen.
func Sanitize(s string) string {
	return Truncate(SingleLine(s), DefaultMaxLen)
}
