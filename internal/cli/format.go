package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/giantswarm/spotauth/pkg/auth"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// FormatDuration formats a duration in a human-readable way.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		return "expired"
	}
	if d < time.Minute {
		return "< 1 minute"
	}
	if d < time.Hour {
		minutes := int(d.Minutes())
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	if d < 24*time.Hour {
		hours := int(d.Hours())
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	days := int(d.Hours() / 24)
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

// FormatExpiry formats a time as "in X" or "expired X ago".
func FormatExpiry(expiresAt time.Time) string {
	if expiresAt.IsZero() {
		return "-"
	}
	remaining := time.Until(expiresAt)
	if remaining > 0 {
		return "in " + FormatDuration(remaining)
	}
	return text.FgYellow.Sprintf("expired %s ago", FormatDuration(-remaining))
}

// FormatStatus colours a holder status.
func FormatStatus(s string) string {
	switch s {
	case auth.StatusAuthenticated.String():
		return text.FgGreen.Sprint(s)
	case auth.StatusFailed.String():
		return text.FgRed.Sprint(s)
	case auth.StatusUnauthenticated.String():
		return text.FgYellow.Sprint(s)
	default:
		return s
	}
}

// Check renders a yes/no cell.
func Check(ok bool) string {
	if ok {
		return text.FgGreen.Sprint("yes")
	}
	return "no"
}

// NewTable returns a rounded table writing to out.
func NewTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	return t
}
