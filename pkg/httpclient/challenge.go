package httpclient

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// Challenge is a parsed WWW-Authenticate header from a 401 response.
type Challenge struct {
	Scheme           string
	Realm            string
	Scope            string
	Error            string
	ErrorDescription string
}

// InvalidToken reports whether the server rejected the token itself
// rather than asking for different scopes.
func (c *Challenge) InvalidToken() bool {
	return c != nil && c.Error == "invalid_token"
}

var authParamRegex = regexp.MustCompile(`(\w+)="([^"]*)"`)

// ParseChallenge parses a WWW-Authenticate header value such as
//
//	Bearer realm="spotify", error="invalid_token", error_description="The access token expired"
func ParseChallenge(header string) (*Challenge, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, fmt.Errorf("empty WWW-Authenticate header")
	}

	parts := strings.SplitN(header, " ", 2)
	challenge := &Challenge{Scheme: parts[0]}
	if len(parts) == 1 {
		return challenge, nil
	}

	for _, match := range authParamRegex.FindAllStringSubmatch(parts[1], -1) {
		value := match[2]
		switch strings.ToLower(match[1]) {
		case "realm":
			challenge.Realm = value
		case "scope":
			challenge.Scope = value
		case "error":
			challenge.Error = value
		case "error_description":
			challenge.ErrorDescription = value
		}
	}
	return challenge, nil
}

// challengeFromResponse returns the challenge of a 401 response, or nil.
func challengeFromResponse(resp *http.Response) *Challenge {
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		return nil
	}
	challenge, err := ParseChallenge(resp.Header.Get("WWW-Authenticate"))
	if err != nil {
		return nil
	}
	return challenge
}
