package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"

	pkgstrings "github.com/giantswarm/spotauth/pkg/strings"
)

// AuthErrorKind classifies why an authenticated request could not be made.
type AuthErrorKind int

const (
	// AuthNoToken means no access token was held; nothing was sent.
	AuthNoToken AuthErrorKind = iota + 1

	// AuthRefreshFailed means the server answered 401 and the refresh
	// that followed failed.
	AuthRefreshFailed

	// AuthStillUnauthorized means the retry with a freshly refreshed token
	// was answered with 401 again.
	AuthStillUnauthorized
)

func (k AuthErrorKind) String() string {
	switch k {
	case AuthNoToken:
		return "no_token"
	case AuthRefreshFailed:
		return "refresh_failed"
	case AuthStillUnauthorized:
		return "refresh_succeeded_but_still_unauthorized"
	default:
		return "unknown"
	}
}

// AuthError is returned by Transport and Client when a request could not be
// authenticated. For AuthRefreshFailed, Err is the refresh error.
type AuthError struct {
	Kind      AuthErrorKind
	Method    string
	URL       string
	Challenge *Challenge
	Err       error
}

func (e *AuthError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Kind)
	if e.Challenge != nil && e.Challenge.ErrorDescription != "" {
		msg += ": " + e.Challenge.ErrorDescription
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is matches AuthError sentinels by kind.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrNoToken           = &AuthError{Kind: AuthNoToken}
	ErrRefreshFailed     = &AuthError{Kind: AuthRefreshFailed}
	ErrStillUnauthorized = &AuthError{Kind: AuthStillUnauthorized}
)

var errNoTokenSource = errors.New("httpclient: token source is nil")

const (
	maxErrorBodySnippet   = 200
	maxErrorBodyReadBytes = 64 << 10
)

// StatusError is returned by Client helpers for non-2xx responses that are
// not authentication failures.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Message)
}

// apiErrorBody is the Web API error envelope.
type apiErrorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

func newStatusError(status int, body []byte) *StatusError {
	var envelope apiErrorBody
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return &StatusError{StatusCode: status, Message: pkgstrings.Truncate(pkgstrings.SingleLine(envelope.Error.Message), maxErrorBodySnippet)}
	}
	return &StatusError{
		StatusCode: status,
		Message:    pkgstrings.Truncate(pkgstrings.SingleLine(string(body)), maxErrorBodySnippet),
	}
}
