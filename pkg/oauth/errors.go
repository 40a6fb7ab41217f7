package oauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	pkgstrings "github.com/giantswarm/spotauth/pkg/strings"

	"golang.org/x/oauth2"
)

// GrantErrorKind categorizes token endpoint failures.
type GrantErrorKind int

const (
	// GrantInvalidGrant means the code or refresh token was rejected.
	GrantInvalidGrant GrantErrorKind = iota + 1
	// GrantInvalidRequest covers every other 4xx from the token endpoint.
	GrantInvalidRequest
	// GrantNetwork means the token endpoint could not be reached.
	GrantNetwork
	// GrantServerError covers 5xx responses and unusable response bodies.
	GrantServerError
	// GrantNoRefreshToken means there is nothing to refresh with. The caller
	// has to run the initial exchange again.
	GrantNoRefreshToken
)

// String returns the snake_case name of the kind.
func (k GrantErrorKind) String() string {
	switch k {
	case GrantInvalidGrant:
		return "invalid_grant"
	case GrantInvalidRequest:
		return "invalid_request"
	case GrantNetwork:
		return "network"
	case GrantServerError:
		return "server_error"
	case GrantNoRefreshToken:
		return "no_refresh_token"
	default:
		return "unknown"
	}
}

// GrantError is returned by Exchange and Refresh operations.
type GrantError struct {
	Kind GrantErrorKind

	// Op is the operation that failed, for example "exchange" or "refresh".
	Op string

	// StatusCode is the HTTP status of the token endpoint response, 0 if none.
	StatusCode int

	// Code and Description carry the server's error and error_description.
	Code        string
	Description string

	// Err is the underlying error.
	Err error
}

// Sentinels for errors.Is matching on the kind only.
var (
	ErrInvalidGrant   = &GrantError{Kind: GrantInvalidGrant}
	ErrInvalidRequest = &GrantError{Kind: GrantInvalidRequest}
	ErrNetwork        = &GrantError{Kind: GrantNetwork}
	ErrServerError    = &GrantError{Kind: GrantServerError}
	ErrNoRefreshToken = &GrantError{Kind: GrantNoRefreshToken}
)

func (e *GrantError) Error() string {
	msg := "oauth"
	if e.Op != "" {
		msg += " " + e.Op
	}
	msg += " failed: " + e.Kind.String()
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Code != "" && e.Code != e.Kind.String() {
		msg += ": " + e.Code
	}
	if e.Description != "" {
		msg += ": " + e.Description
	}
	if e.Err != nil && e.Code == "" && e.Description == "" {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection.
func (e *GrantError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a GrantError of the same kind.
func (e *GrantError) Is(target error) bool {
	t, ok := target.(*GrantError)
	return ok && t.Kind == e.Kind
}

// newGrantError classifies an error returned by golang.org/x/oauth2.
func newGrantError(op string, err error) *GrantError {
	var ge *GrantError
	if errors.As(err, &ge) {
		return ge
	}

	ge = &GrantError{Op: op, Err: err}

	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) {
		ge.Code = rErr.ErrorCode
		ge.Description = pkgstrings.Sanitize(rErr.ErrorDescription)
		if rErr.Response != nil {
			ge.StatusCode = rErr.Response.StatusCode
		}
		ge.Kind = classifyStatus(ge.StatusCode, ge.Code)
		return ge
	}

	var urlErr *url.Error
	var netErr net.Error
	switch {
	case errors.As(err, &urlErr), errors.As(err, &netErr),
		errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		ge.Kind = GrantNetwork
	default:
		// 2xx with an unusable body, for example a missing access_token
		ge.Kind = GrantServerError
	}
	return ge
}

func classifyStatus(status int, code string) GrantErrorKind {
	switch {
	case code == "invalid_grant":
		return GrantInvalidGrant
	case status >= http.StatusInternalServerError:
		return GrantServerError
	case status >= http.StatusBadRequest:
		return GrantInvalidRequest
	default:
		return GrantServerError
	}
}

// CallbackErrorKind categorizes failures when reading an authorization redirect.
type CallbackErrorKind int

const (
	// CallbackServerDenied means the user or server refused the authorization.
	CallbackServerDenied CallbackErrorKind = iota + 1
	// CallbackStateMismatch means the state did not round-trip unchanged.
	CallbackStateMismatch
	// CallbackMalformed means required parameters were missing or unparseable.
	CallbackMalformed
)

// String returns the snake_case name of the kind.
func (k CallbackErrorKind) String() string {
	switch k {
	case CallbackServerDenied:
		return "server_denied"
	case CallbackStateMismatch:
		return "state_mismatch"
	case CallbackMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// CallbackError is returned when an authorization redirect cannot be accepted.
// None of the kinds are retryable; a new authorization round-trip is required.
type CallbackError struct {
	Kind CallbackErrorKind

	// Code and Description carry the server's error and error_description
	// for ServerDenied.
	Code        string
	Description string

	Err error
}

// Sentinels for errors.Is matching on the kind only.
var (
	ErrServerDenied  = &CallbackError{Kind: CallbackServerDenied}
	ErrStateMismatch = &CallbackError{Kind: CallbackStateMismatch}
	ErrMalformed     = &CallbackError{Kind: CallbackMalformed}
)

func (e *CallbackError) Error() string {
	msg := "oauth callback rejected: " + e.Kind.String()
	if e.Code != "" {
		msg += ": " + e.Code
	}
	if e.Description != "" {
		msg += ": " + e.Description
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection.
func (e *CallbackError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a CallbackError of the same kind.
func (e *CallbackError) Is(target error) bool {
	t, ok := target.(*CallbackError)
	return ok && t.Kind == e.Kind
}
