package cli

import (
	"errors"
	"fmt"

	"github.com/giantswarm/spotauth/internal/tokenstore"
	"github.com/giantswarm/spotauth/pkg/httpclient"
	"github.com/giantswarm/spotauth/pkg/oauth"
)

// AuthRequiredError indicates no usable credential is held for the client.
// Implements error with actionable guidance.
type AuthRequiredError struct {
	// ClientID is the client that needs to sign in.
	ClientID string
	// Reason is the underlying error, if any.
	Reason error
}

// Error returns a user-friendly error message with actionable guidance.
func (e *AuthRequiredError) Error() string {
	return fmt.Sprintf(`Authentication required for client %s

To authenticate, run:
  spotauth login

To check current authentication status:
  spotauth status`, e.ClientID)
}

// Unwrap returns the underlying error.
func (e *AuthRequiredError) Unwrap() error {
	return e.Reason
}

// Is allows errors.Is() to work with wrapped errors.
func (e *AuthRequiredError) Is(target error) bool {
	_, ok := target.(*AuthRequiredError)
	return ok
}

// AuthFailedError indicates an authorization or refresh was rejected.
type AuthFailedError struct {
	// ClientID is the client whose authentication failed.
	ClientID string
	// Reason is the underlying error.
	Reason error
}

// Error returns a user-friendly error message with actionable guidance.
func (e *AuthFailedError) Error() string {
	return fmt.Sprintf(`Authentication failed for client %s: %v

To retry authentication, run:
  spotauth login`, e.ClientID, e.Reason)
}

// Unwrap returns the underlying error.
func (e *AuthFailedError) Unwrap() error {
	return e.Reason
}

// Is allows errors.Is() to work with wrapped errors.
func (e *AuthFailedError) Is(target error) bool {
	_, ok := target.(*AuthFailedError)
	return ok
}

// ClassifyAuthError wraps err in AuthRequiredError or AuthFailedError when
// it means the user has to sign in (again). Other errors are returned as is.
func ClassifyAuthError(err error, clientID string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, tokenstore.ErrNotFound),
		errors.Is(err, httpclient.ErrNoToken),
		errors.Is(err, oauth.ErrNoRefreshToken):
		return &AuthRequiredError{ClientID: clientID, Reason: err}
	case errors.Is(err, oauth.ErrInvalidGrant),
		errors.Is(err, httpclient.ErrRefreshFailed) && !errors.Is(err, oauth.ErrNetwork),
		errors.Is(err, httpclient.ErrStillUnauthorized),
		errors.Is(err, oauth.ErrServerDenied),
		errors.Is(err, oauth.ErrStateMismatch),
		errors.Is(err, oauth.ErrMalformed):
		return &AuthFailedError{ClientID: clientID, Reason: err}
	default:
		return err
	}
}
