package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

func TestNewGrantError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind GrantErrorKind
	}{
		{
			name:     "invalid_grant",
			err:      &oauth2.RetrieveError{Response: &http.Response{StatusCode: 400}, ErrorCode: "invalid_grant"},
			wantKind: GrantInvalidGrant,
		},
		{
			name:     "other 4xx",
			err:      &oauth2.RetrieveError{Response: &http.Response{StatusCode: 401}, ErrorCode: "invalid_client"},
			wantKind: GrantInvalidRequest,
		},
		{
			name:     "5xx",
			err:      &oauth2.RetrieveError{Response: &http.Response{StatusCode: 503}},
			wantKind: GrantServerError,
		},
		{
			name:     "unreachable",
			err:      &url.Error{Op: "Post", URL: "https://accounts.example.test/api/token", Err: errors.New("connection refused")},
			wantKind: GrantNetwork,
		},
		{
			name:     "deadline",
			err:      fmt.Errorf("post: %w", context.DeadlineExceeded),
			wantKind: GrantNetwork,
		},
		{
			name:     "unusable body",
			err:      errors.New("oauth2: server response missing access_token"),
			wantKind: GrantServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ge := newGrantError("refresh", tt.err)
			if ge.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", ge.Kind, tt.wantKind)
			}
			if !errors.Is(ge, &GrantError{Kind: tt.wantKind}) {
				t.Errorf("errors.Is(%v) failed for kind %v", ge, tt.wantKind)
			}
		})
	}
}

func TestNewGrantError_KeepsExisting(t *testing.T) {
	orig := &GrantError{Kind: GrantNoRefreshToken, Op: "refresh"}
	if got := newGrantError("exchange", fmt.Errorf("wrapped: %w", orig)); got != orig {
		t.Errorf("expected the existing GrantError to be returned, got %v", got)
	}
}

func TestGrantError_Error(t *testing.T) {
	ge := newGrantError("exchange", &oauth2.RetrieveError{
		Response:         &http.Response{StatusCode: 400},
		ErrorCode:        "invalid_grant",
		ErrorDescription: "Invalid\nauthorization code\x07",
	})

	msg := ge.Error()
	want := "oauth exchange failed: invalid_grant (status 400): Invalid authorization code"
	if msg != want {
		t.Errorf("Error() = %q, want %q", msg, want)
	}
	if errors.Is(ge, ErrNoRefreshToken) {
		t.Error("invalid_grant must not match ErrNoRefreshToken")
	}
}

func TestCallbackError(t *testing.T) {
	err := error(&CallbackError{Kind: CallbackServerDenied, Code: "access_denied", Description: "User said no"})
	if !errors.Is(err, ErrServerDenied) || errors.Is(err, ErrStateMismatch) {
		t.Errorf("unexpected errors.Is results for %v", err)
	}
	if !strings.Contains(err.Error(), "server_denied: access_denied: User said no") {
		t.Errorf("Error() = %q", err.Error())
	}

	wrapped := fmt.Errorf("login: %w", &CallbackError{Kind: CallbackMalformed, Err: errors.New("bad escape")})
	if !errors.Is(wrapped, ErrMalformed) {
		t.Error("expected wrapped error to match ErrMalformed")
	}
}
