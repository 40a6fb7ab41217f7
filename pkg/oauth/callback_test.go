package oauth

import (
	"errors"
	"net/url"
	"testing"
)

func TestImplicitFlow_BuildAuthorizationURL(t *testing.T) {
	flow, err := NewImplicitFlow(public)
	if err != nil {
		t.Fatalf("NewImplicitFlow() error = %v", err)
	}

	raw, err := flow.BuildAuthorizationURL(AuthorizationRequest{State: "s1", Scopes: Scopes{"streaming"}})
	if err != nil {
		t.Fatalf("BuildAuthorizationURL() error = %v", err)
	}
	u, _ := url.Parse(raw)
	if got := u.Query().Get("response_type"); got != "token" {
		t.Errorf("response_type = %q, want token", got)
	}
	if got := u.Query().Get("state"); got != "s1" {
		t.Errorf("state = %q", got)
	}
}

func TestImplicitFlow_ParseCallback(t *testing.T) {
	flow, _ := NewImplicitFlow(public)

	tests := []struct {
		name     string
		fragment string
		expected string
		wantKind CallbackErrorKind
	}{
		{
			name:     "state mismatch",
			fragment: "#access_token=leaked&token_type=Bearer&expires_in=3600&state=attacker",
			expected: "s1",
			wantKind: CallbackStateMismatch,
		},
		{
			name:     "state missing",
			fragment: "access_token=leaked&token_type=Bearer&expires_in=3600",
			expected: "s1",
			wantKind: CallbackStateMismatch,
		},
		{
			name:     "expected state missing",
			fragment: "access_token=leaked&state=s1",
			expected: "",
			wantKind: CallbackStateMismatch,
		},
		{
			name:     "denied",
			fragment: "error=access_denied&state=s1",
			expected: "s1",
			wantKind: CallbackServerDenied,
		},
		{
			name:     "no access token",
			fragment: "token_type=Bearer&state=s1",
			expected: "s1",
			wantKind: CallbackMalformed,
		},
		{
			name:     "bad expires_in",
			fragment: "access_token=a&expires_in=soon&state=s1",
			expected: "s1",
			wantKind: CallbackMalformed,
		},
		{
			name:     "wrong token type",
			fragment: "access_token=a&token_type=mac&state=s1",
			expected: "s1",
			wantKind: CallbackMalformed,
		},
		{
			name:     "unparseable",
			fragment: "access_token=%zz&state=s1",
			expected: "s1",
			wantKind: CallbackMalformed,
		},
		{
			name:     "empty",
			fragment: "#",
			expected: "s1",
			wantKind: CallbackMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := flow.ParseCallback(tt.fragment, tt.expected)
			if result != nil {
				t.Fatalf("expected no result, got %+v", result)
			}
			var cbErr *CallbackError
			if !errors.As(err, &cbErr) {
				t.Fatalf("error = %v, want *CallbackError", err)
			}
			if cbErr.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", cbErr.Kind, tt.wantKind)
			}
		})
	}

	t.Run("success", func(t *testing.T) {
		result, err := flow.ParseCallback("http://127.0.0.1:8888/callback#access_token=tok&token_type=Bearer&expires_in=3600&state=s1", "s1")
		if err != nil {
			t.Fatalf("ParseCallback() error = %v", err)
		}
		if result.Token == nil || result.Token.AccessToken != "tok" {
			t.Fatalf("unexpected result %+v", result)
		}
		if result.Token.ExpiresIn != 3600 || result.Token.ExpiresAt.IsZero() {
			t.Errorf("unexpected expiry in %+v", result.Token)
		}
		if result.Token.RefreshToken != "" {
			t.Error("implicit grant must not yield a refresh token")
		}
		if result.State != "s1" {
			t.Errorf("State = %q", result.State)
		}
	})

	t.Run("denied carries server description", func(t *testing.T) {
		_, err := flow.ParseCallback("error=access_denied&error_description=User+said+no&state=s1", "s1")
		var cbErr *CallbackError
		if !errors.As(err, &cbErr) {
			t.Fatalf("error = %v", err)
		}
		if cbErr.Code != "access_denied" || cbErr.Description != "User said no" {
			t.Errorf("unexpected error %+v", cbErr)
		}
		if !errors.Is(err, ErrServerDenied) {
			t.Error("expected errors.Is(err, ErrServerDenied)")
		}
	})
}

func TestParseCodeCallback(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		result, err := ParseCodeCallbackURL("http://127.0.0.1:8888/callback?code=abc&state=s1", "s1")
		if err != nil {
			t.Fatalf("ParseCodeCallbackURL() error = %v", err)
		}
		if result.Code != "abc" || result.State != "s1" || result.IsError() {
			t.Errorf("unexpected result %+v", result)
		}
	})

	t.Run("state checked before code is exposed", func(t *testing.T) {
		result, err := ParseCodeCallback(url.Values{"code": {"abc"}, "state": {"other"}}, "s1")
		if result != nil {
			t.Fatal("code exposed despite state mismatch")
		}
		if !errors.Is(err, ErrStateMismatch) {
			t.Errorf("error = %v, want ErrStateMismatch", err)
		}
	})

	t.Run("denied", func(t *testing.T) {
		_, err := ParseCodeCallback(url.Values{"error": {"access_denied"}, "state": {"s1"}}, "s1")
		if !errors.Is(err, ErrServerDenied) {
			t.Errorf("error = %v, want ErrServerDenied", err)
		}
	})

	t.Run("description is flattened", func(t *testing.T) {
		_, err := ParseCodeCallback(url.Values{
			"error":             {"access_denied"},
			"error_description": {"Denied\n\x1b[2Jby user"},
			"state":             {"s1"},
		}, "s1")
		var cbErr *CallbackError
		if !errors.As(err, &cbErr) {
			t.Fatalf("error = %v", err)
		}
		if cbErr.Description != "Denied [2Jby user" {
			t.Errorf("Description = %q", cbErr.Description)
		}
	})

	t.Run("missing code", func(t *testing.T) {
		_, err := ParseCodeCallback(url.Values{"state": {"s1"}}, "s1")
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("error = %v, want ErrMalformed", err)
		}
	})

	t.Run("bad URL", func(t *testing.T) {
		_, err := ParseCodeCallbackURL("://bad", "s1")
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("error = %v, want ErrMalformed", err)
		}
	})
}
