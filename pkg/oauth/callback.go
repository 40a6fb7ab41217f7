package oauth

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	pkgstrings "github.com/giantswarm/spotauth/pkg/strings"
)

// CallbackResult is what an authorization redirect carried.
// Code flows fill Code; the implicit flow fills Token.
type CallbackResult struct {
	// Code is the authorization code from the OAuth provider.
	Code string

	// State is the state parameter to verify against the original request.
	State string

	// Token is the access token delivered in an implicit-grant fragment.
	Token *TokenResponse

	// Error is the error code if the authorization failed.
	Error string

	// ErrorDescription is a human-readable error description.
	ErrorDescription string
}

// IsError returns true if the callback result represents an error.
func (r *CallbackResult) IsError() bool {
	return r.Error != ""
}

// ParseCodeCallback validates the query of a code-flow redirect.
// State is checked before anything else is looked at.
func ParseCodeCallback(query url.Values, expectedState string) (*CallbackResult, error) {
	result := &CallbackResult{
		Code:             query.Get("code"),
		State:            query.Get("state"),
		Error:            query.Get("error"),
		ErrorDescription: pkgstrings.Sanitize(query.Get("error_description")),
	}

	if err := VerifyState(expectedState, result.State); err != nil {
		return nil, err
	}
	if result.IsError() {
		return nil, &CallbackError{Kind: CallbackServerDenied, Code: result.Error, Description: result.ErrorDescription}
	}
	if result.Code == "" {
		return nil, &CallbackError{Kind: CallbackMalformed, Description: "callback carried no authorization code"}
	}
	return result, nil
}

// ParseCodeCallbackURL is ParseCodeCallback for a full redirect URL.
func ParseCodeCallbackURL(rawURL, expectedState string) (*CallbackResult, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &CallbackError{Kind: CallbackMalformed, Err: err}
	}
	return ParseCodeCallback(u.Query(), expectedState)
}

// parseImplicitFragment validates an implicit-grant fragment. The token is
// only placed in the result once the state has been verified.
func parseImplicitFragment(fragment, expectedState string) (*CallbackResult, error) {
	if i := strings.IndexByte(fragment, '#'); i >= 0 {
		fragment = fragment[i+1:]
	}
	if fragment == "" {
		return nil, &CallbackError{Kind: CallbackMalformed, Description: "empty fragment"}
	}

	values, err := url.ParseQuery(fragment)
	if err != nil {
		return nil, &CallbackError{Kind: CallbackMalformed, Err: err}
	}

	if err := VerifyState(expectedState, values.Get("state")); err != nil {
		return nil, err
	}

	if code := values.Get("error"); code != "" {
		return nil, &CallbackError{Kind: CallbackServerDenied, Code: code, Description: pkgstrings.Sanitize(values.Get("error_description"))}
	}

	accessToken := values.Get("access_token")
	if accessToken == "" {
		return nil, &CallbackError{Kind: CallbackMalformed, Description: "fragment carried no access_token"}
	}

	tokenType := values.Get("token_type")
	if tokenType == "" {
		tokenType = TokenTypeBearer
	} else if !strings.EqualFold(tokenType, TokenTypeBearer) {
		return nil, &CallbackError{Kind: CallbackMalformed, Description: fmt.Sprintf("unsupported token_type %q", tokenType)}
	}

	token := &TokenResponse{
		AccessToken: accessToken,
		TokenType:   TokenTypeBearer,
		Scope:       values.Get("scope"),
	}
	if raw := values.Get("expires_in"); raw != "" {
		expiresIn, err := strconv.Atoi(raw)
		if err != nil || expiresIn < 0 {
			return nil, &CallbackError{Kind: CallbackMalformed, Description: fmt.Sprintf("invalid expires_in %q", raw)}
		}
		token.ExpiresIn = expiresIn
		token.SetExpiresAtFromExpiresIn()
	}

	return &CallbackResult{State: values.Get("state"), Token: token}, nil
}
