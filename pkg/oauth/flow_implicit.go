package oauth

import (
	"context"
	"errors"

	"github.com/giantswarm/spotauth/pkg/logging"
)

// ImplicitFlow delivers the access token directly in the redirect fragment.
// There is no token endpoint step and no refresh token; renewing requires
// another full redirect.
type ImplicitFlow struct {
	base
}

// NewImplicitFlow creates an implicit flow. A client secret is rejected.
func NewImplicitFlow(creds Credentials, opts ...FlowOption) (*ImplicitFlow, error) {
	if err := requireClientID(creds); err != nil {
		return nil, err
	}
	if creds.ClientSecret != "" {
		return nil, errors.New("implicit flow is for public clients and must not carry a client secret")
	}
	if creds.RedirectURI == "" {
		return nil, errors.New("implicit flow requires a redirect URI")
	}
	return &ImplicitFlow{base{kind: FlowImplicit, creds: creds, opts: newFlowOptions(opts)}}, nil
}

// BuildAuthorizationURL returns the URL the user agent is sent to, with
// response_type=token.
func (f *ImplicitFlow) BuildAuthorizationURL(req AuthorizationRequest) (string, error) {
	return f.authCodeURL("token", req)
}

// ParseCallback reads the redirect fragment (with or without the leading
// '#', or a full URL). A fragment whose state does not match never yields a token.
func (f *ImplicitFlow) ParseCallback(fragment, expectedState string) (*CallbackResult, error) {
	result, err := parseImplicitFragment(fragment, expectedState)
	if err != nil {
		logging.Warn("OAuth", "Rejected implicit grant callback: %v", err)
		return nil, err
	}
	logging.Debug("OAuth", "Accepted implicit grant callback (expires_in=%ds)", result.Token.ExpiresIn)
	return result, nil
}

// Refresh always fails with GrantNoRefreshToken.
func (f *ImplicitFlow) Refresh(context.Context, string) (*TokenResponse, error) {
	return nil, noRefresh(f.kind)
}
