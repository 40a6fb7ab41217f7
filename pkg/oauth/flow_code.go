package oauth

import (
	"context"
	"errors"

	"github.com/giantswarm/spotauth/pkg/logging"

	"golang.org/x/oauth2"
)

// AuthorizationCodeFlow is the confidential-client authorization code grant.
// The client secret is sent to the token endpoint using the configured
// auth style (HTTP Basic by default).
type AuthorizationCodeFlow struct {
	base
}

// NewAuthorizationCodeFlow creates an authorization code flow. The
// credentials must carry a client ID, client secret and redirect URI.
func NewAuthorizationCodeFlow(creds Credentials, opts ...FlowOption) (*AuthorizationCodeFlow, error) {
	if err := requireClientID(creds); err != nil {
		return nil, err
	}
	if creds.ClientSecret == "" {
		return nil, errors.New("authorization code flow requires a client secret")
	}
	if creds.RedirectURI == "" {
		return nil, errors.New("authorization code flow requires a redirect URI")
	}
	return &AuthorizationCodeFlow{base{kind: FlowAuthorizationCode, creds: creds, opts: newFlowOptions(opts)}}, nil
}

// BuildAuthorizationURL returns the URL the user agent is sent to.
// Any PKCE challenge on req is ignored; use PKCEFlow for public clients.
func (f *AuthorizationCodeFlow) BuildAuthorizationURL(req AuthorizationRequest) (string, error) {
	return f.authCodeURL("code", req)
}

// Exchange trades an authorization code for tokens. An empty redirectURI
// uses the one from the flow credentials; it must match the one used to
// build the authorization URL.
func (f *AuthorizationCodeFlow) Exchange(ctx context.Context, code, redirectURI string) (*TokenResponse, error) {
	return exchangeCode(ctx, &f.base, code, redirectURI)
}

// Refresh exchanges a refresh token for a new access token. When the server
// rotates the refresh token the new one is returned, otherwise the old one.
func (f *AuthorizationCodeFlow) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	return f.refreshWith(ctx, refreshToken)
}

func exchangeCode(ctx context.Context, b *base, code, redirectURI string, opts ...oauth2.AuthCodeOption) (*TokenResponse, error) {
	if code == "" {
		return nil, &GrantError{Kind: GrantInvalidRequest, Op: "exchange", Description: "authorization code is empty"}
	}
	if redirectURI == "" {
		redirectURI = b.creds.RedirectURI
	}

	tok, err := b.config(redirectURI, nil).Exchange(b.clientContext(ctx), code, opts...)
	if err != nil {
		ge := newGrantError("exchange", err)
		logging.Debug("OAuth", "Code exchange failed for %s flow: %s", b.kind, ge.Kind)
		return nil, ge
	}

	resp := tokenResponseFromOAuth2(tok)
	logging.Debug("OAuth", "Exchanged %s authorization code (expires_in=%ds, has_refresh_token=%t)",
		b.kind, resp.ExpiresIn, resp.RefreshToken != "")
	return resp, nil
}
