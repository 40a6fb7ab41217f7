package oauth

import (
	"context"
	"errors"

	"github.com/giantswarm/spotauth/pkg/logging"

	"golang.org/x/oauth2/clientcredentials"
)

// ClientCredentialsFlow is the app-only grant. It has no user context and
// never yields a refresh token; renewing means calling Exchange again.
type ClientCredentialsFlow struct {
	base
}

// NewClientCredentialsFlow creates a client credentials flow. The
// credentials must carry a client ID and secret.
func NewClientCredentialsFlow(creds Credentials, opts ...FlowOption) (*ClientCredentialsFlow, error) {
	if err := requireClientID(creds); err != nil {
		return nil, err
	}
	if creds.ClientSecret == "" {
		return nil, errors.New("client credentials flow requires a client secret")
	}
	return &ClientCredentialsFlow{base{kind: FlowClientCredentials, creds: creds, opts: newFlowOptions(opts)}}, nil
}

// Exchange requests a new app-only access token.
func (f *ClientCredentialsFlow) Exchange(ctx context.Context) (*TokenResponse, error) {
	cfg := clientcredentials.Config{
		ClientID:     f.creds.ClientID,
		ClientSecret: f.creds.ClientSecret,
		TokenURL:     f.opts.endpoint.TokenURL,
		Scopes:       f.opts.defaultScopes,
		AuthStyle:    f.opts.endpoint.AuthStyle,
	}

	tok, err := cfg.Token(f.clientContext(ctx))
	if err != nil {
		ge := newGrantError("exchange", err)
		logging.Debug("OAuth", "Client credentials exchange failed: %s", ge.Kind)
		return nil, ge
	}

	resp := tokenResponseFromOAuth2(tok)
	// a refresh token must never be held for this grant
	resp.RefreshToken = ""
	logging.Debug("OAuth", "Obtained client credentials token (expires_in=%ds)", resp.ExpiresIn)
	return resp, nil
}

// Refresh always fails with GrantNoRefreshToken.
func (f *ClientCredentialsFlow) Refresh(context.Context, string) (*TokenResponse, error) {
	return nil, noRefresh(f.kind)
}
