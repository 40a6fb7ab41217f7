package oauth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// PKCEFlow is the authorization code grant for public clients (RFC 7636).
// No client secret is held or sent.
type PKCEFlow struct {
	base
}

// NewPKCEFlow creates a PKCE flow. A client secret is rejected.
func NewPKCEFlow(creds Credentials, opts ...FlowOption) (*PKCEFlow, error) {
	if err := requireClientID(creds); err != nil {
		return nil, err
	}
	if creds.ClientSecret != "" {
		return nil, errors.New("PKCE flow is for public clients and must not carry a client secret")
	}
	if creds.RedirectURI == "" {
		return nil, errors.New("PKCE flow requires a redirect URI")
	}
	return &PKCEFlow{base{kind: FlowPKCE, creds: creds, opts: newFlowOptions(opts)}}, nil
}

// BuildAuthorizationURL returns the URL the user agent is sent to. req must
// carry an S256 code challenge, see AuthorizationRequest.WithPKCE.
func (f *PKCEFlow) BuildAuthorizationURL(req AuthorizationRequest) (string, error) {
	if req.CodeChallenge == "" {
		return "", errors.New("PKCE authorization request requires a code challenge")
	}
	method := req.CodeChallengeMethod
	if method == "" {
		method = ChallengeMethodS256
	}
	if method != ChallengeMethodS256 {
		return "", fmt.Errorf("unsupported code challenge method %q", method)
	}

	return f.authCodeURL("code", req,
		oauth2.SetAuthURLParam("code_challenge", req.CodeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", method),
	)
}

// Exchange trades an authorization code and the matching code verifier for tokens.
func (f *PKCEFlow) Exchange(ctx context.Context, code, redirectURI, codeVerifier string) (*TokenResponse, error) {
	if err := ValidateVerifier(codeVerifier); err != nil {
		return nil, &GrantError{Kind: GrantInvalidRequest, Op: "exchange", Description: err.Error()}
	}
	return exchangeCode(ctx, &f.base, code, redirectURI, oauth2.VerifierOption(codeVerifier))
}

// Refresh exchanges a refresh token for a new access token, authenticating
// with client_id only.
func (f *PKCEFlow) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	return f.refreshWith(ctx, refreshToken)
}
