package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/giantswarm/spotauth/pkg/logging"

	"golang.org/x/oauth2"
)

// DefaultHTTPTimeout is the default timeout for token endpoint requests.
const DefaultHTTPTimeout = 30 * time.Second

// FlowKind identifies a grant flow variant.
type FlowKind int

const (
	FlowAuthorizationCode FlowKind = iota + 1
	FlowPKCE
	FlowClientCredentials
	FlowImplicit
)

// String returns the configuration name of the flow.
func (k FlowKind) String() string {
	switch k {
	case FlowAuthorizationCode:
		return "code"
	case FlowPKCE:
		return "pkce"
	case FlowClientCredentials:
		return "client-credentials"
	case FlowImplicit:
		return "implicit"
	default:
		return "unknown"
	}
}

// ParseFlowKind is the inverse of FlowKind.String.
func ParseFlowKind(s string) (FlowKind, error) {
	for _, k := range []FlowKind{FlowAuthorizationCode, FlowPKCE, FlowClientCredentials, FlowImplicit} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown flow %q", s)
}

// IssuesRefreshTokens reports whether tokens from this flow may carry a refresh token.
func (k FlowKind) IssuesRefreshTokens() bool {
	return k == FlowAuthorizationCode || k == FlowPKCE
}

// Flow is implemented by the four grant flow variants in this package.
// The set is closed: exhaustive type switches over *AuthorizationCodeFlow,
// *PKCEFlow, *ClientCredentialsFlow and *ImplicitFlow are safe.
type Flow interface {
	// Kind identifies the variant.
	Kind() FlowKind

	// ClientID is the registered client identifier.
	ClientID() string

	// Refresh exchanges a refresh token for a new access token. Flows that
	// never issue refresh tokens return a GrantError of kind GrantNoRefreshToken.
	Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error)

	sealed()
}

// FlowOption configures a flow.
type FlowOption func(*flowOptions)

type flowOptions struct {
	endpoint      oauth2.Endpoint
	authStyleSet  bool
	authStyle     oauth2.AuthStyle
	httpClient    *http.Client
	defaultScopes Scopes
}

// WithEndpoint overrides the accounts service endpoint.
func WithEndpoint(endpoint oauth2.Endpoint) FlowOption {
	return func(o *flowOptions) {
		o.endpoint = endpoint
	}
}

// WithAuthStyle selects how a confidential client authenticates at the
// token endpoint. It has no effect on public clients, which always send
// client_id in the body.
func WithAuthStyle(style oauth2.AuthStyle) FlowOption {
	return func(o *flowOptions) {
		o.authStyle = style
		o.authStyleSet = true
	}
}

// WithHTTPClient sets the HTTP client used for token endpoint calls.
// Request timeouts are taken from this client.
func WithHTTPClient(httpClient *http.Client) FlowOption {
	return func(o *flowOptions) {
		o.httpClient = httpClient
	}
}

// WithScopes sets the scopes requested by the client credentials flow.
func WithScopes(scopes ...string) FlowOption {
	return func(o *flowOptions) {
		o.defaultScopes = Scopes(scopes).Normalize()
	}
}

func newFlowOptions(opts []FlowOption) flowOptions {
	o := flowOptions{
		endpoint:   SpotifyEndpoint,
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.authStyleSet {
		o.endpoint.AuthStyle = o.authStyle
	}
	return o
}

// base holds what every flow shares.
type base struct {
	kind  FlowKind
	creds Credentials
	opts  flowOptions
}

func (b *base) Kind() FlowKind   { return b.kind }
func (b *base) ClientID() string { return b.creds.ClientID }
func (b *base) sealed()          {}

// Credentials returns the client credentials of the flow.
func (b *base) Credentials() Credentials { return b.creds }

// config builds the oauth2.Config for a single call.
func (b *base) config(redirectURI string, scopes Scopes) *oauth2.Config {
	endpoint := b.opts.endpoint
	if b.creds.ClientSecret == "" {
		// public clients must not send an Authorization header
		endpoint.AuthStyle = oauth2.AuthStyleInParams
	}
	return &oauth2.Config{
		ClientID:     b.creds.ClientID,
		ClientSecret: b.creds.ClientSecret,
		Endpoint:     endpoint,
		RedirectURL:  redirectURI,
		Scopes:       scopes.Normalize(),
	}
}

// clientContext attaches the configured HTTP client for golang.org/x/oauth2.
func (b *base) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, b.opts.httpClient)
}

// authCodeURL renders an authorization URL for the given response type.
func (b *base) authCodeURL(responseType string, req AuthorizationRequest, extra ...oauth2.AuthCodeOption) (string, error) {
	if req.State == "" {
		return "", errors.New("authorization request requires a state value")
	}
	if b.creds.RedirectURI == "" {
		return "", errors.New("authorization request requires a redirect URI")
	}

	opts := []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("response_type", responseType)}
	if req.ShowDialog {
		opts = append(opts, oauth2.SetAuthURLParam("show_dialog", "true"))
	}
	opts = append(opts, extra...)

	u := b.config(b.creds.RedirectURI, req.Scopes).AuthCodeURL(req.State, opts...)
	logging.Debug("OAuth", "Built %s authorization URL (response_type=%s, scopes=%d)", b.kind, responseType, len(req.Scopes))
	return u, nil
}

// refreshWith runs a refresh_token grant through golang.org/x/oauth2.
// golang.org/x/oauth2 keeps the old refresh token when the server omits a new one.
func (b *base) refreshWith(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	if refreshToken == "" {
		return nil, &GrantError{Kind: GrantNoRefreshToken, Op: "refresh", Description: "no refresh token available"}
	}

	src := b.config("", nil).TokenSource(b.clientContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		ge := newGrantError("refresh", err)
		logging.Debug("OAuth", "Refresh failed for %s flow: %s", b.kind, ge.Kind)
		return nil, ge
	}

	resp := tokenResponseFromOAuth2(tok)
	if resp.RefreshToken == "" {
		resp.RefreshToken = refreshToken
	}
	logging.Debug("OAuth", "Refreshed %s token (expires_in=%ds, rotated=%t)", b.kind, resp.ExpiresIn, resp.RefreshToken != refreshToken)
	return resp, nil
}

func noRefresh(kind FlowKind) error {
	return &GrantError{
		Kind:        GrantNoRefreshToken,
		Op:          "refresh",
		Description: fmt.Sprintf("the %s flow does not issue refresh tokens", kind),
	}
}

func requireClientID(creds Credentials) error {
	if creds.ClientID == "" {
		return errors.New("client ID is required")
	}
	return nil
}
