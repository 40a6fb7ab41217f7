package oauth

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// DefaultExpiryMargin is the default margin when checking token expiry.
// This accounts for clock skew and network latency.
const DefaultExpiryMargin = 30 * time.Second

// TokenRefreshThreshold is the duration before token expiry when tokens should be proactively refreshed.
const TokenRefreshThreshold = 5 * time.Minute

// TokenTypeBearer is the only token type issued by the accounts service.
const TokenTypeBearer = "Bearer"

// ChallengeMethodS256 is the only supported PKCE challenge method.
const ChallengeMethodS256 = "S256"

// Accounts service and Web API locations.
const (
	SpotifyAuthURL  = "https://accounts.spotify.com/authorize"
	SpotifyTokenURL = "https://accounts.spotify.com/api/token"
	SpotifyAPIURL   = "https://api.spotify.com/v1"
)

// SpotifyEndpoint is the accounts service endpoint. Confidential clients
// authenticate with HTTP Basic.
var SpotifyEndpoint = oauth2.Endpoint{
	AuthURL:   SpotifyAuthURL,
	TokenURL:  SpotifyTokenURL,
	AuthStyle: oauth2.AuthStyleInHeader,
}

// ParseAuthStyle converts a configuration value into an oauth2.AuthStyle.
// Accepted values are "header" (HTTP Basic), "params" (request body) and
// "auto" or empty (probe header first, then body).
func ParseAuthStyle(s string) (oauth2.AuthStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return oauth2.AuthStyleAutoDetect, nil
	case "header", "basic":
		return oauth2.AuthStyleInHeader, nil
	case "params", "body":
		return oauth2.AuthStyleInParams, nil
	default:
		return oauth2.AuthStyleAutoDetect, fmt.Errorf("unknown auth style %q", s)
	}
}

// Credentials identify a registered client application.
// ClientSecret must be empty for public clients (PKCE and implicit flows).
type Credentials struct {
	ClientID     string `json:"client_id" yaml:"client_id"`
	ClientSecret string `json:"-" yaml:"client_secret,omitempty"`
	RedirectURI  string `json:"redirect_uri,omitempty" yaml:"redirect_uri,omitempty"`
}

// AuthorizationRequest holds the parameters of one login attempt.
// It is consumed by a single BuildAuthorizationURL call.
type AuthorizationRequest struct {
	// Scopes are passed through as requested.
	Scopes Scopes

	// State is the CSRF value that must round-trip unchanged.
	State string

	// CodeChallenge and CodeChallengeMethod are set for PKCE requests only.
	CodeChallenge       string
	CodeChallengeMethod string

	// ShowDialog forces the consent dialog even when the user already approved the app.
	ShowDialog bool
}

// WithPKCE returns a copy of the request carrying the challenge half of pair.
// The verifier is never copied into the request.
func (r AuthorizationRequest) WithPKCE(pair *PKCEPair) AuthorizationRequest {
	r.CodeChallenge = pair.CodeChallenge
	r.CodeChallengeMethod = pair.CodeChallengeMethod
	return r
}

// TokenResponse is the result of a successful token endpoint call or an
// implicit-grant callback.
type TokenResponse struct {
	// AccessToken is the bearer token used for authorization.
	AccessToken string `json:"access_token"`

	// TokenType is typically "Bearer".
	TokenType string `json:"token_type,omitempty"`

	// RefreshToken is used to obtain new access tokens (optional).
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresIn is the token lifetime in seconds (from token response).
	ExpiresIn int `json:"expires_in,omitempty"`

	// ExpiresAt is the calculated expiration timestamp.
	ExpiresAt time.Time `json:"expires_at,omitempty"`

	// Scope is the granted scope(s), space-separated.
	Scope string `json:"scope,omitempty"`
}

// String formats the token with its secrets redacted, so a TokenResponse can
// be passed to a logger or fmt verb as is.
func (t TokenResponse) String() string {
	return fmt.Sprintf("TokenResponse{AccessToken:%s TokenType:%s RefreshToken:%s ExpiresAt:%s Scope:%q}",
		redacted(t.AccessToken), t.TokenType, redacted(t.RefreshToken), t.ExpiresAt.Format(time.RFC3339), t.Scope)
}

// GoString keeps %#v from printing the secrets.
func (t TokenResponse) GoString() string {
	return "oauth." + t.String()
}

func redacted(s string) string {
	if NewRedactedToken(s).IsEmpty() {
		return `""`
	}
	return NewRedactedToken(s).String()
}

// IsExpired checks if the token has expired.
// Returns true if the token is expired or will expire within the default margin.
func (t *TokenResponse) IsExpired() bool {
	return t.IsExpiredWithMargin(DefaultExpiryMargin)
}

// IsExpiredWithMargin checks if the token has expired or will expire within the margin.
func (t *TokenResponse) IsExpiredWithMargin(margin time.Duration) bool {
	if t.ExpiresAt.IsZero() {
		return false // Tokens without expiration don't expire
	}
	return time.Now().Add(margin).After(t.ExpiresAt)
}

// SetExpiresAtFromExpiresIn calculates and sets ExpiresAt from ExpiresIn.
func (t *TokenResponse) SetExpiresAtFromExpiresIn() {
	if t.ExpiresIn > 0 && t.ExpiresAt.IsZero() {
		t.ExpiresAt = time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
	}
}

// Scopes returns the granted scope as individual values.
func (t *TokenResponse) Scopes() Scopes {
	return ParseScopes(t.Scope)
}

// ToOAuth2Token converts the response to an oauth2.Token for use with
// golang.org/x/oauth2 token sources and transports.
func (t *TokenResponse) ToOAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       t.ExpiresAt,
		ExpiresIn:    int64(t.ExpiresIn),
	}
}

// tokenResponseFromOAuth2 converts a token returned by golang.org/x/oauth2.
func tokenResponseFromOAuth2(tok *oauth2.Token) *TokenResponse {
	resp := &TokenResponse{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    int(tok.ExpiresIn),
		ExpiresAt:    tok.Expiry,
	}
	if resp.TokenType == "" {
		resp.TokenType = TokenTypeBearer
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		resp.Scope = scope
	}
	resp.SetExpiresAtFromExpiresIn()
	return resp
}

// Scopes is an ordered list of OAuth scopes.
type Scopes []string

// ParseScopes splits a space-separated scope string.
func ParseScopes(s string) Scopes {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	return Scopes(fields).Normalize()
}

// Normalize drops empty and duplicate entries, keeping first occurrence order.
func (s Scopes) Normalize() Scopes {
	if len(s) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(s))
	out := make(Scopes, 0, len(s))
	for _, scope := range s {
		scope = strings.TrimSpace(scope)
		if scope == "" {
			continue
		}
		if _, dup := seen[scope]; dup {
			continue
		}
		seen[scope] = struct{}{}
		out = append(out, scope)
	}
	return out
}

// String returns the space-joined wire form.
func (s Scopes) String() string {
	return strings.Join(s.Normalize(), " ")
}

// RedactedToken wraps a sensitive token string to prevent accidental logging.
//
// It implements fmt.Stringer, fmt.GoStringer and the JSON and text
// marshalers so that the value never appears in log output or serialized
// debug dumps.
type RedactedToken struct {
	value string
}

// NewRedactedToken creates a new RedactedToken wrapping the given value.
func NewRedactedToken(value string) RedactedToken {
	return RedactedToken{value: value}
}

// Value returns the actual token value. Never log the result of this method.
func (t RedactedToken) Value() string {
	return t.value
}

// String implements fmt.Stringer.
func (t RedactedToken) String() string {
	if t.value == "" {
		return ""
	}
	return "[REDACTED]"
}

// GoString implements fmt.GoStringer for %#v formatting.
func (t RedactedToken) GoString() string {
	return "oauth.RedactedToken{[REDACTED]}"
}

// IsEmpty returns true if the token value is empty.
func (t RedactedToken) IsEmpty() bool {
	return t.value == ""
}

// MarshalText implements encoding.TextMarshaler.
func (t RedactedToken) MarshalText() ([]byte, error) {
	return []byte("[REDACTED]"), nil
}

// MarshalJSON implements json.Marshaler.
func (t RedactedToken) MarshalJSON() ([]byte, error) {
	return []byte(`"[REDACTED]"`), nil
}
