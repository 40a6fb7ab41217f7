package config

import (
	"time"

	"github.com/giantswarm/spotauth/pkg/oauth"

	"golang.org/x/oauth2"
)

// Config is the top-level configuration of spotauth.
type Config struct {
	// ClientID and ClientSecret identify the registered application.
	// ClientSecret must be empty for the pkce and implicit flows.
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret,omitempty"`

	// RedirectURI is registered with the application. login listens on it,
	// so it should be a loopback http URL.
	RedirectURI string `yaml:"redirect_uri,omitempty"`

	// Flow is one of code, pkce, client-credentials or implicit.
	Flow string `yaml:"flow,omitempty"`

	Scopes     []string `yaml:"scopes,omitempty"`
	ShowDialog bool     `yaml:"show_dialog,omitempty"`

	Endpoints EndpointsConfig `yaml:"endpoints,omitempty"`

	// AuthStyle is header, params or auto.
	AuthStyle string `yaml:"auth_style,omitempty"`

	// HTTPTimeout bounds every token endpoint and API request.
	HTTPTimeout time.Duration `yaml:"http_timeout,omitempty"`

	// TokenDir holds persisted tokens. Defaults to ~/.config/spotauth/tokens.
	TokenDir string `yaml:"token_dir,omitempty"`

	LogLevel string `yaml:"log_level,omitempty"`
}

// EndpointsConfig overrides the service locations, e.g. for a staging
// accounts service.
type EndpointsConfig struct {
	AuthURL  string `yaml:"auth_url,omitempty"`
	TokenURL string `yaml:"token_url,omitempty"`
	APIURL   string `yaml:"api_url,omitempty"`
}

// Credentials returns the client credentials.
func (c Config) Credentials() oauth.Credentials {
	return oauth.Credentials{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURI:  c.RedirectURI,
	}
}

// FlowKind parses Flow.
func (c Config) FlowKind() (oauth.FlowKind, error) {
	return oauth.ParseFlowKind(c.Flow)
}

// Endpoint returns the accounts service endpoint with the configured auth style.
func (c Config) Endpoint() (oauth2.Endpoint, error) {
	style, err := oauth.ParseAuthStyle(c.AuthStyle)
	if err != nil {
		return oauth2.Endpoint{}, err
	}
	return oauth2.Endpoint{
		AuthURL:   c.Endpoints.AuthURL,
		TokenURL:  c.Endpoints.TokenURL,
		AuthStyle: style,
	}, nil
}
