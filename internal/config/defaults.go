package config

import (
	"time"

	"github.com/giantswarm/spotauth/pkg/oauth"
)

const (
	// DefaultRedirectURI is the loopback address login listens on.
	DefaultRedirectURI = "http://127.0.0.1:8888/callback"

	// DefaultFlow is used when no flow is configured.
	DefaultFlow = "pkce"

	// DefaultHTTPTimeout bounds each request to the accounts service and API.
	DefaultHTTPTimeout = 30 * time.Second
)

// GetDefaultConfig returns the configuration used before the file and
// environment are applied.
func GetDefaultConfig() Config {
	return Config{
		RedirectURI: DefaultRedirectURI,
		Flow:        DefaultFlow,
		Scopes:      []string{"user-read-private", "user-read-email"},
		Endpoints: EndpointsConfig{
			AuthURL:  oauth.SpotifyAuthURL,
			TokenURL: oauth.SpotifyTokenURL,
			APIURL:   oauth.SpotifyAPIURL,
		},
		AuthStyle:   "header",
		HTTPTimeout: DefaultHTTPTimeout,
		LogLevel:    "warn",
	}
}
