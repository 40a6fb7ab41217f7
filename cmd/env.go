package cmd

import (
	"fmt"
	"net/http"

	"github.com/giantswarm/spotauth/internal/config"
	"github.com/giantswarm/spotauth/internal/tokenstore"
	"github.com/giantswarm/spotauth/pkg/auth"
	"github.com/giantswarm/spotauth/pkg/logging"
	"github.com/giantswarm/spotauth/pkg/oauth"
	"github.com/giantswarm/spotauth/pkg/platform"
)

// environment is what every command needs: the loaded configuration, the
// crypto provider and the token store.
type environment struct {
	cfg    config.Config
	crypto platform.Provider
	store  *tokenstore.Store
}

func loadEnvironment() (*environment, error) {
	dir := configPath
	if dir == "" {
		var err error
		dir, err = config.GetDefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.LoadConfig(dir)
	if err != nil {
		return nil, err
	}

	crypto, err := platform.ByName(cryptoProvider)
	if err != nil {
		return nil, err
	}

	store, err := tokenstore.New(tokenstore.Config{Dir: cfg.TokenDir, FileMode: true})
	if err != nil {
		return nil, err
	}

	return &environment{cfg: cfg, crypto: crypto, store: store}, nil
}

// configFor returns the configuration set to kind and validated for it.
func (e *environment) configFor(kind oauth.FlowKind) (config.Config, error) {
	cfg := e.cfg
	cfg.Flow = kind.String()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration for the %s flow: %w", kind, err)
	}
	return cfg, nil
}

// flowKind resolves the flow to use. An explicit override wins over the
// configured flow.
func (e *environment) flowKind(override string) (oauth.FlowKind, error) {
	if override != "" {
		return oauth.ParseFlowKind(override)
	}
	return oauth.ParseFlowKind(e.cfg.Flow)
}

// newFlow builds the flow variant for kind.
func (e *environment) newFlow(kind oauth.FlowKind) (oauth.Flow, error) {
	cfg, err := e.configFor(kind)
	if err != nil {
		return nil, err
	}

	endpoint, err := cfg.Endpoint()
	if err != nil {
		return nil, err
	}
	opts := []oauth.FlowOption{
		oauth.WithEndpoint(endpoint),
		oauth.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		oauth.WithScopes(cfg.Scopes...),
	}
	creds := cfg.Credentials()

	switch kind {
	case oauth.FlowAuthorizationCode:
		return oauth.NewAuthorizationCodeFlow(creds, opts...)
	case oauth.FlowPKCE:
		return oauth.NewPKCEFlow(creds, opts...)
	case oauth.FlowClientCredentials:
		return oauth.NewClientCredentialsFlow(creds, opts...)
	case oauth.FlowImplicit:
		return oauth.NewImplicitFlow(creds, opts...)
	default:
		return nil, fmt.Errorf("unsupported flow %s", kind)
	}
}

// authorizationRequest builds a request with a fresh state value.
func (e *environment) authorizationRequest(showDialog bool) (oauth.AuthorizationRequest, error) {
	state, err := oauth.GenerateState(e.crypto)
	if err != nil {
		return oauth.AuthorizationRequest{}, fmt.Errorf("failed to generate state: %w", err)
	}
	return oauth.AuthorizationRequest{
		Scopes:     oauth.Scopes(e.cfg.Scopes).Normalize(),
		State:      state,
		ShowDialog: showDialog || e.cfg.ShowDialog,
	}, nil
}

// save persists tok for the configured client.
func (e *environment) save(kind oauth.FlowKind, tok *oauth.TokenResponse) error {
	return e.store.Save(e.cfg.ClientID, kind.String(), tok)
}

// loadHolder builds a token holder seeded with the stored token. Every
// successful refresh is written back to the store.
func (e *environment) loadHolder() (*auth.Provider, *tokenstore.StoredToken, error) {
	stored, err := e.store.Load(e.cfg.ClientID)
	if err != nil {
		return nil, nil, err
	}

	kind, err := oauth.ParseFlowKind(stored.Flow)
	if err != nil {
		return nil, nil, fmt.Errorf("stored token has an unknown flow: %w", err)
	}
	flow, err := e.newFlow(kind)
	if err != nil {
		return nil, nil, err
	}

	opts := []auth.Option{
		auth.WithInitialToken(stored.ToTokenResponse()),
		auth.WithOnRefreshSuccess(func(tok *oauth.TokenResponse) {
			if err := e.save(kind, tok); err != nil {
				logging.Error("CLI", err, "Failed to persist refreshed token")
			}
		}),
		auth.WithOnRefreshFailure(func(err error) {
			logging.Debug("CLI", "Refresh for client %s failed: %v", e.cfg.ClientID, err)
		}),
	}

	var holder *auth.Provider
	if cc, ok := flow.(*oauth.ClientCredentialsFlow); ok {
		holder, err = auth.NewClientCredentialsProvider(cc, opts...)
	} else {
		holder, err = auth.NewFlowProvider(flow, opts...)
	}
	if err != nil {
		return nil, nil, err
	}
	return holder, stored, nil
}
