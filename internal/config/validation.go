package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/giantswarm/spotauth/pkg/logging"
	"github.com/giantswarm/spotauth/pkg/oauth"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string) {
	*ve = append(*ve, ValidationError{Field: field, Message: message})
}

// Validate checks that the configuration can drive its flow.
func (c Config) Validate() error {
	var errs ValidationErrors

	if strings.TrimSpace(c.ClientID) == "" {
		errs.Add("client_id", "is required (or set "+EnvClientID+")")
	}

	kind, err := c.FlowKind()
	if err != nil {
		errs.Add("flow", err.Error())
	} else {
		switch kind {
		case oauth.FlowPKCE, oauth.FlowImplicit:
			if c.ClientSecret != "" {
				errs.Add("client_secret", fmt.Sprintf("must be empty for the %s flow", kind))
			}
		case oauth.FlowAuthorizationCode, oauth.FlowClientCredentials:
			if c.ClientSecret == "" {
				errs.Add("client_secret", fmt.Sprintf("is required for the %s flow (or set %s)", kind, EnvClientSecret))
			}
		}
		if kind != oauth.FlowClientCredentials {
			validateURL(&errs, "redirect_uri", c.RedirectURI)
		}
	}

	validateURL(&errs, "endpoints.auth_url", c.Endpoints.AuthURL)
	validateURL(&errs, "endpoints.token_url", c.Endpoints.TokenURL)
	validateURL(&errs, "endpoints.api_url", c.Endpoints.APIURL)

	if _, err := oauth.ParseAuthStyle(c.AuthStyle); err != nil {
		errs.Add("auth_style", err.Error())
	}
	if c.HTTPTimeout <= 0 {
		errs.Add("http_timeout", "must be positive")
	}
	if _, err := logging.ParseLogLevel(c.LogLevel); err != nil {
		errs.Add("log_level", err.Error())
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func validateURL(errs *ValidationErrors, field, value string) {
	if value == "" {
		errs.Add(field, "is required")
		return
	}
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs.Add(field, fmt.Sprintf("%q is not an absolute URL", value))
	}
}
