package auth

import "time"

// Status is the lifecycle position of a token holder.
type Status int

const (
	// StatusUnauthenticated means no access token has been obtained yet.
	StatusUnauthenticated Status = iota

	// StatusAuthenticated means an access token is held.
	StatusAuthenticated

	// StatusRefreshing means a refresh is in flight. The previous access
	// token, if any, is still served.
	StatusRefreshing

	// StatusFailed means the last refresh failed. It is not terminal; a
	// later Refresh may succeed.
	StatusFailed
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusAuthenticated:
		return "authenticated"
	case StatusRefreshing:
		return "refreshing"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TokenState is the credential material owned by a Provider.
// Values returned by Provider.State are copies.
type TokenState struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Scope        string
	ExpiresAt    time.Time
	Status       Status
}

// HasAccessToken reports whether an access token is held.
func (s TokenState) HasAccessToken() bool {
	return s.AccessToken != ""
}

// Summary describes a TokenState without any token values. It is safe to
// print or serialize.
type Summary struct {
	Status          string    `json:"status"`
	HasAccessToken  bool      `json:"has_access_token"`
	HasRefreshToken bool      `json:"has_refresh_token"`
	TokenType       string    `json:"token_type,omitempty"`
	Scope           string    `json:"scope,omitempty"`
	ExpiresAt       time.Time `json:"expires_at,omitempty"`
	Expired         bool      `json:"expired"`
	LastError       string    `json:"last_error,omitempty"`
}

// Summarize builds a Summary for s.
func (s TokenState) Summarize() Summary {
	return Summary{
		Status:          s.Status.String(),
		HasAccessToken:  s.AccessToken != "",
		HasRefreshToken: s.RefreshToken != "",
		TokenType:       s.TokenType,
		Scope:           s.Scope,
		ExpiresAt:       s.ExpiresAt,
		Expired:         !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt),
	}
}
