package httpclient

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChallenge(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    *Challenge
		wantErr bool
	}{
		{
			name:   "bare scheme",
			header: "Bearer",
			want:   &Challenge{Scheme: "Bearer"},
		},
		{
			name:   "expired token",
			header: `Bearer realm="spotify", error="invalid_token", error_description="The access token expired"`,
			want: &Challenge{
				Scheme:           "Bearer",
				Realm:            "spotify",
				Error:            "invalid_token",
				ErrorDescription: "The access token expired",
			},
		},
		{
			name:   "insufficient scope",
			header: `Bearer error="insufficient_scope", scope="user-read-private user-read-email"`,
			want: &Challenge{
				Scheme: "Bearer",
				Error:  "insufficient_scope",
				Scope:  "user-read-private user-read-email",
			},
		},
		{
			name:   "parameter names are case insensitive",
			header: `Bearer Realm="spotify"`,
			want:   &Challenge{Scheme: "Bearer", Realm: "spotify"},
		},
		{
			name:    "empty",
			header:  "  ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseChallenge(tt.header)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChallenge_InvalidToken(t *testing.T) {
	var nilChallenge *Challenge
	assert.False(t, nilChallenge.InvalidToken())
	assert.True(t, (&Challenge{Error: "invalid_token"}).InvalidToken())
	assert.False(t, (&Challenge{Error: "insufficient_scope"}).InvalidToken())
}

func TestChallengeFromResponse(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusUnauthorized, Header: http.Header{}}
	assert.Nil(t, challengeFromResponse(resp), "no header")

	resp.Header.Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	require.NotNil(t, challengeFromResponse(resp))

	resp.StatusCode = http.StatusForbidden
	assert.Nil(t, challengeFromResponse(resp), "only 401 carries a challenge")
	assert.Nil(t, challengeFromResponse(nil))
}

func TestAuthErrorKind_String(t *testing.T) {
	assert.Equal(t, "no_token", AuthNoToken.String())
	assert.Equal(t, "refresh_failed", AuthRefreshFailed.String())
	assert.Equal(t, "refresh_succeeded_but_still_unauthorized", AuthStillUnauthorized.String())
	assert.Equal(t, "unknown", AuthErrorKind(0).String())
}
