package oauth

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestTokenResponse_IsExpired(t *testing.T) {
	tests := []struct {
		name  string
		token *TokenResponse
		want  bool
	}{
		{
			name:  "not expired",
			token: &TokenResponse{ExpiresAt: time.Now().Add(time.Hour)},
			want:  false,
		},
		{
			name:  "expired",
			token: &TokenResponse{ExpiresAt: time.Now().Add(-time.Hour)},
			want:  true,
		},
		{
			name:  "expires within margin",
			token: &TokenResponse{ExpiresAt: time.Now().Add(15 * time.Second)},
			want:  true,
		},
		{
			name:  "no expiry set",
			token: &TokenResponse{},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.token.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTokenResponse_SetExpiresAtFromExpiresIn(t *testing.T) {
	token := &TokenResponse{ExpiresIn: 3600}
	before := time.Now()
	token.SetExpiresAtFromExpiresIn()

	if token.ExpiresAt.Before(before.Add(3599*time.Second)) || token.ExpiresAt.After(time.Now().Add(3601*time.Second)) {
		t.Errorf("ExpiresAt = %v, want about one hour from now", token.ExpiresAt)
	}

	// already set values are kept
	fixed := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	token = &TokenResponse{ExpiresIn: 10, ExpiresAt: fixed}
	token.SetExpiresAtFromExpiresIn()
	if !token.ExpiresAt.Equal(fixed) {
		t.Errorf("ExpiresAt = %v, want %v", token.ExpiresAt, fixed)
	}
}

func TestTokenResponse_ToOAuth2Token(t *testing.T) {
	expiry := time.Now().Add(time.Hour)
	resp := &TokenResponse{
		AccessToken:  "access",
		TokenType:    "Bearer",
		RefreshToken: "refresh",
		ExpiresIn:    3600,
		ExpiresAt:    expiry,
	}

	tok := resp.ToOAuth2Token()
	if tok.AccessToken != "access" || tok.RefreshToken != "refresh" || tok.TokenType != "Bearer" {
		t.Errorf("unexpected token %+v", tok)
	}
	if !tok.Expiry.Equal(expiry) {
		t.Errorf("Expiry = %v, want %v", tok.Expiry, expiry)
	}
	if !tok.Valid() {
		t.Error("expected converted token to be valid")
	}
}

func TestTokenResponseFromOAuth2(t *testing.T) {
	tok := (&oauth2.Token{AccessToken: "a", ExpiresIn: 60}).WithExtra(map[string]interface{}{
		"scope": "user-read-private user-read-email",
	})

	resp := tokenResponseFromOAuth2(tok)
	if resp.TokenType != TokenTypeBearer {
		t.Errorf("TokenType = %q, want %q", resp.TokenType, TokenTypeBearer)
	}
	if resp.Scope != "user-read-private user-read-email" {
		t.Errorf("Scope = %q", resp.Scope)
	}
	if resp.ExpiresAt.IsZero() {
		t.Error("expected ExpiresAt to be derived from ExpiresIn")
	}
}

func TestScopes(t *testing.T) {
	tests := []struct {
		name string
		in   Scopes
		want string
	}{
		{"empty", nil, ""},
		{"single", Scopes{"user-read-email"}, "user-read-email"},
		{"keeps order", Scopes{"b", "a", "c"}, "b a c"},
		{"drops duplicates and blanks", Scopes{"a", "", "b", "a", " "}, "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}

	parsed := ParseScopes("  playlist-read-private   user-top-read ")
	if len(parsed) != 2 || parsed[0] != "playlist-read-private" || parsed[1] != "user-top-read" {
		t.Errorf("ParseScopes() = %v", parsed)
	}
	if ParseScopes("") != nil {
		t.Error("ParseScopes(\"\") should be nil")
	}
}

func TestParseAuthStyle(t *testing.T) {
	tests := []struct {
		in      string
		want    oauth2.AuthStyle
		wantErr bool
	}{
		{"", oauth2.AuthStyleAutoDetect, false},
		{"auto", oauth2.AuthStyleAutoDetect, false},
		{"header", oauth2.AuthStyleInHeader, false},
		{"Basic", oauth2.AuthStyleInHeader, false},
		{"params", oauth2.AuthStyleInParams, false},
		{"body", oauth2.AuthStyleInParams, false},
		{"cookie", oauth2.AuthStyleAutoDetect, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAuthStyle(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAuthStyle(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseAuthStyle(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRedactedToken(t *testing.T) {
	token := NewRedactedToken("super-secret")

	if token.Value() != "super-secret" {
		t.Errorf("Value() = %q", token.Value())
	}
	for _, out := range []string{
		fmt.Sprint(token),
		fmt.Sprintf("%v", token),
		fmt.Sprintf("%#v", token),
	} {
		if strings.Contains(out, "super-secret") {
			t.Errorf("formatted output leaked the token: %q", out)
		}
	}

	data, err := json.Marshal(struct {
		Token RedactedToken `json:"token"`
	}{token})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"token":"[REDACTED]"}` {
		t.Errorf("Marshal() = %s", data)
	}

	if !NewRedactedToken("").IsEmpty() {
		t.Error("expected empty token to report IsEmpty")
	}
}

func TestTokenResponse_StringRedacts(t *testing.T) {
	tok := &TokenResponse{AccessToken: "at-secret", TokenType: TokenTypeBearer, RefreshToken: "rt-secret", Scope: "streaming"}

	for _, out := range []string{
		fmt.Sprint(tok),
		fmt.Sprintf("%v", *tok),
		fmt.Sprintf("%+v", tok),
		fmt.Sprintf("%#v", tok),
	} {
		if strings.Contains(out, "at-secret") || strings.Contains(out, "rt-secret") {
			t.Errorf("formatted output leaked a token: %q", out)
		}
		if !strings.Contains(out, "streaming") {
			t.Errorf("formatted output lost the scope: %q", out)
		}
	}

	if out := (TokenResponse{AccessToken: "x"}).String(); !strings.Contains(out, `RefreshToken:""`) {
		t.Errorf("expected an empty refresh token to print as empty, got %q", out)
	}
}
