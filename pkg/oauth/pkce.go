package oauth

import (
	"fmt"

	"github.com/giantswarm/spotauth/pkg/platform"
)

const (
	// pkceVerifierBytes is the number of random bytes for the PKCE code verifier.
	// 64 bytes encode to 86 base64url characters.
	pkceVerifierBytes = 64

	// minVerifierBytes is the smallest entropy accepted for a verifier (256 bits).
	minVerifierBytes = 32

	// Verifier length bounds from RFC 7636 section 4.1.
	MinVerifierLength = 43
	MaxVerifierLength = 128
)

// PKCEPair is a PKCE code verifier and its S256 challenge.
// The verifier is kept by the client and sent only to the token endpoint.
type PKCEPair struct {
	CodeVerifier        string
	CodeChallenge       string
	CodeChallengeMethod string
}

// GeneratePKCE generates a new PKCE code verifier and challenge using p.
func GeneratePKCE(p platform.Provider) (*PKCEPair, error) {
	verifier, err := GenerateVerifier(p)
	if err != nil {
		return nil, err
	}

	return &PKCEPair{
		CodeVerifier:        verifier,
		CodeChallenge:       DeriveChallenge(p, verifier),
		CodeChallengeMethod: ChallengeMethodS256,
	}, nil
}

// GenerateVerifier returns a base64url verifier built from 64 random bytes.
func GenerateVerifier(p platform.Provider) (string, error) {
	return GenerateVerifierBytes(p, pkceVerifierBytes)
}

// GenerateVerifierBytes returns a verifier built from n random bytes.
// n must be at least 32; the encoded result is truncated to 128 characters.
func GenerateVerifierBytes(p platform.Provider, n int) (string, error) {
	if n < minVerifierBytes {
		return "", fmt.Errorf("PKCE verifier needs at least %d random bytes, got %d", minVerifierBytes, n)
	}

	b, err := p.RandomBytes(n)
	if err != nil {
		return "", fmt.Errorf("failed to generate random bytes for PKCE: %w", err)
	}

	verifier := p.Base64URLEncode(b)
	if len(verifier) > MaxVerifierLength {
		verifier = verifier[:MaxVerifierLength]
	}
	return verifier, nil
}

// DeriveChallenge returns base64url(SHA-256(verifier)) without padding.
func DeriveChallenge(p platform.Provider, verifier string) string {
	sum := p.SHA256([]byte(verifier))
	return p.Base64URLEncode(sum[:])
}

// ValidateVerifier checks the RFC 7636 length and character set rules.
func ValidateVerifier(verifier string) error {
	if n := len(verifier); n < MinVerifierLength || n > MaxVerifierLength {
		return fmt.Errorf("PKCE verifier must be %d-%d characters, got %d", MinVerifierLength, MaxVerifierLength, n)
	}
	for i := 0; i < len(verifier); i++ {
		if !isUnreserved(verifier[i]) {
			return fmt.Errorf("PKCE verifier contains invalid character %q at position %d", verifier[i], i)
		}
	}
	return nil
}

// isUnreserved reports whether c is in the RFC 3986 unreserved set.
func isUnreserved(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	}
	return false
}
