package oauth

import (
	"crypto/subtle"
	"fmt"

	"github.com/giantswarm/spotauth/pkg/platform"
)

const (
	// stateBytes is the number of random bytes for the OAuth state parameter.
	// 32 bytes encodes to 43 base64url characters.
	stateBytes = 32

	// minStateBytes is the lower bound on state entropy (128 bits).
	minStateBytes = 16
)

// GenerateState generates a random state parameter for an authorization request.
func GenerateState(p platform.Provider) (string, error) {
	return GenerateStateBytes(p, stateBytes)
}

// GenerateStateBytes generates a state value from n random bytes, n >= 16.
func GenerateStateBytes(p platform.Provider, n int) (string, error) {
	if n < minStateBytes {
		return "", fmt.Errorf("state needs at least %d random bytes, got %d", minStateBytes, n)
	}

	b, err := p.RandomBytes(n)
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}

	return p.Base64URLEncode(b), nil
}

// VerifyState compares the state sent with the authorization request to the
// one received in the callback. Missing values on either side fail.
func VerifyState(expected, received string) error {
	if expected == "" {
		return &CallbackError{Kind: CallbackStateMismatch, Description: "no state was recorded for this request"}
	}
	if received == "" {
		return &CallbackError{Kind: CallbackStateMismatch, Description: "callback carried no state"}
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(received)) != 1 {
		return &CallbackError{Kind: CallbackStateMismatch, Description: "state does not match"}
	}
	return nil
}
