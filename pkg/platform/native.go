package platform

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
)

// NativeName is the registry name of the operating-system provider.
const NativeName = "native"

// Native returns a provider backed by the operating system CSPRNG.
func Native() Provider {
	return nativeProvider{}
}

type nativeProvider struct {
	codec
}

func (nativeProvider) RandomBytes(n int) ([]byte, error) {
	if err := checkLength(n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return b, nil
}

func (nativeProvider) SHA256(b []byte) [32]byte {
	return sha256.Sum256(b)
}

func init() {
	register(NativeName, Native)
}
