package platform

import (
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnavailable is returned when the host cannot supply secure randomness.
// It indicates a misconfigured host and is never retried.
var ErrUnavailable = errors.New("platform crypto unavailable")

// Provider supplies the cryptographic primitives required by PKCE and
// state generation.
type Provider interface {
	// RandomBytes returns n bytes from a cryptographically secure source.
	RandomBytes(n int) ([]byte, error)

	// Base64Encode encodes b using standard base64 with padding.
	Base64Encode(b []byte) string

	// Base64URLEncode encodes b using the URL-safe alphabet without padding
	// (RFC 4648 section 5).
	Base64URLEncode(b []byte) string

	// SHA256 returns the SHA-256 digest of b.
	SHA256(b []byte) [32]byte
}

// codec implements the encoding half of Provider. Every implementation
// embeds it so that encodings never differ between platforms.
type codec struct{}

func (codec) Base64Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func (codec) Base64URLEncode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func checkLength(n int) error {
	if n < 0 {
		return fmt.Errorf("invalid random byte count %d", n)
	}
	return nil
}

var (
	registryMu sync.RWMutex
	registry   = map[string]func() Provider{}
)

// register makes a provider selectable by name at startup.
func register(name string, factory func() Provider) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// ByName returns the provider registered under name. An empty name selects
// the build default.
func ByName(name string) (Provider, error) {
	if name == "" {
		return Default(), nil
	}

	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown crypto provider %q (available: %v)", name, Names())
	}
	return factory(), nil
}

// Names lists the providers available in this build.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
