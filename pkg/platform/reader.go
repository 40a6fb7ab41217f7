package platform

import (
	"crypto/sha256"
	"fmt"
	"io"
	"sync"
)

// NewReaderProvider returns a provider that reads its randomness from r.
// It is intended for hosts that expose entropy through a custom device or
// bridge, and for deterministic tests. Reads are serialized.
func NewReaderProvider(r io.Reader) Provider {
	return &readerProvider{r: r}
}

type readerProvider struct {
	codec
	mu sync.Mutex
	r  io.Reader
}

func (p *readerProvider) RandomBytes(n int) ([]byte, error) {
	if err := checkLength(n); err != nil {
		return nil, err
	}
	if p.r == nil {
		return nil, fmt.Errorf("%w: no entropy source configured", ErrUnavailable)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	b := make([]byte, n)
	if _, err := io.ReadFull(p.r, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return b, nil
}

func (p *readerProvider) SHA256(b []byte) [32]byte {
	return sha256.Sum256(b)
}
