package platform

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func providers() map[string]Provider {
	return map[string]Provider{
		"native":  Native(),
		"default": Default(),
		"reader":  NewReaderProvider(bytes.NewReader(bytes.Repeat([]byte{0xAB}, 1024))),
	}
}

func TestProvider_Encodings(t *testing.T) {
	// RFC 4648 section 10 test vectors
	vectors := []struct {
		in     string
		std    string
		rawURL string
	}{
		{"", "", ""},
		{"f", "Zg==", "Zg"},
		{"fo", "Zm8=", "Zm8"},
		{"foo", "Zm9v", "Zm9v"},
		{"foob", "Zm9vYg==", "Zm9vYg"},
		{"fooba", "Zm9vYmE=", "Zm9vYmE"},
		{"foobar", "Zm9vYmFy", "Zm9vYmFy"},
	}

	for name, p := range providers() {
		t.Run(name, func(t *testing.T) {
			for _, v := range vectors {
				assert.Equal(t, v.std, p.Base64Encode([]byte(v.in)))
				assert.Equal(t, v.rawURL, p.Base64URLEncode([]byte(v.in)))
			}

			// bytes that map to '+' and '/' in the standard alphabet
			in := []byte{0xfb, 0xff, 0xbf}
			assert.Equal(t, "+/+/", p.Base64Encode(in))
			assert.Equal(t, "-_-_", p.Base64URLEncode(in))
		})
	}
}

func TestProvider_SHA256(t *testing.T) {
	const abcDigest = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

	for name, p := range providers() {
		t.Run(name, func(t *testing.T) {
			sum := p.SHA256([]byte("abc"))
			assert.Equal(t, abcDigest, hex.EncodeToString(sum[:]))
		})
	}
}

func TestProvider_RandomBytes(t *testing.T) {
	for name, p := range providers() {
		t.Run(name, func(t *testing.T) {
			b, err := p.RandomBytes(32)
			require.NoError(t, err)
			assert.Len(t, b, 32)

			b, err = p.RandomBytes(0)
			require.NoError(t, err)
			assert.Empty(t, b)

			_, err = p.RandomBytes(-1)
			assert.Error(t, err)
		})
	}
}

func TestNative_RandomBytesDiffer(t *testing.T) {
	p := Native()
	a, err := p.RandomBytes(32)
	require.NoError(t, err)
	b, err := p.RandomBytes(32)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestReaderProvider(t *testing.T) {
	t.Run("deterministic output", func(t *testing.T) {
		p := NewReaderProvider(strings.NewReader("0123456789"))
		b, err := p.RandomBytes(4)
		require.NoError(t, err)
		assert.Equal(t, []byte("0123"), b)

		b, err = p.RandomBytes(4)
		require.NoError(t, err)
		assert.Equal(t, []byte("4567"), b)
	})

	t.Run("short source is unavailable", func(t *testing.T) {
		p := NewReaderProvider(strings.NewReader("abc"))
		_, err := p.RandomBytes(8)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnavailable))
	})

	t.Run("nil source is unavailable", func(t *testing.T) {
		p := NewReaderProvider(nil)
		_, err := p.RandomBytes(1)
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}

func TestByName(t *testing.T) {
	p, err := ByName("")
	require.NoError(t, err)
	assert.NotNil(t, p)

	p, err = ByName(NativeName)
	require.NoError(t, err)
	assert.NotNil(t, p)

	_, err = ByName("does-not-exist")
	assert.Error(t, err)

	assert.Contains(t, Names(), NativeName)
}
