//go:build js && wasm

package platform

import (
	"crypto/sha256"
	"fmt"
	"syscall/js"
)

// WebCryptoName is the registry name of the browser provider.
const WebCryptoName = "webcrypto"

// getRandomValues fills at most 65536 bytes per call.
const webCryptoMaxChunk = 65536

// WebCrypto returns a provider that draws randomness from the host's
// globalThis.crypto.getRandomValues.
func WebCrypto() Provider {
	return webCryptoProvider{}
}

// Default returns the provider selected for this build target.
func Default() Provider {
	return WebCrypto()
}

type webCryptoProvider struct {
	codec
}

func (webCryptoProvider) RandomBytes(n int) (out []byte, err error) {
	if err := checkLength(n); err != nil {
		return nil, err
	}

	crypto := js.Global().Get("crypto")
	if crypto.IsUndefined() || crypto.Get("getRandomValues").IsUndefined() {
		return nil, fmt.Errorf("%w: globalThis.crypto.getRandomValues is not defined", ErrUnavailable)
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrUnavailable, r)
		}
	}()

	out = make([]byte, n)
	for off := 0; off < n; off += webCryptoMaxChunk {
		end := min(off+webCryptoMaxChunk, n)
		buf := js.Global().Get("Uint8Array").New(end - off)
		crypto.Call("getRandomValues", buf)
		js.CopyBytesToGo(out[off:end], buf)
	}
	return out, nil
}

// SHA256 is computed in Go; SubtleCrypto.digest is asynchronous only.
func (webCryptoProvider) SHA256(b []byte) [32]byte {
	return sha256.Sum256(b)
}

func init() {
	register(WebCryptoName, WebCrypto)
}
