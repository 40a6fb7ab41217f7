// Package platform provides the cryptographic primitives PKCE and CSRF state
// generation depend on: secure random bytes, base64 and base64url encoding,
// and SHA-256.
//
// Three implementations satisfy the Provider interface:
//
//   - Native: operating system CSPRNG via crypto/rand (all targets except js/wasm)
//   - WebCrypto: globalThis.crypto.getRandomValues (js/wasm builds only)
//   - NewReaderProvider: any caller-supplied io.Reader
//
// Default returns the implementation selected at build time. ByName selects
// one at startup, for example from a configuration file:
//
//	p, err := platform.ByName(cfg.CryptoProvider)
//	if err != nil {
//		return err
//	}
//	pair, err := oauth.GeneratePKCE(p)
//
// Failures from RandomBytes wrap ErrUnavailable. They indicate a
// misconfigured host and should be treated as fatal.
package platform
