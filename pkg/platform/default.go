//go:build !(js && wasm)

package platform

// Default returns the provider selected for this build target.
func Default() Provider {
	return Native()
}
