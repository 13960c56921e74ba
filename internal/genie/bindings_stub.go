//go:build !genie || !cgo

package genie

// Default builds carry no native engine. Every entry point fails fast so
// callers surface a dependency error instead of crashing at generate time.

func loadModelImpl(bundleDir, engineConfig string) (uintptr, error) {
	return 0, ErrNotBuilt
}

func generateImpl(h uintptr, prompt string, emit func(string) bool) error {
	return ErrNotBuilt
}

func freeModelImpl(h uintptr) {}
