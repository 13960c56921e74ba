package genie

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Native entry points, provided by bindings.go under the genie build tag and
// by bindings_stub.go otherwise. Package variables so tests can inject fakes.
var (
	nativeLoad     = loadModelImpl
	nativeGenerate = generateImpl
	nativeFree     = freeModelImpl
)

// Engine owns one loaded model inside the native runtime. The zero value is
// unusable; construct with Load. All methods are safe for concurrent use;
// generation and release are serialized so a handle is never freed while a
// native call is in flight.
type Engine struct {
	mu        sync.Mutex
	handle    uintptr
	bundleDir string
	engineCfg string
}

var _ io.Closer = (*Engine)(nil)

// Load validates the bundle paths and asks the native engine for a handle.
// A zero handle from the native side is a construction failure: Load never
// returns a live Engine without a usable handle.
func Load(bundleDir, engineConfig string) (*Engine, error) {
	info, err := os.Stat(bundleDir)
	if err != nil {
		return nil, fmt.Errorf("model bundle %s: %w", bundleDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("model bundle %s: not a directory", bundleDir)
	}
	if engineConfig != "" {
		if _, err := os.Stat(engineConfig); err != nil {
			return nil, fmt.Errorf("engine config %s: %w", engineConfig, err)
		}
	}
	h, err := nativeLoad(bundleDir, engineConfig)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", bundleDir, err)
	}
	if h == 0 {
		return nil, fmt.Errorf("load %s: %w", bundleDir, ErrLoadFailed)
	}
	return &Engine{handle: h, bundleDir: bundleDir, engineCfg: engineConfig}, nil
}

// Generate streams the engine's response for prompt through onToken.
// Returning an error from onToken stops generation and propagates that
// error; ctx cancellation stops generation and returns ctx.Err().
func (e *Engine) Generate(ctx context.Context, prompt string, onToken func(string) error) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.handle == 0 {
		return ErrEngineClosed
	}
	var cbErr error
	err := nativeGenerate(e.handle, prompt, func(tok string) bool {
		if ctx.Err() != nil {
			return false
		}
		if err := onToken(tok); err != nil {
			cbErr = err
			return false
		}
		return true
	})
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if cbErr != nil {
		return cbErr
	}
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	return nil
}

// Close frees the native handle and zeroes it. Safe to call more than once;
// later calls are no-ops.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.handle == 0 {
		return nil
	}
	nativeFree(e.handle)
	e.handle = 0
	return nil
}

// Closed reports whether the handle has been released.
func (e *Engine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.handle == 0
}

// BundleDir returns the bundle the engine was loaded from.
func (e *Engine) BundleDir() string { return e.bundleDir }

// EngineConfig returns the engine config path the engine was loaded with.
func (e *Engine) EngineConfig() string { return e.engineCfg }
