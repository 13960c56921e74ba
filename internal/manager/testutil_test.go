package manager

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"chatmodeld/internal/store"
	"chatmodeld/pkg/types"
)

// createModelFile creates a file of approximately sizeMB megabytes and returns its path.
func createModelFile(t *testing.T, dir, name string, sizeMB int) string {
	t.Helper()
	if sizeMB <= 0 {
		sizeMB = 1
	}
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	defer f.Close()
	// write sizeMB megabytes (use 1MiB blocks)
	block := make([]byte, 1024*1024)
	for i := 0; i < sizeMB; i++ {
		if _, err := f.Write(block); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := f.Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}
	return p
}

// createBundleDir lays out a minimal genie bundle and returns its path.
func createBundleDir(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(p, 0o755); err != nil {
		t.Fatalf("mkdir bundle: %v", err)
	}
	if err := os.WriteFile(filepath.Join(p, "genie_config.json"), []byte(`{"dialog":{}}`), 0o644); err != nil {
		t.Fatalf("write engine config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(p, "weights.bin"), make([]byte, 64), 0o644); err != nil {
		t.Fatalf("write weights: %v", err)
	}
	return p
}

// fakeRuntime is a lightweight in-memory backend used for tests.
type fakeRuntime struct {
	mu         sync.Mutex
	kind       types.Runtime
	tokens     []string
	final      FinalResult
	genErr     error
	genDelay   time.Duration
	panicMsg   string
	resetErr   error
	resets     int
	closes     int
	lastPrompt string
	lastParams GenParams
}

func (f *fakeRuntime) Kind() types.Runtime {
	if f.kind == "" {
		return types.RuntimeLlamaCpp
	}
	return f.kind
}

func (f *fakeRuntime) Generate(ctx context.Context, prompt string, params GenParams, onToken func(string) error) (FinalResult, error) {
	f.mu.Lock()
	f.lastPrompt = prompt
	f.lastParams = params
	f.mu.Unlock()
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.genErr != nil {
		return FinalResult{}, f.genErr
	}
	for _, tok := range f.tokens {
		if f.genDelay > 0 {
			select {
			case <-time.After(f.genDelay):
			case <-ctx.Done():
				return FinalResult{}, ctx.Err()
			}
		}
		if err := ctx.Err(); err != nil {
			return FinalResult{}, err
		}
		if err := onToken(tok); err != nil {
			return FinalResult{}, err
		}
	}
	return f.final, nil
}

func (f *fakeRuntime) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resetErr != nil {
		return f.resetErr
	}
	f.resets++
	return nil
}

func (f *fakeRuntime) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	return nil
}

func (f *fakeRuntime) resetCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resets
}

func (f *fakeRuntime) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

// fakeFactory counts constructions and hands out the given runtime.
type fakeFactory struct {
	rt    *fakeRuntime
	err   error
	calls atomic.Int32
}

func (f *fakeFactory) build(mdl types.Model, opts RuntimeOptions) (ModelRuntime, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	if f.rt != nil {
		return f.rt, nil
	}
	return &fakeRuntime{kind: mdl.Runtime}, nil
}

// newFakeManager builds a manager whose backend factory returns rt (or fresh
// fakes when rt is nil).
func newFakeManager(t *testing.T, cfg ManagerConfig, rt *fakeRuntime) (*Manager, *fakeFactory) {
	t.Helper()
	m := NewWithConfig(cfg)
	f := &fakeFactory{rt: rt}
	m.SetRuntimeFactory(f.build)
	t.Cleanup(func() { _ = m.Close() })
	return m, f
}

// errWriter writes once, then returns an error on subsequent writes.
type errWriter struct{ wrote int }

func (e *errWriter) Write(p []byte) (int, error) {
	if e.wrote == 0 {
		e.wrote += len(p)
		return len(p), nil
	}
	return 0, errors.New("write fail")
}

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}

// openTestStore opens a throwaway sqlite store under the test's temp dir.
func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return st
}

// encodeTestPNG returns a tiny valid PNG as base64, for attachment tests.
func encodeTestPNG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}
