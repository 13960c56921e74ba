package genie

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// swapNative installs fake native entry points for one test and restores
// the originals on cleanup. Nil arguments keep the current implementation.
func swapNative(t *testing.T, load func(string, string) (uintptr, error), gen func(uintptr, string, func(string) bool) error, free func(uintptr)) {
	t.Helper()
	origLoad, origGen, origFree := nativeLoad, nativeGenerate, nativeFree
	if load != nil {
		nativeLoad = load
	}
	if gen != nil {
		nativeGenerate = gen
	}
	if free != nil {
		nativeFree = free
	}
	t.Cleanup(func() {
		nativeLoad, nativeGenerate, nativeFree = origLoad, origGen, origFree
	})
}

func loadTestEngine(t *testing.T, handle uintptr) *Engine {
	t.Helper()
	swapNative(t, func(string, string) (uintptr, error) { return handle, nil }, nil, nil)
	e, err := Load(t.TempDir(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return e
}

func TestLoadReturnsLiveEngine(t *testing.T) {
	dir := t.TempDir()
	var gotDir, gotCfg string
	swapNative(t, func(bundleDir, engineConfig string) (uintptr, error) {
		gotDir, gotCfg = bundleDir, engineConfig
		return 42, nil
	}, nil, nil)
	cfg := filepath.Join(dir, "genie_config.json")
	if err := os.WriteFile(cfg, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	e, err := Load(dir, cfg)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if e.Closed() {
		t.Fatalf("fresh engine reported closed")
	}
	if gotDir != dir || gotCfg != cfg {
		t.Fatalf("native load got (%q, %q)", gotDir, gotCfg)
	}
	if e.BundleDir() != dir || e.EngineConfig() != cfg {
		t.Fatalf("engine paths lost: %q %q", e.BundleDir(), e.EngineConfig())
	}
}

func TestLoadZeroHandleIsConstructionFailure(t *testing.T) {
	swapNative(t, func(string, string) (uintptr, error) { return 0, nil }, nil, nil)
	if _, err := Load(t.TempDir(), ""); !errors.Is(err, ErrLoadFailed) {
		t.Fatalf("expected ErrLoadFailed, got %v", err)
	}
}

func TestLoadValidatesPathsBeforeNativeCall(t *testing.T) {
	calls := 0
	swapNative(t, func(string, string) (uintptr, error) { calls++; return 1, nil }, nil, nil)

	if _, err := Load(filepath.Join(t.TempDir(), "missing"), ""); err == nil {
		t.Fatalf("expected error for missing bundle dir")
	}
	file := filepath.Join(t.TempDir(), "weights.bin")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(file, ""); err == nil {
		t.Fatalf("expected error for non-directory bundle")
	}
	if _, err := Load(t.TempDir(), filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing engine config")
	}
	if calls != 0 {
		t.Fatalf("native load should not run on invalid paths, got %d calls", calls)
	}
}

func TestGenerateStreamsTokensInOrder(t *testing.T) {
	e := loadTestEngine(t, 7)
	swapNative(t, nil, func(h uintptr, prompt string, emit func(string) bool) error {
		if h != 7 {
			t.Fatalf("unexpected handle %d", h)
		}
		for _, tok := range []string{"hel", "lo ", "world"} {
			if !emit(tok) {
				break
			}
		}
		return nil
	}, nil)
	var got string
	err := e.Generate(context.Background(), "hi", func(tok string) error {
		got += tok
		return nil
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "hello world" {
		t.Fatalf("tokens out of order or lost: %q", got)
	}
}

func TestGenerateAfterCloseGuards(t *testing.T) {
	e := loadTestEngine(t, 7)
	gens := 0
	swapNative(t, nil, func(uintptr, string, func(string) bool) error { gens++; return nil }, nil)
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	err := e.Generate(context.Background(), "hi", func(string) error { return nil })
	if !errors.Is(err, ErrEngineClosed) {
		t.Fatalf("expected ErrEngineClosed, got %v", err)
	}
	if gens != 0 {
		t.Fatalf("native generate ran against released handle")
	}
}

func TestGenerateRejectsEmptyPrompt(t *testing.T) {
	e := loadTestEngine(t, 7)
	for _, p := range []string{"", "   ", "\n\t"} {
		if err := e.Generate(context.Background(), p, func(string) error { return nil }); !errors.Is(err, ErrEmptyPrompt) {
			t.Fatalf("prompt %q: expected ErrEmptyPrompt, got %v", p, err)
		}
	}
}

func TestGenerateCallbackErrorStopsStream(t *testing.T) {
	e := loadTestEngine(t, 7)
	emitted, stopped := 0, false
	swapNative(t, nil, func(h uintptr, prompt string, emit func(string) bool) error {
		for i := 0; i < 10; i++ {
			emitted++
			if !emit(fmt.Sprintf("t%d", i)) {
				stopped = true
				return nil
			}
		}
		return nil
	}, nil)
	boom := errors.New("sink full")
	err := e.Generate(context.Background(), "hi", func(tok string) error {
		if tok == "t2" {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if !stopped || emitted != 3 {
		t.Fatalf("stream did not stop at callback error: emitted=%d stopped=%v", emitted, stopped)
	}
}

func TestGenerateContextCancelStopsStream(t *testing.T) {
	e := loadTestEngine(t, 7)
	swapNative(t, nil, func(h uintptr, prompt string, emit func(string) bool) error {
		for i := 0; i < 10; i++ {
			if !emit("x") {
				return nil
			}
		}
		return nil
	}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	tokens := 0
	err := e.Generate(ctx, "hi", func(string) error {
		tokens++
		cancel()
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if tokens != 1 {
		t.Fatalf("expected stream to stop after cancel, got %d tokens", tokens)
	}
}

func TestGenerateWrapsNativeError(t *testing.T) {
	e := loadTestEngine(t, 7)
	swapNative(t, nil, func(uintptr, string, func(string) bool) error {
		return errors.New("engine query failed: code 3")
	}, nil)
	err := e.Generate(context.Background(), "hi", func(string) error { return nil })
	if err == nil {
		t.Fatalf("expected native error to propagate")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	e := loadTestEngine(t, 99)
	var freed []uintptr
	swapNative(t, nil, nil, func(h uintptr) { freed = append(freed, h) })
	for i := 0; i < 3; i++ {
		if err := e.Close(); err != nil {
			t.Fatalf("Close #%d: %v", i+1, err)
		}
	}
	if len(freed) != 1 || freed[0] != 99 {
		t.Fatalf("expected exactly one free of handle 99, got %v", freed)
	}
	if !e.Closed() {
		t.Fatalf("engine should report closed")
	}
}

func TestStubBuildFailsFast(t *testing.T) {
	// Exercises whichever bindings the build carries: without the genie tag
	// the load must fail with ErrNotBuilt rather than return a handle.
	_, err := Load(t.TempDir(), "")
	if err == nil {
		t.Skip("native engine available in this build")
	}
	if !errors.Is(err, ErrNotBuilt) {
		t.Fatalf("expected ErrNotBuilt from stub bindings, got %v", err)
	}
}
