package e2e

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chatmodeld/internal/httpapi"
	"chatmodeld/internal/manager"
	"chatmodeld/internal/registry"
	"chatmodeld/pkg/types"
)

// createTempModelsDir creates a temporary directory populated with empty
// .gguf files and returns the directory path plus the model IDs the scanner
// will assign (filenames without extension).
func createTempModelsDir(t *testing.T, names ...string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	ids := make([]string, 0, len(names))
	for _, n := range names {
		p := filepath.Join(dir, n)
		if err := os.WriteFile(p, []byte(""), 0o644); err != nil {
			t.Fatalf("write temp model %s: %v", p, err)
		}
		ids = append(ids, strings.TrimSuffix(n, filepath.Ext(n)))
	}
	return dir, ids
}

// createGenieBundle adds a bundle subdirectory with an engine config so the
// scanner picks it up as a genie entry. Returns the bundle's model ID.
func createGenieBundle(t *testing.T, dir, name string) string {
	t.Helper()
	bundle := filepath.Join(dir, name)
	if err := os.MkdirAll(bundle, 0o755); err != nil {
		t.Fatalf("mkdir bundle: %v", err)
	}
	cfg := filepath.Join(bundle, "genie_config.json")
	if err := os.WriteFile(cfg, []byte(`{"dialog":{}}`), 0o644); err != nil {
		t.Fatalf("write engine config: %v", err)
	}
	return name
}

// scriptedRuntime streams a fixed token sequence. A non-zero delay spaces the
// tokens out so admission and cancellation paths can be exercised.
type scriptedRuntime struct {
	kind   types.Runtime
	tokens []string
	delay  time.Duration
}

func (r *scriptedRuntime) Kind() types.Runtime { return r.kind }

func (r *scriptedRuntime) Generate(ctx context.Context, prompt string, params manager.GenParams, onToken func(string) error) (manager.FinalResult, error) {
	var b strings.Builder
	for _, tok := range r.tokens {
		if r.delay > 0 {
			select {
			case <-ctx.Done():
				return manager.FinalResult{Content: b.String()}, ctx.Err()
			case <-time.After(r.delay):
			}
		} else if err := ctx.Err(); err != nil {
			return manager.FinalResult{Content: b.String()}, err
		}
		if err := onToken(tok); err != nil {
			return manager.FinalResult{Content: b.String()}, err
		}
		b.WriteString(tok)
	}
	return manager.FinalResult{Content: b.String(), FinishReason: "stop"}, nil
}

func (r *scriptedRuntime) Reset() error { return nil }
func (r *scriptedRuntime) Close() error { return nil }

// scriptRuntimes installs a factory that answers every load with a scripted
// backend, so the full HTTP and admission stack runs without native engines.
func scriptRuntimes(mgr *manager.Manager, delay time.Duration, tokens ...string) {
	mgr.SetRuntimeFactory(func(mdl types.Model, _ manager.RuntimeOptions) (manager.ModelRuntime, error) {
		return &scriptedRuntime{kind: mdl.Runtime, tokens: tokens, delay: delay}, nil
	})
}

func newServerForDir(t *testing.T, modelsDir string, budgetMB, marginMB int, defaultModel string) (*httptest.Server, *manager.Manager) {
	t.Helper()
	reg, err := registry.LoadDir(modelsDir)
	if err != nil {
		t.Fatalf("scan models: %v", err)
	}
	mgr := manager.New(reg, budgetMB, marginMB, defaultModel)
	srv := httptest.NewServer(httpapi.NewMux(mgr))
	t.Cleanup(srv.Close)
	return srv, mgr
}

// newServerForDirWithConfig allows configuring queue/backpressure behavior.
func newServerForDirWithConfig(t *testing.T, modelsDir string, cfg manager.ManagerConfig) (*httptest.Server, *manager.Manager) {
	t.Helper()
	reg, err := registry.LoadDir(modelsDir)
	if err != nil {
		t.Fatalf("scan models: %v", err)
	}
	cfg.Registry = reg
	mgr := manager.NewWithConfig(cfg)
	srv := httptest.NewServer(httpapi.NewMux(mgr))
	t.Cleanup(srv.Close)
	return srv, mgr
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}
