package manager

import (
	"testing"
	"time"

	"chatmodeld/pkg/types"
)

func TestSwitchRunsEnsureInBackground(t *testing.T) {
	dir := t.TempDir()
	p := createModelFile(t, dir, "m.gguf", 1)
	m, f := newFakeManager(t, ManagerConfig{Registry: []types.Model{{ID: "m", Path: p}}}, nil)

	op, err := m.Switch(testCtx(t), "m")
	if err != nil {
		t.Fatalf("switch: %v", err)
	}
	if len(op) < 4 || op[:3] != "op-" {
		t.Fatalf("unexpected op id %q", op)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if m.Ready() {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("instance never became ready after switch")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := f.calls.Load(); got != 1 {
		t.Fatalf("expected one construction, got %d", got)
	}
}

func TestSwitchUnknownModelStillReturnsOp(t *testing.T) {
	m, _ := newFakeManager(t, ManagerConfig{}, nil)
	op, err := m.Switch(testCtx(t), "ghost")
	if err != nil {
		t.Fatalf("switch must not fail synchronously: %v", err)
	}
	if op == "" {
		t.Fatalf("expected op id")
	}
	// The failure lands in the background; the manager stays usable.
	time.Sleep(20 * time.Millisecond)
	if m.Ready() {
		t.Fatalf("nothing should be ready")
	}
}

func TestHistoryWithoutStoreIsEmpty(t *testing.T) {
	m, _ := newFakeManager(t, ManagerConfig{}, nil)
	recs, err := m.History(testCtx(t), 5)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if recs == nil || len(recs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", recs)
	}
}

func TestHistoryNewestFirstAndLimited(t *testing.T) {
	dir := t.TempDir()
	p := createModelFile(t, dir, "m.gguf", 1)
	st := openTestStore(t)
	rt := &fakeRuntime{tokens: []string{"x"}}
	m, _ := newFakeManager(t, ManagerConfig{Registry: []types.Model{{ID: "m", Path: p}}, DefaultModel: "m", Store: st}, rt)

	for i := 0; i < 3; i++ {
		if _, err := m.RunInference(testCtx(t), types.GenerateRequest{Prompt: "p"}, nil, nil); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	recs, err := m.History(testCtx(t), 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected limit applied, got %d records", len(recs))
	}
	for _, r := range recs {
		if r.ModelID != "m" || r.ID == "" {
			t.Fatalf("unexpected record %+v", r)
		}
	}
}
