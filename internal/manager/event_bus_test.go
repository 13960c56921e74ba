package manager

import (
	"testing"

	"chatmodeld/pkg/types"
)

func eventNames(evs []Event) []string {
	out := make([]string, 0, len(evs))
	for _, e := range evs {
		out = append(out, e.Name)
	}
	return out
}

func indexOf(names []string, want string) int {
	for i, n := range names {
		if n == want {
			return i
		}
	}
	return -1
}

func TestLifecycleEventsPublishedInOrder(t *testing.T) {
	dir := t.TempDir()
	p := createModelFile(t, dir, "m.gguf", 1)
	rt := &fakeRuntime{tokens: []string{"x"}}
	m, _ := newFakeManager(t, ManagerConfig{Registry: []types.Model{{ID: "m", Path: p}}, DefaultModel: "m"}, rt)
	pub := NewMemoryPublisher()
	m.SetEventPublisher(pub)

	if _, err := m.RunInference(testCtx(t), types.GenerateRequest{Prompt: "hi"}, nil, nil); err != nil {
		t.Fatalf("RunInference: %v", err)
	}
	if err := m.Unload("m"); err != nil {
		t.Fatalf("unload: %v", err)
	}

	names := eventNames(pub.Events())
	order := []string{"ensure_start", "ensure_ready", "infer_start", "infer_done", "unload_start", "unload_done"}
	last := -1
	for _, want := range order {
		idx := indexOf(names, want)
		if idx == -1 {
			t.Fatalf("missing event %q in %v", want, names)
		}
		if idx <= last {
			t.Fatalf("event %q out of order in %v", want, names)
		}
		last = idx
	}
}

func TestFailureEventsPublished(t *testing.T) {
	m, _ := newFakeManager(t, ManagerConfig{}, nil)
	pub := NewMemoryPublisher()
	m.SetEventPublisher(pub)

	if err := m.EnsureInstance(testCtx(t), "ghost"); err == nil {
		t.Fatalf("expected failure for unknown model")
	}
	names := eventNames(pub.Events())
	if indexOf(names, "ensure_model_not_found") == -1 {
		t.Fatalf("expected ensure_model_not_found event, got %v", names)
	}
}

func TestCleanupEventPublished(t *testing.T) {
	dir := t.TempDir()
	p := createModelFile(t, dir, "m.gguf", 1)
	m, _ := newFakeManager(t, ManagerConfig{Registry: []types.Model{{ID: "m", Path: p}}}, nil)
	if err := m.EnsureInstance(testCtx(t), "m"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	pub := NewMemoryPublisher()
	m.SetEventPublisher(pub)
	m.RegisterCleanup("m", func() {})

	if err := m.Unload("m"); err != nil {
		t.Fatalf("unload: %v", err)
	}
	names := eventNames(pub.Events())
	cleanupIdx := indexOf(names, "cleanup_fired")
	doneIdx := indexOf(names, "unload_done")
	if cleanupIdx == -1 {
		t.Fatalf("expected cleanup_fired event, got %v", names)
	}
	if doneIdx != -1 && cleanupIdx > doneIdx {
		t.Fatalf("cleanup must fire before unload completes: %v", names)
	}
}
