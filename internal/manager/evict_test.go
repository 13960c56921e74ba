package manager

import (
	"testing"
	"time"

	"chatmodeld/pkg/types"
)

func TestEvictSkipsBusyInstances(t *testing.T) {
	dir := t.TempDir()
	pa := createModelFile(t, dir, "a.gguf", 20)
	pb := createModelFile(t, dir, "b.gguf", 20)
	reg := []types.Model{{ID: "a", Path: pa}, {ID: "b", Path: pb}}
	m, _ := newFakeManager(t, ManagerConfig{Registry: reg, BudgetMB: 30}, nil)

	if err := m.EnsureInstance(testCtx(t), "a"); err != nil {
		t.Fatalf("ensure a: %v", err)
	}
	// Mark a as busy so it cannot be evicted.
	m.mu.RLock()
	instA := m.instances["a"]
	m.mu.RUnlock()
	instA.genCh <- struct{}{}
	defer func() { <-instA.genCh }()

	err := m.EnsureInstance(testCtx(t), "b")
	if err == nil || !IsBudgetExceeded(err) {
		t.Fatalf("expected budget-exceeded with only busy instances, got %v", err)
	}
	// The busy instance must survive.
	m.mu.RLock()
	_, aAlive := m.instances["a"]
	_, bAlive := m.instances["b"]
	m.mu.RUnlock()
	if !aAlive {
		t.Fatalf("busy instance was evicted")
	}
	if bAlive {
		t.Fatalf("failed load left a half-registered instance")
	}
}

func TestEvictClosesRuntimeAndForgets(t *testing.T) {
	dir := t.TempDir()
	pa := createModelFile(t, dir, "a.gguf", 20)
	pb := createModelFile(t, dir, "b.gguf", 20)
	reg := []types.Model{{ID: "a", Path: pa}, {ID: "b", Path: pb}}
	st := openTestStore(t)
	m, f := newFakeManager(t, ManagerConfig{Registry: reg, BudgetMB: 30, Store: st}, nil)

	if err := m.EnsureInstance(testCtx(t), "a"); err != nil {
		t.Fatalf("ensure a: %v", err)
	}
	if err := m.EnsureInstance(testCtx(t), "b"); err != nil {
		t.Fatalf("ensure b: %v", err)
	}
	if got := f.calls.Load(); got != 2 {
		t.Fatalf("expected two constructions, got %d", got)
	}

	m.mu.RLock()
	_, aAlive := m.instances["a"]
	_, bAlive := m.instances["b"]
	used := m.usedEstMB
	evictions := m.evictionsTotal
	m.mu.RUnlock()
	if aAlive {
		t.Fatalf("expected LRU instance a evicted")
	}
	if !bAlive {
		t.Fatalf("expected b resident after eviction")
	}
	if evictions != 1 {
		t.Fatalf("expected one eviction, got %d", evictions)
	}
	if used > 30 {
		t.Fatalf("used accounting above budget after eviction: %d", used)
	}

	// Only b's LRU row survives in the store.
	rows, err := st.LoadLRU(testCtx(t))
	if err != nil {
		t.Fatalf("LoadLRU: %v", err)
	}
	if _, ok := rows["a"]; ok {
		t.Fatalf("evicted instance still persisted")
	}
	if _, ok := rows["b"]; !ok {
		t.Fatalf("resident instance missing from store")
	}
}

func TestEvictPrefersLeastRecentlyUsed(t *testing.T) {
	dir := t.TempDir()
	pa := createModelFile(t, dir, "a.gguf", 10)
	pb := createModelFile(t, dir, "b.gguf", 10)
	pc := createModelFile(t, dir, "c.gguf", 15)
	reg := []types.Model{{ID: "a", Path: pa}, {ID: "b", Path: pb}, {ID: "c", Path: pc}}
	m, _ := newFakeManager(t, ManagerConfig{Registry: reg, BudgetMB: 30}, nil)

	if err := m.EnsureInstance(testCtx(t), "a"); err != nil {
		t.Fatalf("ensure a: %v", err)
	}
	if err := m.EnsureInstance(testCtx(t), "b"); err != nil {
		t.Fatalf("ensure b: %v", err)
	}
	// Touch a so b becomes the LRU candidate.
	m.mu.Lock()
	m.instances["a"].LastUsed = time.Now()
	m.instances["b"].LastUsed = time.Now().Add(-time.Hour)
	m.mu.Unlock()

	if err := m.EnsureInstance(testCtx(t), "c"); err != nil {
		t.Fatalf("ensure c: %v", err)
	}
	m.mu.RLock()
	_, aAlive := m.instances["a"]
	_, bAlive := m.instances["b"]
	_, cAlive := m.instances["c"]
	m.mu.RUnlock()
	if !aAlive || bAlive || !cAlive {
		t.Fatalf("expected b evicted (a=%v b=%v c=%v)", aAlive, bAlive, cAlive)
	}
}

func TestEvictBudgetErrorNamesCapacity(t *testing.T) {
	dir := t.TempDir()
	p := createModelFile(t, dir, "big.gguf", 50)
	m, _ := newFakeManager(t, ManagerConfig{Registry: []types.Model{{ID: "big", Path: p}}, BudgetMB: 10}, nil)

	err := m.EnsureInstance(testCtx(t), "big")
	if err == nil || !IsBudgetExceeded(err) {
		t.Fatalf("expected budget-exceeded, got %v", err)
	}
}
