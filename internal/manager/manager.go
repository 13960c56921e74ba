package manager

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"chatmodeld/internal/store"
	"chatmodeld/pkg/types"
)

// Manager owns every live model instance: it constructs backends on demand,
// serializes generations per instance, evicts by LRU under a memory budget
// and tears instances down on unload or shutdown.
type Manager struct {
	mu           sync.RWMutex
	state        State
	cur          *ModelInfo
	err          string
	registry     []types.Model
	budgetMB     int
	marginMB     int
	defaultModel string
	// Multi-instance fields
	instances map[string]*Instance
	loading   map[string]chan struct{} // single-flight guards keyed by model id
	cleanups  map[string]CleanupListener
	usedEstMB int

	// Queue config
	maxQueueDepth int
	maxWait       time.Duration
	drainTimeout  time.Duration

	// Backend config
	llamaCtx       int
	llamaThreads   int
	llamaGPULayers int

	// newRuntime builds the backend for a model. Swappable for tests.
	newRuntime func(types.Model, RuntimeOptions) (ModelRuntime, error)

	store     *store.Store
	log       zerolog.Logger
	publisher EventPublisher
	lruMeta   map[string]store.LRURecord

	loadsTotal     uint64
	evictionsTotal uint64
	startTime      time.Time
	closed         bool
}

func New(reg []types.Model, budgetMB, marginMB int, defaultModel string) *Manager {
	// Delegate to NewWithConfig to centralize defaults and option parsing
	return NewWithConfig(ManagerConfig{
		Registry:     reg,
		BudgetMB:     budgetMB,
		MarginMB:     marginMB,
		DefaultModel: defaultModel,
	})
}

// SetRuntimeFactory replaces the backend constructor. Intended for tests.
func (m *Manager) SetRuntimeFactory(f func(types.Model, RuntimeOptions) (ModelRuntime, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f != nil {
		m.newRuntime = f
	}
}

func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state == StateError {
		return false
	}
	// Ready if any instance is ready
	for _, inst := range m.instances {
		if inst.State == StateReady {
			return true
		}
	}
	// Fallback to legacy notion
	return m.state == StateReady && m.cur != nil
}

func (m *Manager) ListModels() []types.Model {
	m.mu.RLock()
	defer m.mu.RUnlock()
	// return a shallow copy to avoid external mutation
	out := make([]types.Model, len(m.registry))
	copy(out, m.registry)
	return out
}
