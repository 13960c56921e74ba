package manager

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"chatmodeld/internal/store"
	"chatmodeld/pkg/types"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultMaxQueueDepth = 32
	defaultMaxWait       = 30 * time.Second
	defaultDrainTimeout  = 5 * time.Second
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	Registry      []types.Model
	BudgetMB      int
	MarginMB      int
	DefaultModel  string
	MaxQueueDepth int
	MaxWait       time.Duration
	DrainTimeout  time.Duration
	// Backend configuration (no envs; set by callers)
	LlamaCtx       int
	LlamaThreads   int
	LlamaGPULayers int
	// Optional persistence for LRU metadata and generation history.
	Store *store.Store
	// Optional structured logger. Nop when nil.
	Logger *zerolog.Logger
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		state:        StateLoading,
		registry:     cfg.Registry,
		budgetMB:     cfg.BudgetMB,
		marginMB:     cfg.MarginMB,
		defaultModel: cfg.DefaultModel,
		instances:    make(map[string]*Instance),
		loading:      make(map[string]chan struct{}),
		cleanups:     make(map[string]CleanupListener),
		lruMeta:      make(map[string]store.LRURecord),
	}
	// Apply defaults if unset
	if cfg.MaxQueueDepth <= 0 {
		m.maxQueueDepth = defaultMaxQueueDepth
	} else {
		m.maxQueueDepth = cfg.MaxQueueDepth
	}
	if cfg.MaxWait <= 0 {
		m.maxWait = defaultMaxWait
	} else {
		m.maxWait = cfg.MaxWait
	}
	if cfg.DrainTimeout <= 0 {
		m.drainTimeout = defaultDrainTimeout
	} else {
		m.drainTimeout = cfg.DrainTimeout
	}
	// Backend configuration
	m.llamaCtx = cfg.LlamaCtx
	m.llamaThreads = cfg.LlamaThreads
	m.llamaGPULayers = cfg.LlamaGPULayers
	m.newRuntime = newModelRuntime
	m.publisher = noopPublisher{}
	if cfg.Logger != nil {
		m.log = *cfg.Logger
	} else {
		m.log = zerolog.Nop()
	}
	m.store = cfg.Store
	if m.store != nil {
		if meta, err := m.store.LoadLRU(context.Background()); err == nil {
			m.lruMeta = meta
		} else {
			m.log.Warn().Err(err).Msg("load lru metadata")
		}
	}
	m.startTime = time.Now()
	return m
}
