package manager

import (
	"time"

	"chatmodeld/pkg/types"
)

// State represents lifecycle state of the manager/instances.
type State string

const (
	StateReady    State = "ready"
	StateLoading  State = "loading"
	StateDraining State = "draining"
	StateError    State = "error"
)

// ModelInfo is a minimal view of the current model.
type ModelInfo struct {
	ID      string
	Name    string
	Runtime types.Runtime
	Path    string
	Quant   string
	Family  string
}

// Snapshot is a read-only projection of the manager state.
type Snapshot struct {
	State        State
	CurrentModel *ModelInfo
	Err          string
}

// Instance represents a live model context (one per model id). It pairs the
// admission primitives with the backend runtime executing the model.
type Instance struct {
	ID       string
	Runtime  types.Runtime
	State    State
	LastUsed time.Time
	EstMemMB int
	// Queueing primitives
	genCh   chan struct{} // size 1: single in-flight generation
	queueCh chan struct{} // buffered: queue slots
	// Backend runtime serving this instance. Nil until loading finishes.
	runtime ModelRuntime
}
