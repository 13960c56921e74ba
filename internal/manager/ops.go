package manager

import (
	"context"

	"github.com/google/uuid"

	"chatmodeld/pkg/types"
)

// nextOpID mints an operation identifier for async work.
func (m *Manager) nextOpID() string { return "op-" + uuid.NewString() }

// Switch kicks off an async model switch/ensure and returns an operation ID.
// The operation runs in the background; callers can poll Status() to observe
// state transitions.
func (m *Manager) Switch(ctx context.Context, modelID string) (string, error) {
	op := m.nextOpID()
	go func() {
		// Use a detached context so background work isn't canceled when the
		// caller context is canceled; shutdown is still respected inside
		// EnsureInstance.
		if err := m.EnsureInstance(context.Background(), modelID); err != nil {
			m.log.Warn().Err(err).Str("model", modelID).Str("op", op).Msg("background switch")
		}
	}()
	return op, nil
}

// History returns the most recent generation records, newest first. Without a
// persistence store it returns an empty slice.
func (m *Manager) History(ctx context.Context, limit int) ([]types.GenerationRecord, error) {
	m.mu.RLock()
	st := m.store
	m.mu.RUnlock()
	if st == nil {
		return []types.GenerationRecord{}, nil
	}
	return st.RecentGenerations(ctx, limit)
}
