package manager

import (
	"context"
	"time"
)

// ResetSession discards the model's conversation state and rebuilds a fresh
// session from the model's configured defaults. The engine stays resident;
// only the session is replaced.
func (m *Manager) ResetSession(ctx context.Context, modelID string) error {
	if modelID == "" {
		modelID = m.defaultModel
		if modelID == "" {
			return ErrModelNotFound("(unspecified)")
		}
	}
	m.mu.RLock()
	inst := m.instances[modelID]
	var rt ModelRuntime
	if inst != nil {
		rt = inst.runtime
	}
	m.mu.RUnlock()
	if inst == nil {
		return ErrModelNotFound(modelID)
	}
	if inst.State == StateDraining {
		return tooBusyError{modelID: modelID}
	}
	if rt == nil {
		return ErrNotInitialized(modelID)
	}

	// Wait for the in-flight slot so a session is never swapped mid-stream.
	release, err := m.beginGeneration(ctx, modelID)
	if err != nil {
		return err
	}
	defer release()

	if err := rt.Reset(); err != nil {
		m.log.Error().Err(err).Str("model", modelID).Msg("session reset failed")
		m.publish(Event{Name: "reset_error", ModelID: modelID, Fields: map[string]any{"error": err.Error()}})
		m.mu.Lock()
		if inst2 := m.instances[modelID]; inst2 != nil {
			inst2.State = StateError
		}
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	if inst2 := m.instances[modelID]; inst2 != nil {
		inst2.LastUsed = time.Now()
		inst2.State = StateReady
	}
	m.mu.Unlock()
	m.log.Info().Str("model", modelID).Msg("session reset")
	m.publish(Event{Name: "reset_done", ModelID: modelID, Fields: map[string]any{}})
	return nil
}
