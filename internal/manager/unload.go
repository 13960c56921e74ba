package manager

import (
	"time"
)

// Unload initiates a graceful drain of a model instance and removes it.
// - Sets instance state to draining to reject new enqueues.
// - Waits up to drainTimeout for in-flight and queued requests to finish.
// - Releases the backend and removes the instance entry.
// - Runs the model's pending cleanup listener, if one was registered.
// Unloading a model with no instance is a no-op error; calling again after a
// successful unload reports not-found rather than touching anything.
func (m *Manager) Unload(modelID string) error {
	if modelID == "" {
		return ErrModelNotFound("(unspecified)")
	}
	m.mu.Lock()
	inst := m.instances[modelID]
	if inst == nil {
		m.mu.Unlock()
		return ErrModelNotFound(modelID)
	}
	inst.State = StateDraining
	m.mu.Unlock()
	m.publish(Event{Name: "unload_start", ModelID: modelID, Fields: map[string]any{}})

	m.drainInstance(inst)

	m.mu.Lock()
	// Adjust accounting and remove
	if inst2 := m.instances[modelID]; inst2 != nil {
		m.usedEstMB -= inst2.EstMemMB
		if m.usedEstMB < 0 {
			m.usedEstMB = 0
		}
	}
	delete(m.instances, modelID)
	if m.cur != nil && m.cur.ID == modelID {
		m.cur = nil
	}
	rt := inst.runtime
	inst.runtime = nil
	m.mu.Unlock()

	// Release the backend outside the lock. Close is idempotent per runtime,
	// so a racing teardown cannot double-free.
	if rt != nil {
		if err := rt.Close(); err != nil {
			m.log.Warn().Err(err).Str("model", modelID).Msg("unload close")
		}
	}
	m.fireCleanup(modelID)
	m.forgetPersist(modelID)

	m.log.Info().Str("model", modelID).Msg("instance unloaded")
	m.publish(Event{Name: "unload_done", ModelID: modelID, Fields: map[string]any{}})
	return nil
}

// drainInstance waits up to drainTimeout for in-flight and queued work.
func (m *Manager) drainInstance(inst *Instance) {
	deadline := time.Now().Add(m.drainTimeout)
	for {
		m.mu.RLock()
		qlen := len(inst.queueCh)
		inflight := len(inst.genCh)
		m.mu.RUnlock()
		if inflight == 0 && qlen == 0 {
			return
		}
		if time.Now().After(deadline) {
			m.publish(Event{Name: "unload_timeout", ModelID: inst.ID, Fields: map[string]any{"inflight": inflight, "queue": qlen}})
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// Close drains every instance and releases all backends. The manager refuses
// new work afterwards. Safe to call more than once.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.state = StateDraining
	insts := make([]*Instance, 0, len(m.instances))
	for _, inst := range m.instances {
		inst.State = StateDraining
		insts = append(insts, inst)
	}
	m.mu.Unlock()

	for _, inst := range insts {
		m.drainInstance(inst)

		m.mu.Lock()
		delete(m.instances, inst.ID)
		rt := inst.runtime
		inst.runtime = nil
		estMB := inst.EstMemMB
		m.mu.Unlock()

		if rt != nil {
			if err := rt.Close(); err != nil {
				m.log.Warn().Err(err).Str("model", inst.ID).Msg("shutdown close")
			}
		}
		m.fireCleanup(inst.ID)
		// Keep the LRU row so a restart can reuse the sizing estimate.
		m.touchPersist(inst.ID, estMB)
		m.publish(Event{Name: "shutdown_unload", ModelID: inst.ID, Fields: map[string]any{}})
	}

	m.mu.Lock()
	m.usedEstMB = 0
	m.cur = nil
	st := m.store
	m.store = nil
	m.mu.Unlock()
	if st != nil {
		if err := st.Close(); err != nil {
			m.log.Warn().Err(err).Msg("close store")
		}
	}
	m.log.Info().Msg("manager closed")
	return nil
}
