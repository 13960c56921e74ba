package manager

// CleanupListener runs after a model's instance is torn down. Callers use it
// to sequence work behind an unload (e.g. reloading with a new config).
type CleanupListener func()

// RegisterCleanup records a listener to run when the named model's instance
// is next torn down. At most one listener is held per model: if one is
// already pending the call is a no-op and returns false.
func (m *Manager) RegisterCleanup(modelID string, fn CleanupListener) bool {
	if fn == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.cleanups[modelID]; exists {
		return false
	}
	m.cleanups[modelID] = fn
	return true
}

// HasPendingCleanup reports whether a listener is waiting on the model.
func (m *Manager) HasPendingCleanup(modelID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.cleanups[modelID]
	return ok
}

// popCleanup removes and returns the pending listener, if any.
func (m *Manager) popCleanup(modelID string) CleanupListener {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn := m.cleanups[modelID]
	delete(m.cleanups, modelID)
	return fn
}

// fireCleanup pops the pending listener and invokes it exactly once. Teardown
// paths (unload, evict, shutdown) call this after the instance is gone.
func (m *Manager) fireCleanup(modelID string) {
	fn := m.popCleanup(modelID)
	if fn == nil {
		return
	}
	m.publish(Event{Name: "cleanup_fired", ModelID: modelID})
	fn()
}
