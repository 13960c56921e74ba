package manager

import (
	"context"
	"time"
)

// EnsureInstance makes sure a live instance exists for the model: it resolves
// the model, evicts idle instances until the estimate fits the budget, builds
// the backend and commits the instance as ready. Construction failures leave
// no instance behind. Concurrent callers for the same model share one load.
func (m *Manager) EnsureInstance(ctx context.Context, modelID string) error {
	startTs := time.Now()
	if modelID == "" {
		// If unspecified, use default if present; else no-op
		modelID = m.defaultModel
		if modelID == "" {
			return nil
		}
	}

	// Fast path plus single-flight: either the instance is usable, or we
	// become the loader, or we wait for the in-flight loader and re-check.
	var gate chan struct{}
	for {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return ErrDependencyUnavailable("manager is shut down")
		}
		if inst, ok := m.instances[modelID]; ok && inst != nil {
			switch inst.State {
			case StateReady:
				inst.LastUsed = time.Now()
				m.mu.Unlock()
				return nil
			case StateDraining:
				m.mu.Unlock()
				return tooBusyError{modelID: modelID}
			}
		}
		ch, inFlight := m.loading[modelID]
		if !inFlight {
			gate = make(chan struct{})
			m.loading[modelID] = gate
			m.mu.Unlock()
			break
		}
		m.mu.Unlock()
		select {
		case <-ch:
			// loader finished; re-check from the top
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	defer func() {
		m.mu.Lock()
		delete(m.loading, modelID)
		m.mu.Unlock()
		close(gate)
	}()

	m.log.Debug().Str("model", modelID).Msg("ensure start")
	m.publish(Event{Name: "ensure_start", ModelID: modelID, Fields: map[string]any{}})

	// Resolve model from registry
	mdl, ok := m.getModelByID(modelID)
	if !ok {
		m.publish(Event{Name: "ensure_model_not_found", ModelID: modelID, Fields: map[string]any{}})
		return ErrModelNotFound(modelID)
	}
	reqMB := m.estimateMemMB(mdl)

	// Evict until it fits budget + margin, if budget configured
	if m.budgetMB > 0 {
		if err := m.evictUntilFits(reqMB); err != nil {
			m.publish(Event{Name: "ensure_budget_fail", ModelID: modelID, Fields: map[string]any{"error": err.Error()}})
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	// Register the loading instance before the (slow) backend construction so
	// status reports the warmup.
	m.mu.Lock()
	m.state = StateLoading
	m.err = ""
	inst, existed := m.instances[modelID]
	addedNow := false
	if !existed || inst == nil {
		inst = &Instance{
			ID:       modelID,
			Runtime:  mdl.Runtime,
			State:    StateLoading,
			LastUsed: time.Now(),
			EstMemMB: reqMB,
			genCh:    make(chan struct{}, 1),
			queueCh:  make(chan struct{}, m.maxQueueDepth),
		}
		m.instances[modelID] = inst
		addedNow = true
	} else {
		inst.State = StateLoading
		inst.EstMemMB = reqMB
		inst.LastUsed = time.Now()
	}
	opts := RuntimeOptions{
		ContextSize: m.llamaCtx,
		Threads:     m.llamaThreads,
		GPULayers:   m.llamaGPULayers,
	}
	factory := m.newRuntime
	m.mu.Unlock()

	// Build the backend outside the lock; loads can take seconds.
	rt, err := factory(mdl, opts)
	if err != nil {
		m.mu.Lock()
		if addedNow {
			delete(m.instances, modelID)
		} else if cur := m.instances[modelID]; cur != nil {
			cur.State = StateError
		}
		m.state = StateError
		m.err = err.Error()
		m.mu.Unlock()
		m.log.Error().Err(err).Str("model", modelID).Msg("ensure failed")
		m.publish(Event{Name: "ensure_error", ModelID: modelID, Fields: map[string]any{"error": err.Error()}})
		if IsDependencyUnavailable(err) {
			return err
		}
		return ErrInitFailed(modelID, err)
	}

	// Commit instance as ready
	m.mu.Lock()
	if addedNow {
		// Only add to used estimate when we actually added a new instance
		m.usedEstMB += reqMB
	}
	inst.runtime = rt
	inst.State = StateReady
	inst.LastUsed = time.Now()
	m.cur = &ModelInfo{ID: modelID, Name: mdl.Name, Runtime: mdl.Runtime, Path: mdl.Path, Quant: mdl.Quant, Family: mdl.Family}
	m.state = StateReady
	m.err = ""
	m.loadsTotal++
	m.mu.Unlock()
	m.touchPersist(modelID, reqMB)

	durMS := int(time.Since(startTs) / time.Millisecond)
	m.log.Info().Str("model", modelID).Str("runtime", string(mdl.Runtime)).Int("est_mem_mb", reqMB).Int("dur_ms", durMS).Msg("instance ready")
	m.publish(Event{Name: "ensure_ready", ModelID: modelID, Fields: map[string]any{"dur_ms": durMS}})
	return nil
}

// touchPersist records LRU metadata so a restart can keep sizing estimates.
// Detached context: persistence is best-effort and must not inherit request
// cancellation.
func (m *Manager) touchPersist(modelID string, estMB int) {
	m.mu.RLock()
	st := m.store
	m.mu.RUnlock()
	if st == nil {
		return
	}
	if err := st.TouchInstance(context.Background(), modelID, time.Now(), estMB); err != nil {
		m.log.Warn().Err(err).Str("model", modelID).Msg("persist lru touch")
	}
}
