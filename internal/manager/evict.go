package manager

import (
	"context"
	"fmt"
	"time"
)

// Evict LRU idle instances until required MB fits budget + margin.
func (m *Manager) evictUntilFits(requiredMB int) error {
	deadline := time.Now().Add(1 * time.Second)
	for {
		m.mu.Lock()
		fits := (m.usedEstMB + requiredMB + m.marginMB) <= m.budgetMB
		if fits {
			m.mu.Unlock()
			return nil
		}
		// Pick LRU idle instance (ready, no in-flight and no queued requests)
		var lru *Instance
		for _, inst := range m.instances {
			if inst.State != StateReady {
				continue
			}
			if len(inst.genCh) > 0 || len(inst.queueCh) > 0 {
				// active or has queued work; skip
				continue
			}
			if lru == nil || inst.LastUsed.Before(lru.LastUsed) {
				lru = inst
			}
		}
		if lru == nil {
			// Nothing idle to evict; report capacity instead of waiting out
			// in-flight work.
			used := m.usedEstMB
			m.mu.Unlock()
			return ErrBudgetExceeded(fmt.Sprintf("need %dMB, used %dMB of %dMB budget (margin %dMB), no idle instance to evict", requiredMB, used, m.budgetMB, m.marginMB))
		}
		delete(m.instances, lru.ID)
		m.usedEstMB -= lru.EstMemMB
		if m.usedEstMB < 0 {
			m.usedEstMB = 0
		}
		if m.cur != nil && m.cur.ID == lru.ID {
			m.cur = nil
		}
		m.evictionsTotal++
		rt := lru.runtime
		lru.runtime = nil
		m.mu.Unlock()

		// Release the backend outside the lock; engine teardown can block.
		if rt != nil {
			if err := rt.Close(); err != nil {
				m.log.Warn().Err(err).Str("model", lru.ID).Msg("evict close")
			}
		}
		m.fireCleanup(lru.ID)
		m.forgetPersist(lru.ID)
		m.log.Info().Str("model", lru.ID).Int("est_mem_mb", lru.EstMemMB).Msg("instance evicted")
		m.publish(Event{Name: "evict", ModelID: lru.ID, Fields: map[string]any{"est_mem_mb": lru.EstMemMB}})

		if time.Now().After(deadline) {
			return ErrBudgetExceeded(fmt.Sprintf("need %dMB within %dMB budget, eviction deadline passed", requiredMB, m.budgetMB))
		}
		// loop to re-check
	}
}

// forgetPersist drops persisted LRU metadata for a removed instance.
func (m *Manager) forgetPersist(modelID string) {
	m.mu.RLock()
	st := m.store
	m.mu.RUnlock()
	if st == nil {
		return
	}
	if err := st.ForgetInstance(context.Background(), modelID); err != nil {
		m.log.Warn().Err(err).Str("model", modelID).Msg("persist lru forget")
	}
}
