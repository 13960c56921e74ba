package manager

import (
	"sort"
	"time"

	"github.com/shirou/gopsutil/v3/mem"

	"chatmodeld/pkg/types"
)

// Snapshot returns a read-only view of the manager state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{State: m.state, CurrentModel: m.cur, Err: m.err}
}

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	m.mu.RLock()
	resp := types.StatusResponse{
		BudgetMB:       m.budgetMB,
		UsedMB:         m.usedEstMB,
		MarginMB:       m.marginMB,
		Error:          m.err,
		LastError:      m.err,
		State:          string(m.state),
		UptimeSeconds:  int64(time.Since(m.startTime) / time.Second),
		ServerTimeUnix: time.Now().Unix(),
		EvictionsTotal: m.evictionsTotal,
		LoadsTotal:     m.loadsTotal,
	}
	resp.Instances = make([]types.InstanceStatus, 0, len(m.instances))
	warmups := 0
	draining := 0
	for _, inst := range m.instances {
		if inst.State == StateLoading {
			warmups++
		}
		if inst.State == StateDraining {
			draining++
		}
		resp.Instances = append(resp.Instances, types.InstanceStatus{
			ModelID:       inst.ID,
			Runtime:       inst.Runtime,
			State:         string(inst.State),
			LastUsed:      inst.LastUsed.Unix(),
			EstMemMB:      inst.EstMemMB,
			QueueLen:      len(inst.queueCh),
			Inflight:      len(inst.genCh),
			MaxQueueDepth: cap(inst.queueCh),
		})
	}
	m.mu.RUnlock()
	sort.Slice(resp.Instances, func(i, j int) bool {
		return resp.Instances[i].ModelID < resp.Instances[j].ModelID
	})
	resp.WarmupsInProgress = warmups
	resp.DrainingCount = draining
	if vm, err := mem.VirtualMemory(); err == nil {
		resp.HostTotalMB = int(vm.Total / (1024 * 1024))
		resp.HostAvailMB = int(vm.Available / (1024 * 1024))
	}
	return resp
}
