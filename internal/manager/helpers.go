package manager

import (
	"os"

	"chatmodeld/internal/common/fsutil"
	"chatmodeld/pkg/types"
)

// Helper: find model in registry by id.
func (m *Manager) getModelByID(id string) (types.Model, bool) {
	for _, mdl := range m.registry {
		if mdl.ID == id {
			return mdl, true
		}
	}
	return types.Model{}, false
}

// Helper: estimate resident memory from the model's on-disk size (MB).
// GGUF files stat directly; genie bundles are directories and get walked.
// Falls back to persisted metadata, then a 1MB floor so budget checks never
// see an unknown size as free.
func (m *Manager) estimateMemMB(mdl types.Model) int {
	fi, err := os.Stat(mdl.Path)
	if err != nil {
		if rec, ok := m.lruMeta[mdl.ID]; ok && rec.EstMemMB > 0 {
			return rec.EstMemMB
		}
		return 1
	}
	var size int64
	if fi.IsDir() {
		size, err = fsutil.DirSizeBytes(mdl.Path)
		if err != nil {
			size = 0
		}
	} else {
		size = fi.Size()
	}
	mb := int(size / (1024 * 1024))
	if mb <= 0 {
		mb = 1
	}
	return mb
}
