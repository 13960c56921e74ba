package manager

import (
	"os"
	"path/filepath"
)

// ModelCheck describes one registry entry's on-disk state.
type ModelCheck struct {
	ModelID string `json:"model_id"`
	Runtime string `json:"runtime"`
	Path    string `json:"path"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

// SanityReport describes startup checks for configured backends and models.
type SanityReport struct {
	LlamaBuilt bool         `json:"llama_built"`
	Models     []ModelCheck `json:"models"`
	OK         bool         `json:"ok"`
}

// Preflight validates that every registry entry points at a usable artifact:
// GGUF models must be regular files, genie bundles must be directories with
// an engine config inside. It does not mutate state and is safe to call at
// any time.
func (m *Manager) Preflight() SanityReport {
	r := SanityReport{LlamaBuilt: llamaBuilt, OK: true}
	for _, mdl := range m.ListModels() {
		chk := ModelCheck{ModelID: mdl.ID, Runtime: string(mdl.Runtime), Path: mdl.Path}
		fi, err := os.Stat(mdl.Path)
		switch {
		case err != nil:
			chk.Error = err.Error()
		case mdl.Runtime == "genie":
			if !fi.IsDir() {
				chk.Error = "genie bundle path is not a directory"
				break
			}
			cfg := mdl.EngineConfig
			if cfg == "" {
				cfg = filepath.Join(mdl.Path, "genie_config.json")
			}
			if _, err := os.Stat(cfg); err != nil {
				chk.Error = "engine config missing: " + err.Error()
			}
		default:
			if fi.IsDir() {
				chk.Error = "model path is a directory"
			}
		}
		chk.OK = chk.Error == ""
		if !chk.OK {
			r.OK = false
		}
		r.Models = append(r.Models, chk)
	}
	return r
}
