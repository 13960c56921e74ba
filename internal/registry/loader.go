package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"chatmodeld/internal/common/fsutil"
	"chatmodeld/pkg/types"
)

// Bundle files that mark a directory as a genie model bundle.
const (
	engineConfigName = "genie_config.json"
	htpConfigName    = "htp_config.json"
)

// Scanner discovers models under a directory. One level deep: *.gguf files
// become llamacpp models, subdirectories carrying a genie_config.json become
// genie models.
type Scanner struct{}

// NewScanner returns a directory scanner.
func NewScanner() *Scanner { return &Scanner{} }

// Scan walks dir and builds a registry from what it finds.
func (s *Scanner) Scan(dir string) ([]types.Model, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.Model
	for _, e := range entries {
		name := e.Name()
		p := filepath.Join(abs, name)
		if e.IsDir() {
			if m, ok := scanBundle(p, name); ok {
				models = append(models, m)
			}
			continue
		}
		if !strings.HasSuffix(strings.ToLower(name), ".gguf") {
			continue
		}
		id := strings.TrimSuffix(name, filepath.Ext(name))
		models = append(models, types.Model{
			ID:      id,
			Name:    id,
			Runtime: types.RuntimeLlamaCpp,
			Path:    p,
			Quant:   sniffQuant(id),
			Family:  sniffFamily(id),
		})
	}
	return models, nil
}

// scanBundle inspects a subdirectory for genie bundle markers. The engine
// config is required; an htp config beside it selects the gpu accelerator.
func scanBundle(dir, name string) (types.Model, bool) {
	engineCfg := filepath.Join(dir, engineConfigName)
	if !fsutil.PathExists(engineCfg) {
		return types.Model{}, false
	}
	acc := types.AcceleratorCPU
	if fsutil.PathExists(filepath.Join(dir, htpConfigName)) {
		acc = types.AcceleratorGPU
	}
	return types.Model{
		ID:           name,
		Name:         name,
		Runtime:      types.RuntimeGenie,
		Path:         dir,
		EngineConfig: engineCfg,
		Accelerator:  acc,
		Family:       sniffFamily(name),
	}, true
}

// sniffQuant extracts a quantization tag like Q4_K_M from a model ID.
func sniffQuant(id string) string {
	for _, sep := range []string{".", "-", "_"} {
		for _, part := range strings.Split(id, sep) {
			up := strings.ToUpper(part)
			if len(up) >= 2 && up[0] == 'Q' && up[1] >= '0' && up[1] <= '9' {
				return up
			}
		}
	}
	return ""
}

var knownFamilies = []string{"llama", "gemma", "phi", "mistral", "qwen", "tinyllama"}

// sniffFamily matches a known family name inside a model ID.
func sniffFamily(id string) string {
	low := strings.ToLower(id)
	for _, f := range knownFamilies {
		if strings.Contains(low, f) {
			return f
		}
	}
	return ""
}

// Merge overlays explicit entries onto discovered ones by ID. Explicit
// fields win; zero-valued explicit fields inherit the discovered values.
// Explicit-only entries are appended in order.
func Merge(discovered []types.Model, explicit []types.Model) []types.Model {
	out := make([]types.Model, len(discovered))
	copy(out, discovered)
	index := make(map[string]int, len(out))
	for i, m := range out {
		index[m.ID] = i
	}
	for _, em := range explicit {
		i, ok := index[em.ID]
		if !ok {
			index[em.ID] = len(out)
			out = append(out, em)
			continue
		}
		out[i] = overlay(out[i], em)
	}
	return out
}

func overlay(base, over types.Model) types.Model {
	m := base
	if over.Name != "" {
		m.Name = over.Name
	}
	if over.Runtime != "" {
		m.Runtime = over.Runtime
	}
	if over.Path != "" {
		m.Path = over.Path
	}
	if over.EngineConfig != "" {
		m.EngineConfig = over.EngineConfig
	}
	if over.Quant != "" {
		m.Quant = over.Quant
	}
	if over.Family != "" {
		m.Family = over.Family
	}
	if over.Accelerator != "" {
		m.Accelerator = over.Accelerator
	}
	if over.ContextSize != 0 {
		m.ContextSize = over.ContextSize
	}
	if over.MaxTokens != 0 {
		m.MaxTokens = over.MaxTokens
	}
	if over.TopK != 0 {
		m.TopK = over.TopK
	}
	if over.TopP != 0 {
		m.TopP = over.TopP
	}
	if over.Temperature != 0 {
		m.Temperature = over.Temperature
	}
	if over.SupportsVision {
		m.SupportsVision = true
	}
	return m
}

// LoadDir scans dir with a default scanner. Kept as the package-level
// convenience used by main and tests.
func LoadDir(dir string) ([]types.Model, error) {
	return NewScanner().Scan(dir)
}
