package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"chatmodeld/pkg/types"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr           string        `json:"addr" yaml:"addr" toml:"addr"`
	ModelsDir      string        `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	DBPath         string        `json:"db_path" yaml:"db_path" toml:"db_path"`
	DefaultModel   string        `json:"default_model" yaml:"default_model" toml:"default_model"`
	MemBudgetMB    int           `json:"mem_budget_mb" yaml:"mem_budget_mb" toml:"mem_budget_mb"`
	MemMarginMB    int           `json:"mem_margin_mb" yaml:"mem_margin_mb" toml:"mem_margin_mb"`
	MaxQueueDepth  int           `json:"max_queue_depth" yaml:"max_queue_depth" toml:"max_queue_depth"`
	MaxWaitMS      int           `json:"max_wait_ms" yaml:"max_wait_ms" toml:"max_wait_ms"`
	DrainTimeoutMS int           `json:"drain_timeout_ms" yaml:"drain_timeout_ms" toml:"drain_timeout_ms"`
	LogLevel       string        `json:"log_level" yaml:"log_level" toml:"log_level"`
	Llama          LlamaConfig   `json:"llama" yaml:"llama" toml:"llama"`
	CORS           CORSConfig    `json:"cors" yaml:"cors" toml:"cors"`
	Models         []ModelConfig `json:"models" yaml:"models" toml:"models"`
}

// LlamaConfig tunes the in-process llama.cpp runtime.
type LlamaConfig struct {
	ContextSize int `json:"context_size" yaml:"context_size" toml:"context_size"`
	Threads     int `json:"threads" yaml:"threads" toml:"threads"`
	GPULayers   int `json:"gpu_layers" yaml:"gpu_layers" toml:"gpu_layers"`
}

// CORSConfig enables cross-origin access for browser frontends.
type CORSConfig struct {
	Enabled bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	Origins []string `json:"origins" yaml:"origins" toml:"origins"`
	Methods []string `json:"methods" yaml:"methods" toml:"methods"`
	Headers []string `json:"headers" yaml:"headers" toml:"headers"`
}

// ModelConfig is an explicit model entry. Entries override or augment
// whatever directory discovery finds under ModelsDir.
type ModelConfig struct {
	ID             string  `json:"id" yaml:"id" toml:"id"`
	Name           string  `json:"name" yaml:"name" toml:"name"`
	Runtime        string  `json:"runtime" yaml:"runtime" toml:"runtime"`
	Path           string  `json:"path" yaml:"path" toml:"path"`
	EngineConfig   string  `json:"engine_config" yaml:"engine_config" toml:"engine_config"`
	Quant          string  `json:"quant" yaml:"quant" toml:"quant"`
	Family         string  `json:"family" yaml:"family" toml:"family"`
	Accelerator    string  `json:"accelerator" yaml:"accelerator" toml:"accelerator"`
	ContextSize    int     `json:"context_size" yaml:"context_size" toml:"context_size"`
	MaxTokens      int     `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens"`
	TopK           int     `json:"top_k" yaml:"top_k" toml:"top_k"`
	TopP           float64 `json:"top_p" yaml:"top_p" toml:"top_p"`
	Temperature    float64 `json:"temperature" yaml:"temperature" toml:"temperature"`
	SupportsVision bool    `json:"supports_vision" yaml:"supports_vision" toml:"supports_vision"`
}

// Model converts the entry to the shared domain type. An empty runtime
// defaults to llamacpp so plain gguf entries stay terse.
func (mc ModelConfig) Model() types.Model {
	rt := types.Runtime(mc.Runtime)
	if mc.Runtime == "" {
		rt = types.RuntimeLlamaCpp
	}
	acc := types.Accelerator(mc.Accelerator)
	return types.Model{
		ID:             mc.ID,
		Name:           mc.Name,
		Runtime:        rt,
		Path:           mc.Path,
		EngineConfig:   mc.EngineConfig,
		Quant:          mc.Quant,
		Family:         mc.Family,
		Accelerator:    acc,
		ContextSize:    mc.ContextSize,
		MaxTokens:      mc.MaxTokens,
		TopK:           mc.TopK,
		TopP:           mc.TopP,
		Temperature:    mc.Temperature,
		SupportsVision: mc.SupportsVision,
	}
}

// Validate rejects entries that name an unknown backend or omit required
// fields. Called after Load and before the registry merge.
func (c Config) Validate() error {
	for i, mc := range c.Models {
		if strings.TrimSpace(mc.ID) == "" {
			return fmt.Errorf("models[%d]: missing id", i)
		}
		if mc.Runtime != "" && !types.Runtime(mc.Runtime).Valid() {
			return fmt.Errorf("models[%d] %s: unknown runtime %q", i, mc.ID, mc.Runtime)
		}
		if types.Runtime(mc.Runtime) == types.RuntimeGenie && strings.TrimSpace(mc.Path) == "" {
			return fmt.Errorf("models[%d] %s: genie entries require a bundle path", i, mc.ID)
		}
		switch types.Accelerator(mc.Accelerator) {
		case "", types.AcceleratorCPU, types.AcceleratorGPU:
		default:
			return fmt.Errorf("models[%d] %s: unknown accelerator %q", i, mc.ID, mc.Accelerator)
		}
	}
	return nil
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
