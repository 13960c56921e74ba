package types

// Runtime identifies which backend executes a model. The set is closed:
// config validation rejects anything not listed here.
type Runtime string

const (
	// RuntimeLlamaCpp runs the model in-process through the llama.cpp
	// binding: an engine handle plus a replaceable sampling session.
	RuntimeLlamaCpp Runtime = "llamacpp"
	// RuntimeGenie runs the model through the vendor generative engine
	// behind a handle-based native shim.
	RuntimeGenie Runtime = "genie"
)

// Valid reports whether r names a known backend.
func (r Runtime) Valid() bool {
	return r == RuntimeLlamaCpp || r == RuntimeGenie
}

// Accelerator selects the execution device for the llamacpp runtime.
type Accelerator string

const (
	AcceleratorCPU Accelerator = "cpu"
	AcceleratorGPU Accelerator = "gpu"
)

// Sampling and sizing defaults applied when a model entry leaves a field
// at its zero value.
const (
	DefaultContextSize = 2048
	DefaultMaxTokens   = 1024
	DefaultTopK        = 40
	DefaultTopP        = 0.95
	DefaultTemperature = 0.8
)

// Model represents a discoverable or loadable LLM model on disk.
type Model struct {
	// Stable identifier for the model.
	// example: gemma2-2b-q4
	ID string `json:"id" example:"gemma2-2b-q4"`
	// Human-friendly name.
	// example: Gemma 2 2B (Q4)
	Name string `json:"name" example:"Gemma 2 2B (Q4)"`
	// Backend that executes this model.
	// example: llamacpp
	Runtime Runtime `json:"runtime" example:"llamacpp"`
	// Absolute path to the model weights: a .gguf file for llamacpp,
	// a bundle directory for genie.
	// example: /home/user/models/gemma-2-2b.Q4_K_M.gguf
	Path string `json:"path" example:"/home/user/models/gemma-2-2b.Q4_K_M.gguf"`
	// Path to the engine JSON config (genie runtime only).
	// example: /opt/models/llama3-htp/genie_config.json
	EngineConfig string `json:"engine_config,omitempty" example:"/opt/models/llama3-htp/genie_config.json"`
	// Quantization level or variant string.
	// example: Q4_K_M
	Quant string `json:"quant,omitempty" example:"Q4_K_M"`
	// Optional family (e.g., llama, gemma, phi).
	// example: gemma
	Family string `json:"family,omitempty" example:"gemma"`
	// Execution device for the llamacpp runtime. Empty means cpu.
	// example: gpu
	Accelerator Accelerator `json:"accelerator,omitempty" example:"gpu"`
	// Context window size in tokens. 0 uses the default.
	// example: 2048
	ContextSize int `json:"context_size,omitempty" example:"2048"`
	// Default cap on generated tokens. 0 uses the default.
	// example: 1024
	MaxTokens int `json:"max_tokens,omitempty" example:"1024"`
	// Default top-K sampling cutoff. 0 uses the default.
	// example: 40
	TopK int `json:"top_k,omitempty" example:"40"`
	// Default nucleus sampling probability. 0 uses the default.
	// example: 0.95
	TopP float64 `json:"top_p,omitempty" example:"0.95"`
	// Default sampling temperature. 0 uses the default.
	// example: 0.8
	Temperature float64 `json:"temperature,omitempty" example:"0.8"`
	// Whether the model accepts image attachments alongside the prompt.
	// example: false
	SupportsVision bool `json:"supports_vision,omitempty" example:"false"`
}
