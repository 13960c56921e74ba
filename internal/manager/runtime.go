package manager

import (
	"context"
	"fmt"

	"chatmodeld/pkg/types"
)

// ModelRuntime is the closed seam between the manager and the two backend
// variants. One runtime owns one loaded model: a resident engine plus the
// mutable conversation session layered on it.
type ModelRuntime interface {
	// Kind identifies the backend variant.
	Kind() types.Runtime
	// Generate streams tokens for the given prompt. The onToken callback is
	// invoked for each token; a non-nil return stops the stream.
	// Implementations must return promptly when the context is canceled.
	Generate(ctx context.Context, prompt string, params GenParams, onToken func(string) error) (FinalResult, error)
	// Reset discards accumulated conversation state. The prior session is
	// closed before its replacement is installed.
	Reset() error
	// Close releases the engine. Safe to call more than once.
	Close() error
}

// RuntimeOptions carries backend construction tunables.
type RuntimeOptions struct {
	ContextSize int
	Threads     int
	GPULayers   int
}

// GenParams captures generation parameters for a single request. Zero values
// defer to the model's configured defaults.
type GenParams struct {
	Temperature float64
	TopP        float64
	TopK        int
	MaxTokens   int
	Stop        []string
	Seed        int64
	// Image holds a decoded attachment for vision-capable models. Nil for
	// text-only requests.
	Image []byte
}

// FinalResult summarizes the generation after streaming.
type FinalResult struct {
	Content      string
	Usage        Usage
	FinishReason string
}

// Usage contains token accounting.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// newModelRuntime dispatches on the model's runtime tag. The set of variants
// is closed; anything else is a config error caught at load time.
func newModelRuntime(mdl types.Model, opts RuntimeOptions) (ModelRuntime, error) {
	switch mdl.Runtime {
	case types.RuntimeLlamaCpp:
		return newLlamaRuntime(mdl, opts)
	case types.RuntimeGenie:
		return newGenieRuntime(mdl)
	default:
		return nil, fmt.Errorf("unknown runtime %q for model %s", mdl.Runtime, mdl.ID)
	}
}

// defaultGenParams derives request defaults from the model config.
func defaultGenParams(mdl types.Model) GenParams {
	p := GenParams{
		Temperature: mdl.Temperature,
		TopP:        mdl.TopP,
		TopK:        mdl.TopK,
		MaxTokens:   mdl.MaxTokens,
	}
	if p.Temperature <= 0 {
		p.Temperature = types.DefaultTemperature
	}
	if p.TopP <= 0 {
		p.TopP = types.DefaultTopP
	}
	if p.TopK <= 0 {
		p.TopK = types.DefaultTopK
	}
	if p.MaxTokens <= 0 {
		p.MaxTokens = types.DefaultMaxTokens
	}
	return p
}

// mergeGenParams overlays non-zero request fields onto the session defaults.
func mergeGenParams(base GenParams, req types.GenerateRequest) GenParams {
	out := base
	if req.Temperature > 0 {
		out.Temperature = req.Temperature
	}
	if req.TopP > 0 {
		out.TopP = req.TopP
	}
	if req.TopK > 0 {
		out.TopK = req.TopK
	}
	if req.MaxTokens > 0 {
		out.MaxTokens = req.MaxTokens
	}
	if len(req.Stop) > 0 {
		out.Stop = append([]string(nil), req.Stop...)
	}
	if req.Seed != 0 {
		out.Seed = req.Seed
	}
	return out
}
