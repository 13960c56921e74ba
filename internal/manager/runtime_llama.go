//go:build llama

package manager

import (
	"context"
	"errors"
	"strings"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"

	"chatmodeld/pkg/types"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = true

// llamaRuntime owns one loaded GGUF model. The engine stays resident for the
// lifetime of the instance; conversation state lives in a replaceable session.
type llamaRuntime struct {
	mu      sync.Mutex
	mdl     types.Model
	model   *llama.LLama
	ctxSize int
	threads int
	sess    *llamaSession
}

func newLlamaRuntime(mdl types.Model, opts RuntimeOptions) (ModelRuntime, error) {
	if strings.TrimSpace(mdl.Path) == "" {
		return nil, errors.New("model path is empty")
	}
	ctxSize := zn(opts.ContextSize, zn(mdl.ContextSize, types.DefaultContextSize))
	mo := []llama.ModelOption{
		llama.SetContext(ctxSize),
	}
	if mdl.Accelerator == types.AcceleratorGPU && opts.GPULayers > 0 {
		mo = append(mo, llama.SetGPULayers(opts.GPULayers))
	}
	m, err := llama.New(mdl.Path, mo...)
	if err != nil {
		return nil, err
	}
	return &llamaRuntime{
		mdl:     mdl,
		model:   m,
		ctxSize: ctxSize,
		threads: opts.Threads,
		sess:    newLlamaSession(ctxSize),
	}, nil
}

func (r *llamaRuntime) Kind() types.Runtime { return types.RuntimeLlamaCpp }

func (r *llamaRuntime) Generate(ctx context.Context, prompt string, params GenParams, onToken func(string) error) (FinalResult, error) {
	// Serialize against Reset/Close; admission already guarantees a single
	// in-flight generation per instance.
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.model == nil {
		return FinalResult{}, ErrNotInitialized(r.mdl.ID)
	}
	if len(params.Image) > 0 {
		return FinalResult{}, errors.New("image input not supported by this llama build")
	}
	sess := r.sess
	if sess == nil {
		sess = newLlamaSession(r.ctxSize)
		r.sess = sess
	}

	// Bridge token streaming to onToken and respect cancellation.
	var cbErr error
	r.model.SetTokenCallback(func(tok string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		if err := onToken(tok); err != nil {
			cbErr = err
			return false
		}
		return true
	})
	text, err := r.model.Predict(sess.compose(prompt), predictOptions(params, r.threads)...)
	if err != nil {
		if ctx.Err() != nil {
			return FinalResult{}, ctx.Err()
		}
		return FinalResult{}, err
	}
	if cbErr != nil {
		return FinalResult{}, cbErr
	}
	if ctx.Err() != nil {
		return FinalResult{}, ctx.Err()
	}
	sess.remember(prompt, text)
	return FinalResult{Content: text, FinishReason: "stop"}, nil
}

// Reset swaps in a fresh session. The prior session is closed first so its
// state is gone before the replacement becomes visible.
func (r *llamaRuntime) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.model == nil {
		return ErrNotInitialized(r.mdl.ID)
	}
	if old := r.sess; old != nil {
		r.sess = nil
		old.close()
	}
	r.sess = newLlamaSession(r.ctxSize)
	return nil
}

func (r *llamaRuntime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sess != nil {
		r.sess.close()
		r.sess = nil
	}
	if r.model != nil {
		r.model.Free()
		r.model = nil
	}
	return nil
}

// llamaSession layers conversation state over the stateless predict call:
// prior turns are replayed in front of each prompt, trimmed from the front
// so the replay stays within the context window.
type llamaSession struct {
	transcript string
	maxChars   int
}

func newLlamaSession(ctxSize int) *llamaSession {
	return &llamaSession{maxChars: ctxSize * 4}
}

func (s *llamaSession) compose(prompt string) string {
	if s.transcript == "" {
		return prompt
	}
	return s.transcript + "\n" + prompt
}

func (s *llamaSession) remember(prompt, reply string) {
	s.transcript += prompt + "\n" + reply + "\n"
	if len(s.transcript) > s.maxChars {
		cut := len(s.transcript) - s.maxChars
		if i := strings.IndexByte(s.transcript[cut:], '\n'); i >= 0 {
			cut += i + 1
		}
		s.transcript = s.transcript[cut:]
	}
}

func (s *llamaSession) close() { s.transcript = "" }

// helpers
func zn(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func zf(v, def float32) float32 {
	if v > 0 {
		return v
	}
	return def
}

// predictOptions converts generation params into go-llama.cpp options.
func predictOptions(params GenParams, threads int) []llama.PredictOption {
	po := []llama.PredictOption{
		llama.SetTokens(max(1, params.MaxTokens)),
		llama.SetThreads(max(1, threads)),
		llama.SetTopP(zf(float32(params.TopP), llama.DefaultOptions.TopP)),
		llama.SetTopK(zn(params.TopK, llama.DefaultOptions.TopK)),
		llama.SetTemperature(zf(float32(params.Temperature), llama.DefaultOptions.Temperature)),
	}
	if params.Seed != 0 {
		po = append(po, llama.SetSeed(int(params.Seed)))
	}
	if len(params.Stop) > 0 {
		po = append(po, llama.SetStopWords(params.Stop...))
	}
	return po
}
