package manager

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"

	"chatmodeld/internal/genie"
	"chatmodeld/pkg/types"
)

// genieRuntime adapts a native genie engine to the ModelRuntime seam. The
// native side keeps dialog state per handle; sampling params are baked into
// the bundle's engine config rather than passed per call.
type genieRuntime struct {
	mu     sync.Mutex
	mdl    types.Model
	engine *genie.Engine
}

func newGenieRuntime(mdl types.Model) (ModelRuntime, error) {
	if strings.TrimSpace(mdl.Path) == "" {
		return nil, errors.New("model bundle path is empty")
	}
	eng, err := genie.Load(mdl.Path, engineConfigPath(mdl))
	if err != nil {
		if errors.Is(err, genie.ErrNotBuilt) {
			return nil, ErrDependencyUnavailable("genie support not built (missing 'genie' build tag)")
		}
		return nil, err
	}
	return &genieRuntime{mdl: mdl, engine: eng}, nil
}

func engineConfigPath(mdl types.Model) string {
	if mdl.EngineConfig != "" {
		return mdl.EngineConfig
	}
	return filepath.Join(mdl.Path, "genie_config.json")
}

func (r *genieRuntime) Kind() types.Runtime { return types.RuntimeGenie }

func (r *genieRuntime) Generate(ctx context.Context, prompt string, params GenParams, onToken func(string) error) (FinalResult, error) {
	if len(params.Image) > 0 {
		return FinalResult{}, ErrInvalidRequest("model " + r.mdl.ID + " does not accept image input")
	}
	r.mu.Lock()
	eng := r.engine
	r.mu.Unlock()
	if eng == nil {
		return FinalResult{}, ErrNotInitialized(r.mdl.ID)
	}
	var out strings.Builder
	err := eng.Generate(ctx, prompt, func(tok string) error {
		out.WriteString(tok)
		return onToken(tok)
	})
	if err != nil {
		if errors.Is(err, genie.ErrEngineClosed) {
			return FinalResult{}, ErrNotInitialized(r.mdl.ID)
		}
		return FinalResult{}, err
	}
	return FinalResult{Content: out.String(), FinishReason: "stop"}, nil
}

// Reset reloads the engine from its bundle. The native runtime has no
// session-reset entry point, so the handle is released and reconstructed;
// the old handle is gone before the replacement exists.
func (r *genieRuntime) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.engine == nil {
		return ErrNotInitialized(r.mdl.ID)
	}
	if err := r.engine.Close(); err != nil {
		return err
	}
	r.engine = nil
	eng, err := genie.Load(r.mdl.Path, engineConfigPath(r.mdl))
	if err != nil {
		return err
	}
	r.engine = eng
	return nil
}

func (r *genieRuntime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.engine == nil {
		return nil
	}
	err := r.engine.Close()
	r.engine = nil
	return err
}
