//go:build !llama

package manager

import "chatmodeld/pkg/types"

// llamaBuilt indicates this binary was compiled without real llama support.
var llamaBuilt = false

// newLlamaRuntime fails fast when the 'llama' build tag is not set so the
// HTTP layer can answer 503 instead of pretending a backend exists.
func newLlamaRuntime(mdl types.Model, opts RuntimeOptions) (ModelRuntime, error) {
	_ = mdl
	_ = opts
	return nil, ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}
