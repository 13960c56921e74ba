package httpapi

import (
	"context"
	"io"

	"chatmodeld/internal/manager"
	"chatmodeld/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ListModels() []types.Model
	Status() types.StatusResponse
	Ready() bool
	Preflight() manager.SanityReport
	Infer(ctx context.Context, req types.GenerateRequest, w io.Writer, flush func()) error
	RunInference(ctx context.Context, req types.GenerateRequest, onResult manager.ResultListener, onCleanup manager.CleanupListener) (types.GenerateResult, error)
	ResetSession(ctx context.Context, modelID string) error
	Unload(modelID string) error
	Switch(ctx context.Context, modelID string) (string, error)
	History(ctx context.Context, limit int) ([]types.GenerationRecord, error)
}

var _ Service = (*manager.Manager)(nil)
