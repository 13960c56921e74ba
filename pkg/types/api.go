package types

// GenerateRequest represents a generation request payload.
type GenerateRequest struct {
	// Optional model identifier. If empty, the server default is used.
	// example: gemma2-2b-q4
	Model string `json:"model,omitempty" example:"gemma2-2b-q4"`
	// Required prompt text to generate a completion for.
	// example: Write a haiku about the ocean.
	Prompt string `json:"prompt" example:"Write a haiku about the ocean."`
	// If true, stream results as NDJSON tokens. When false, the server may still stream internally but buffer.
	// example: true
	Stream bool `json:"stream,omitempty" example:"true"`
	// Maximum number of new tokens to generate. 0 uses the model default.
	// example: 128
	MaxTokens int `json:"max_tokens,omitempty" example:"128"`
	// Sampling temperature (higher = more random). 0 uses the model default.
	// example: 0.7
	Temperature float64 `json:"temperature,omitempty" example:"0.7"`
	// Nucleus sampling probability. 0 uses the model default.
	// example: 0.9
	TopP float64 `json:"top_p,omitempty" example:"0.9"`
	// Top-K sampling: limit candidates to top K tokens. 0 uses the model default.
	// example: 40
	TopK int `json:"top_k,omitempty" example:"40"`
	// Optional stop sequences. Generation stops when any sequence is matched.
	// example: ["\n\n","END"]
	Stop []string `json:"stop,omitempty" example:"[\"\\n\\n\",\"END\"]"`
	// Random seed for reproducibility; 0 or omitted lets the server choose.
	// example: 42
	Seed int64 `json:"seed,omitempty" example:"42"`
	// Optional base64-encoded image attachment (JPEG, PNG or WebP).
	// Rejected unless the model declares vision support.
	ImageB64 string `json:"image_b64,omitempty"`
}

// Usage reports token accounting for one generation.
type Usage struct {
	// Tokens consumed by the prompt.
	// example: 12
	PromptTokens int `json:"prompt_tokens" example:"12"`
	// Tokens produced by the model.
	// example: 56
	CompletionTokens int `json:"completion_tokens" example:"56"`
	// Prompt plus completion tokens.
	// example: 68
	TotalTokens int `json:"total_tokens" example:"68"`
	// Wall-clock generation time in milliseconds.
	// example: 840
	DurationMS int64 `json:"duration_ms" example:"840"`
}

// GenerateResult is the terminal outcome of one generation.
type GenerateResult struct {
	// Full accumulated completion text.
	Content string `json:"content"`
	// Why generation ended: stop, length, cancelled or error.
	// example: stop
	FinishReason string `json:"finish_reason" example:"stop"`
	// Token accounting.
	Usage Usage `json:"usage"`
}

// ResetRequest asks the server to replace a model's generation session.
type ResetRequest struct {
	// Model identifier. If empty, the server default is used.
	// example: gemma2-2b-q4
	Model string `json:"model,omitempty" example:"gemma2-2b-q4"`
}

// UnloadRequest asks the server to unload a model instance.
type UnloadRequest struct {
	// Model identifier to unload.
	// example: gemma2-2b-q4
	Model string `json:"model" example:"gemma2-2b-q4"`
}

// SwitchRequest asks the server to warm a model in the background.
type SwitchRequest struct {
	// Model identifier to load.
	// example: gemma2-2b-q4
	Model string `json:"model" example:"gemma2-2b-q4"`
}

// AckResponse confirms a completed lifecycle action.
type AckResponse struct {
	// Model the action applied to.
	// example: gemma2-2b-q4
	Model string `json:"model" example:"gemma2-2b-q4"`
	// Action that completed: reset or unloaded.
	// example: reset
	Status string `json:"status" example:"reset"`
}

// OpResponse acknowledges an accepted asynchronous operation.
type OpResponse struct {
	// Identifier of the background operation.
	// example: 6f1c0f3e-6a7e-4be8-9f0b-6f4cf3a1a111
	OpID string `json:"op_id" example:"6f1c0f3e-6a7e-4be8-9f0b-6f4cf3a1a111"`
}

// GenerationRecord is one row of the generation history.
type GenerationRecord struct {
	// Unique identifier of the generation.
	ID string `json:"id"`
	// Model that served the generation.
	ModelID string `json:"model_id"`
	// Backend that executed it.
	Runtime Runtime `json:"runtime"`
	// Prompt length in characters.
	PromptChars int `json:"prompt_chars"`
	// Output length in characters.
	OutputChars int `json:"output_chars"`
	// Wall-clock duration in milliseconds.
	DurationMS int64 `json:"duration_ms"`
	// Why generation ended.
	FinishReason string `json:"finish_reason"`
	// Creation time in unix seconds.
	CreatedAtUnix int64 `json:"created_at_unix"`
}

// HistoryResponse wraps recent generation records for GET /history.
type HistoryResponse struct {
	Generations []GenerationRecord `json:"generations"`
}

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	// List of available models.
	Models []Model `json:"models"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// InstanceStatus summarizes a loaded instance for /status.
type InstanceStatus struct {
	// ID of the model this instance serves.
	// example: gemma2-2b-q4
	ModelID string `json:"model_id" example:"gemma2-2b-q4"`
	// Backend executing this instance.
	// example: llamacpp
	Runtime Runtime `json:"runtime" example:"llamacpp"`
	// Current lifecycle state of the instance (loading, ready, draining).
	// example: ready
	State string `json:"state" example:"ready"`
	// Last time this instance served a request (unix seconds).
	// example: 1700000000
	LastUsed int64 `json:"last_used_unix" example:"1700000000"`
	// Estimated resident memory in MB.
	// example: 1200
	EstMemMB int `json:"est_mem_mb" example:"1200"`
	// Current queue length for incoming requests.
	// example: 0
	QueueLen int `json:"queue_len" example:"0"`
	// Number of in-flight requests currently being processed.
	// example: 1
	Inflight int `json:"inflight" example:"1"`
	// Maximum queued requests allowed before backpressure triggers.
	// example: 32
	MaxQueueDepth int `json:"max_queue_depth" example:"32"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Loaded/managed instances.
	Instances []InstanceStatus `json:"instances"`
	// Memory budget in MB across all instances.
	// example: 8192
	BudgetMB int `json:"budget_mb" example:"8192"`
	// Estimated used memory in MB.
	// example: 2048
	UsedMB int `json:"used_est_mb" example:"2048"`
	// Reserved memory margin in MB.
	// example: 512
	MarginMB int `json:"margin_mb" example:"512"`
	// Total physical memory of the host in MB.
	// example: 16384
	HostTotalMB int `json:"host_total_mb,omitempty" example:"16384"`
	// Available physical memory of the host in MB.
	// example: 9216
	HostAvailMB int `json:"host_avail_mb,omitempty" example:"9216"`
	// Optional top-level error message.
	Error string `json:"error,omitempty"`
	// Last error observed by the manager (if any).
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Total number of evictions performed to stay inside the budget.
	// example: 5
	EvictionsTotal uint64 `json:"evictions_total" example:"5"`
	// Total number of model loads.
	// example: 12
	LoadsTotal uint64 `json:"loads_total" example:"12"`
	// Overall manager state (e.g., loading, ready, error).
	// example: ready
	State string `json:"state" example:"ready"`
	// Number of instances currently warming up (loading).
	// example: 1
	WarmupsInProgress int `json:"warmups_in_progress" example:"1"`
	// Number of instances currently draining (unload in progress).
	// example: 1
	DrainingCount int `json:"draining_count" example:"1"`
}
