// Package manager provides lifecycle, admission, and inference coordination
// for model instances. It is structured into small files by concern:
//
//   - manager.go: core Manager type, constructor, simple getters.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: internal state types (State, ModelInfo, Instance, Snapshot).
//   - errors.go: error types and helpers (IsTooBusy, IsModelNotFound, ...).
//   - helpers.go: small utilities (model lookup, memory estimation).
//   - runtime.go: the ModelRuntime seam and the closed backend dispatch.
//   - admission.go: per-instance queueing and generation admission.
//   - ensure.go: EnsureInstance lifecycle, single-flight loading.
//   - evict.go: LRU eviction to fit within the memory budget.
//   - infer.go: RunInference/Infer entry points and streaming behavior.
//   - reset.go: session reset without reloading the engine.
//   - unload.go: graceful drain, instance teardown, manager shutdown.
//   - listeners.go: per-model cleanup listeners fired on teardown.
//   - attachments.go: image payload validation for vision models.
//   - status.go: Status/Snapshot reporting helpers.
//   - ops.go: Switch and History operations.
//
// Build tags and backends:
//
//   - llamacpp (in-process): go-llama.cpp behind `-tags=llama`.
//     Files: runtime_llama.go, llama_cgo.go (linker rpath hints).
//     Without the tag, runtime_llama_stub.go fails fast so the HTTP layer
//     reports 503 instead of pretending a backend exists.
//
//   - genie (native handle engine): internal/genie, compiled against the
//     vendor shim behind `-tags=genie` (see that package for the stub).
//
// External packages should treat this package as the orchestration layer and
// use public methods only (e.g., NewWithConfig, Ready, ListModels, Status,
// RunInference, Infer, ResetSession, Unload, Close). Internal types are
// subject to change.
package manager
