package manager

import "errors"

// tooBusyError signals queue timeout/overflow for 429 mapping.
type tooBusyError struct{ modelID string }

func (e tooBusyError) Error() string { return "too busy: " + e.modelID }

// ErrTooBusy returns a backpressure error for the given model.
func ErrTooBusy(id string) error { return tooBusyError{modelID: id} }

// IsTooBusy reports whether err indicates backpressure (return 429).
func IsTooBusy(err error) bool {
	var t tooBusyError
	return errors.As(err, &t)
}

// ErrModelNotFound returns an error when a requested model id is not present in the registry.
type modelNotFoundError struct{ id string }

func (e modelNotFoundError) Error() string { return "model not found: " + e.id }

func ErrModelNotFound(id string) error { return modelNotFoundError{id: id} }

// IsModelNotFound reports whether the error indicates a missing model id.
func IsModelNotFound(err error) bool {
	var t modelNotFoundError
	return errors.As(err, &t)
}

// dependencyUnavailableError signals a missing backend (e.g. a stub build)
// so the HTTP layer can return 503 Service Unavailable instead of 500.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing/failed backend dependency.
func IsDependencyUnavailable(err error) bool {
	var t dependencyUnavailableError
	return errors.As(err, &t)
}

// budgetExceededError signals that a model cannot fit the memory budget even
// after evicting every idle instance.
type budgetExceededError struct{ msg string }

func (e budgetExceededError) Error() string { return "budget exceeded: " + e.msg }

// ErrBudgetExceeded constructs a budgetExceededError.
func ErrBudgetExceeded(msg string) error { return budgetExceededError{msg: msg} }

// IsBudgetExceeded reports whether err indicates the memory budget cannot fit.
func IsBudgetExceeded(err error) bool {
	var t budgetExceededError
	return errors.As(err, &t)
}

// initFailedError carries the human-readable cause of a failed instance
// construction. The message is what callers relay to users.
type initFailedError struct {
	modelID string
	cause   error
}

func (e initFailedError) Error() string {
	return "failed to initialize model " + e.modelID + ": " + e.cause.Error()
}

func (e initFailedError) Unwrap() error { return e.cause }

// ErrInitFailed wraps a construction failure for the given model.
func ErrInitFailed(modelID string, cause error) error {
	return initFailedError{modelID: modelID, cause: cause}
}

// IsInitFailed reports whether err came from instance construction.
func IsInitFailed(err error) bool {
	var t initFailedError
	return errors.As(err, &t)
}

// notInitializedError signals a generation attempt against an instance whose
// backend is gone (released or never finished loading).
type notInitializedError struct{ id string }

func (e notInitializedError) Error() string {
	return "model instance not initialized: " + e.id
}

// ErrNotInitialized constructs a notInitializedError.
func ErrNotInitialized(id string) error { return notInitializedError{id: id} }

// IsNotInitialized reports whether err indicates a released or unloaded backend.
func IsNotInitialized(err error) bool {
	var t notInitializedError
	return errors.As(err, &t)
}

// invalidRequestError flags caller mistakes for 400 mapping.
type invalidRequestError struct{ msg string }

func (e invalidRequestError) Error() string { return e.msg }

// ErrInvalidRequest constructs an invalidRequestError.
func ErrInvalidRequest(msg string) error { return invalidRequestError{msg: msg} }

// IsInvalidRequest reports whether err indicates a malformed request.
func IsInvalidRequest(err error) bool {
	var t invalidRequestError
	return errors.As(err, &t)
}
