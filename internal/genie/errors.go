package genie

import "errors"

var (
	// ErrNotBuilt reports that the binary was built without the genie tag.
	ErrNotBuilt = errors.New("genie: built without native engine support")
	// ErrLoadFailed reports that the native engine returned a zero handle.
	ErrLoadFailed = errors.New("genie: engine returned an invalid handle")
	// ErrEngineClosed reports a call against a released engine.
	ErrEngineClosed = errors.New("genie: engine released")
	// ErrEmptyPrompt rejects generation with nothing to respond to.
	ErrEmptyPrompt = errors.New("genie: empty prompt")
)
