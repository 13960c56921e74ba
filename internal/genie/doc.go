// Package genie wraps the vendor generative inference engine behind a
// handle-based lifecycle: load a model bundle, stream responses for a prompt
// through a token callback, free the handle. The native ABI is exactly three
// entry points reached through cgo when the "genie" build tag is set; default
// builds compile against a stub that fails fast with ErrNotBuilt.
//
// A handle is valid while nonzero. Close zeroes it and is safe to call any
// number of times; every other method guards the zero handle and returns
// ErrEngineClosed instead of crossing the ABI.
package genie
