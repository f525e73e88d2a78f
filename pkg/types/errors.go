package types

import "errors"

// Domain errors shared across components
var (
	// ErrIndexNotReady is returned when a search or context lookup is
	// attempted before any successful index build.
	ErrIndexNotReady = errors.New("index not built")

	// ErrFunctionNotFound is returned when no chunk carries the requested
	// function's syntax or description.
	ErrFunctionNotFound = errors.New("function not found")
)
