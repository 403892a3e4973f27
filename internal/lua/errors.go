package lua

import "errors"

var (
	// ErrNilRuntime is returned when a constructor gets a nil Runtime.
	ErrNilRuntime = errors.New("runtime cannot be nil")

	// ErrFunctionNotFound is returned by CallFunction for an undefined global.
	ErrFunctionNotFound = errors.New("function not found")

	// ErrLimitExceeded wraps golua's CPU or memory limit failures.
	ErrLimitExceeded = errors.New("resource limit exceeded")

	// ErrNoTarget is returned by drawing functions called with no surface bound.
	ErrNoTarget = errors.New("no target surface")
)
