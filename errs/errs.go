// Package errs defines the error kinds shared by the wavelet packages.
// Callers match them with errors.Is; the returned errors wrap them with the
// offending values.
package errs

import "errors"

var (
	// ErrIndexOutOfRange is returned for a position or count outside the valid domain.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrInvalidQuery is returned for malformed query ranges.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrNotFound is returned when no symbol satisfies a predecessor/successor query.
	ErrNotFound = errors.New("symbol not found")
	// ErrInvalidState is returned when a node operation is applied to the wrong kind of node.
	ErrInvalidState = errors.New("invalid state")
	// ErrConstruction is returned for input a structure cannot be built from.
	ErrConstruction = errors.New("construction error")
	// ErrUnsupported is returned when the structure lacks the capability for an operation.
	ErrUnsupported = errors.New("operation not supported")
	// ErrCorrupt is returned when a serialized image fails validation.
	ErrCorrupt = errors.New("corrupt image")
)
