package store

import "errors"

var (
	// ErrObjectNotFound reports a missing object or reference.
	ErrObjectNotFound = errors.New("object not found")

	// ErrInvalidStore reports an uninitialized store, a missing or
	// malformed config, or an unsupported algorithm.
	ErrInvalidStore = errors.New("invalid store")

	// ErrInvalidRef reports a reference name containing path
	// separators, parent references, NUL bytes, or nothing at all.
	ErrInvalidRef = errors.New("invalid ref name")

	// ErrPathExists reports a materialization destination that is
	// already present.
	ErrPathExists = errors.New("destination path exists")
)
