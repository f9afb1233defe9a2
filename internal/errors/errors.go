package errors

import "errors"

// Filesystem errors. Returned wrapped; match with errors.Is.
var (
	// ErrIO covers files or directories that are unreadable, unwritable,
	// or vanished mid-operation.
	ErrIO = errors.New("i/o error")
)

// Startup errors.
var (
	// ErrConfig is returned once at startup for invalid paths or a
	// non-positive interval. It is never retried.
	ErrConfig = errors.New("invalid configuration")
)
