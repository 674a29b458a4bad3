package kv

import "errors"

var (
	// ErrNotFound is returned when a key does not exist or has expired.
	ErrNotFound = errors.New("key not found")

	// ErrWrongType is returned when a key holds a value of another kind.
	ErrWrongType = errors.New("operation against a key holding the wrong kind of value")

	// ErrNotInteger is returned by Incr when the stored value is not an integer.
	ErrNotInteger = errors.New("value is not an integer")

	// ErrClosed is returned after the store has been closed.
	ErrClosed = errors.New("store closed")

	// ErrUnavailable is returned when the backing server cannot be reached.
	ErrUnavailable = errors.New("store backend unavailable")
)
