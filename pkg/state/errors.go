package state

import "errors"

var (
	// ErrNotInAlert is returned by ResolveAlert outside the ALERT state.
	ErrNotInAlert = errors.New("monitoring is not in ALERT state")

	// ErrInvalidState is returned for unknown state names.
	ErrInvalidState = errors.New("invalid monitoring state")

	errCorruptRecord = errors.New("corrupt state record")
)
