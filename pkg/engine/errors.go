package engine

import "errors"

var (
	errInvalidConfig = errors.New("invalid engine config")

	// ErrAlreadyStarted is returned by Start on a running engine.
	ErrAlreadyStarted = errors.New("engine already started")
)
