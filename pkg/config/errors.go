package config

import "errors"

var (
	errInvalidDuration = errors.New("invalid duration")
	errInvalidConfig   = errors.New("invalid configuration")

	// ErrMissingEnv is returned when a required environment key is unset.
	ErrMissingEnv = errors.New("required environment variable not set")
)
