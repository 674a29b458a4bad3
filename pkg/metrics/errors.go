package metrics

import "errors"

var (
	// ErrNoValue is returned when a metric has no live sample.
	ErrNoValue = errors.New("no current value for metric")

	// ErrNoBaseline is returned when a metric has no stored baseline.
	ErrNoBaseline = errors.New("no baseline for metric")

	// ErrInvalidUpdate is returned for bus payloads that cannot be decoded.
	ErrInvalidUpdate = errors.New("invalid metric update")

	// ErrInvalidMetric is returned for empty names or non-finite values.
	ErrInvalidMetric = errors.New("invalid metric")

	// ErrAlreadyRunning is returned by Subscriber.Start when already started.
	ErrAlreadyRunning = errors.New("subscriber already running")

	errSourcePanic = errors.New("source panicked")
)
