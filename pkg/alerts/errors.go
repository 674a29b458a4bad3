package alerts

import "errors"

var (
	ErrAlertNotFound     = errors.New("alert not found")
	ErrInvalidAlert      = errors.New("invalid alert")
	ErrInvalidTransition = errors.New("invalid alert status transition")
	ErrNoHandler         = errors.New("no handler registered for channel")
	ErrRateLimited       = errors.New("channel rate limit exceeded")
)
