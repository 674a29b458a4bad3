package rules

import "errors"

var (
	// ErrRuleNotFound is returned when no rule matches the id or name.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrDuplicateRule is returned when a rule name is already taken.
	ErrDuplicateRule = errors.New("rule name already exists")

	// ErrInvalidRule is returned for rules that fail validation.
	ErrInvalidRule = errors.New("invalid rule")
)
