package engine

import "errors"

var (
	// ErrInvalidConfig is returned when a required dependency is missing.
	ErrInvalidConfig = errors.New("engine.errors.invalid_config")
)
