package config

import (
	"errors"
)

// Errors surfaced while loading and validating service configuration.
var (
	// ErrInvalidConfig marks a loaded configuration that failed validation.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrLoadConfig marks a failure to read or parse a configuration source.
	ErrLoadConfig = errors.New("load config failed")
)
