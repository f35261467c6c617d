package config

import "errors"

// Sentinel error kinds for this package. Validation failures wrap
// ErrInvalidConfig and, where one applies, a narrower kind.
var (
	ErrInvalidConfig   = errors.New("invalid config")
	ErrLoadConfig      = errors.New("load config failed")
	ErrUnknownBackend  = errors.New("unknown state backend")
	ErrInvalidSchedule = errors.New("invalid checkpoint schedule")
)
