package repository

import "errors"

// Sentinel kinds for persistence errors.
var (
	ErrNotFound       = errors.New("no saved state")
	ErrUnknownBackend = errors.New("unknown state backend")
	ErrCorruptState   = errors.New("saved state is corrupt")
)
