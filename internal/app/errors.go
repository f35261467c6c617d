package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrInvalidVote = errors.New("invalid vote")
	ErrUnknownItem = errors.New("unknown item")
	ErrNotStarted  = errors.New("service not started")
)
