package scheduler

import "errors"

// Lifecycle errors.
var (
	// ErrAlreadyStarted is returned by Initialize on an active scheduler.
	// A scheduler never runs more than one timer.
	ErrAlreadyStarted = errors.New("scheduler already started")

	// ErrStopped is returned by Initialize after Shutdown. Stopped is terminal.
	ErrStopped = errors.New("scheduler stopped")

	// ErrInvalidOptions is returned by New when a required dependency is missing.
	ErrInvalidOptions = errors.New("invalid scheduler options")
)
