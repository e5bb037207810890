package service

import "errors"

// Errors returned by the service facade.
var (
	// ErrGameInactive is returned when submitting to a game that is
	// configured but not accepting submissions.
	ErrGameInactive = errors.New("game is not active")

	// ErrNotStarted is returned when an operation is invoked before
	// Start or after Stop.
	ErrNotStarted = errors.New("service not started")
)
