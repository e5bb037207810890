package directory

import "errors"

// Sentinel kinds for directory lookups.
var (
	ErrGameNotFound = errors.New("game not found")
	ErrUserNotFound = errors.New("user not found")
)
