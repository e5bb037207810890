package scorelog

import "errors"

// Sentinel kinds for score log errors.
var (
	ErrAppend      = errors.New("score log append failed")
	ErrUnavailable = errors.New("score log unavailable")
)
