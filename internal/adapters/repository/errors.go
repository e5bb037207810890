package repository

import "errors"

// Sentinel kinds for ordered-index errors. ErrNotFound is recoverable and
// must surface as an empty result; ErrUnavailable is retryable and must
// never be treated as "member unranked".
var (
	ErrNotFound    = errors.New("member not found")
	ErrUnavailable = errors.New("index store unavailable")
)
