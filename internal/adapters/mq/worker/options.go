package worker

import (
	"time"

	"github.com/IMperiumX/ranker/pkg/logger"
)

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithMaxAttempts bounds the retry budget per deferred update.
func WithMaxAttempts(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.maxAttempts = n
		}
	}
}

// WithBaseBackoff sets the first-retry backoff; it doubles per attempt.
func WithBaseBackoff(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.baseBackoff = d
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}
