package service

import (
	"github.com/IMperiumX/ranker/internal/adapters/directory"
	"github.com/IMperiumX/ranker/internal/adapters/repository"
	"github.com/IMperiumX/ranker/internal/adapters/scorelog"
	"github.com/IMperiumX/ranker/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithIndexStore sets the ordered-index backend. Defaults to the
// in-process treap store.
func WithIndexStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.index = store
		}
	}
}

// WithScoreLog sets the append-only score log. Defaults to the
// in-memory log.
func WithScoreLog(l scorelog.Log) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithGameDirectory sets the game directory.
func WithGameDirectory(g directory.Games) Option {
	return func(s *Service) {
		if g != nil {
			s.games = g
		}
	}
}

// WithUserDirectory sets the user directory.
func WithUserDirectory(u directory.Users) Option {
	return func(s *Service) {
		if u != nil {
			s.users = u
		}
	}
}

// WithWorkerCount sets the number of retry worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the deferred update queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithRebuildBatchSize sets how many log records a rebuild reads per
// batch.
func WithRebuildBatchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.rebuildBatchSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
