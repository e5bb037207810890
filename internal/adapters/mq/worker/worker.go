// Package worker drains the deferred index update queue and retries the
// writes against the ranking index.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/IMperiumX/ranker/internal/adapters/mq/queue"
	"github.com/IMperiumX/ranker/internal/domain/policy"
	"github.com/IMperiumX/ranker/pkg/logger"
	"github.com/IMperiumX/ranker/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount    = 2
	defaultMaxAttempts    = 5
	defaultBaseBackoff    = 250 * time.Millisecond
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Update is what workers read off the queue.
type Update = queue.Update

// Updater applies a deferred update to the ranking indices.
type Updater interface {
	Upsert(ctx context.Context, gameID, userID string, raw float64, pol policy.Policy) error
}

// Queue defines how workers receive and requeue updates.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Update
	Enqueue(ctx context.Context, u Update) bool
}

// Worker retries deferred index updates until they apply or the retry
// budget is exhausted.
type Worker struct {
	queue   Queue
	updater Updater
	name    string

	maxAttempts int
	baseBackoff time.Duration

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewWorker creates a worker with configuration options.
func NewWorker(q Queue, updater Updater, opts ...Option) *Worker {
	w := &Worker{
		queue:       q,
		updater:     updater,
		name:        "retry-worker",
		maxAttempts: defaultMaxAttempts,
		baseBackoff: defaultBaseBackoff,
		shutdown:    make(chan struct{}),
		done:        make(chan struct{}),
		logger:      logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run starts the worker loop until ctx is canceled or the queue closes.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	updates := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			w.process(ctx, u)
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "worker shutdown timed out", logger.String("worker", w.name))
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process applies one deferred update, requeueing with backoff on failure.
func (w *Worker) process(ctx context.Context, u Update) {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1e3)
	}()

	err := w.updater.Upsert(ctx, u.GameID, u.UserID, u.Score, u.Policy)
	if err == nil {
		if u.Attempt > 0 {
			w.logger.Info(ctx, "deferred index update applied",
				logger.String("record_id", u.RecordID),
				logger.Int("attempt", u.Attempt),
			)
		}
		return
	}

	u.Attempt++
	if u.Attempt >= w.maxAttempts {
		// The gap left here is closed by the next rebuild.
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "retry_exhausted")
		w.logger.Error(ctx, "deferred index update dropped after max attempts",
			logger.String("record_id", u.RecordID),
			logger.String("game_id", u.GameID),
			logger.String("user_id", u.UserID),
			logger.Int("attempt", u.Attempt),
			logger.Error(err),
		)
		return
	}

	metrics.RecordWorkerRetry()
	backoff := w.baseBackoff << (u.Attempt - 1)
	select {
	case <-time.After(backoff):
	case <-ctx.Done():
		return
	case <-w.shutdown:
		return
	}

	if !w.queue.Enqueue(ctx, u) {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "requeue_failed")
		w.logger.Error(ctx, "failed to requeue deferred index update",
			logger.String("record_id", u.RecordID),
			logger.Error(err),
		)
	}
}

// Pool manages multiple retry workers over one queue.
type Pool struct {
	workers []*Worker

	shutdown chan struct{}
	logger   logger.Logger
}

// NewPool creates a pool of workerCount retry workers.
func NewPool(workerCount int, q Queue, updater Updater, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = min(runtime.NumCPU(), defaultWorkerCount)
	}

	p := &Pool{
		workers:  make([]*Worker, workerCount),
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		workerOpts := append([]Option{WithName("retry-worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewWorker(q, updater, workerOpts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop stops all workers, waiting briefly for each.
func (p *Pool) Stop() {
	close(p.shutdown)
	for _, w := range p.workers {
		close(w.shutdown)
	}
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
}

// Shutdown closes the queue and drains all workers.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := any(p.workers[0].queue).(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	return nil
}
