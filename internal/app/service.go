// Package service provides the leaderboard facade that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/IMperiumX/ranker/internal/adapters/directory"
	eventqueue "github.com/IMperiumX/ranker/internal/adapters/mq/queue"
	workerpool "github.com/IMperiumX/ranker/internal/adapters/mq/worker"
	"github.com/IMperiumX/ranker/internal/adapters/repository"
	"github.com/IMperiumX/ranker/internal/adapters/scorelog"
	"github.com/IMperiumX/ranker/internal/domain/model"
	"github.com/IMperiumX/ranker/internal/domain/policy"
	"github.com/IMperiumX/ranker/internal/domain/rank"
	"github.com/IMperiumX/ranker/internal/domain/types"
	"github.com/IMperiumX/ranker/pkg/logger"
	"github.com/IMperiumX/ranker/pkg/metrics"
)

// surroundingSpan is how many neighbours are shown on each side of a
// user in rank lookups.
const surroundingSpan = 5

// Service implements the API dependencies for the ranking system.
type Service struct {
	mu sync.RWMutex

	// Core components
	index   repository.Store
	engine  *rank.Engine
	log     scorelog.Log
	games   directory.Games
	users   directory.Users
	updates eventqueue.Queue
	pool    *workerpool.Pool

	// Configuration
	workerCount      int
	queueSize        int
	rebuildBatchSize int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:      2,
		queueSize:        10000,
		rebuildBatchSize: 1000,
		logger:           nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components. Dependencies not
// supplied through options fall back to in-memory implementations.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting ranking service...")

	if s.index == nil {
		s.index = repository.NewTreapStore()
		s.logger.Info(ctx, "using treap store")
	}
	if s.log == nil {
		s.log = scorelog.NewMemoryLog()
		s.logger.Info(ctx, "using in-memory score log")
	}
	if s.games == nil || s.users == nil {
		mg, mu := directory.NewMemoryGames(), directory.NewMemoryUsers()
		if s.games == nil {
			s.games = mg
		}
		if s.users == nil {
			s.users = mu
		}
	}

	s.engine = rank.NewEngine(s.index)
	s.updates = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
	)
	s.pool = workerpool.NewPool(s.workerCount, s.updates, s.engine,
		workerpool.WithLogger(s.logger.Named("worker")),
	)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "ranking service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("rebuildBatchSize", s.rebuildBatchSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping ranking service...")

	if s.pool != nil {
		s.pool.Stop()
	}
	if s.updates != nil {
		_ = s.updates.Close()
	}
	if closer, ok := s.index.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "ranking service stopped")
}

// SubmitScore validates and durably records a submission, then applies
// it to the per-game and global indices. The log append is the commit
// point: once it succeeds the submission is accepted even if the index
// write fails, in which case the update is queued for retry.
func (s *Service) SubmitScore(ctx context.Context, userID, gameID string, score float64, metadata map[string]any) (types.SubmitResult, error) {
	if err := s.ready(); err != nil {
		return types.SubmitResult{}, err
	}

	if err := policy.Validate(score); err != nil {
		metrics.RecordSubmissionError("validation")
		return types.SubmitResult{}, err
	}
	score = policy.Round(score)

	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		metrics.RecordSubmissionError("unknown_game")
		return types.SubmitResult{}, err
	}
	if !game.Active {
		metrics.RecordSubmissionError("inactive_game")
		return types.SubmitResult{}, ErrGameInactive
	}

	// The personal-best verdict compares against the log, not the live
	// index, so it stays correct even when the index lags.
	prev, err := s.log.Best(ctx, userID, gameID, game.Policy)
	if err != nil {
		metrics.RecordSubmissionError("log_read")
		return types.SubmitResult{}, err
	}

	recordID, err := s.log.Append(ctx, model.ScoreRecord{
		UserID:      userID,
		GameID:      gameID,
		Score:       score,
		Metadata:    metadata,
		SubmittedAt: time.Now().UTC(),
	})
	if err != nil {
		metrics.RecordSubmissionError("log_append")
		return types.SubmitResult{}, err
	}
	metrics.RecordSubmission()

	personalBest := prev == nil || game.Policy.Better(score, prev.Score)
	if personalBest {
		metrics.RecordPersonalBest()
	}

	if err := s.engine.Upsert(ctx, gameID, userID, score, game.Policy); err != nil {
		s.logger.Warn(ctx, "index update failed, deferring",
			logger.String("recordID", recordID),
			logger.String("userID", userID),
			logger.String("gameID", gameID),
			logger.Error(err),
		)
		metrics.RecordErrorByComponent("index", "write")
		s.deferUpdate(ctx, model.IndexUpdate{
			RecordID: recordID,
			UserID:   userID,
			GameID:   gameID,
			Score:    score,
			Policy:   game.Policy,
		})
		return types.SubmitResult{Score: score, PersonalBest: personalBest}, nil
	}

	result := types.SubmitResult{Score: score, PersonalBest: personalBest}

	// Rank and player count are a courtesy; their failure never fails
	// the submission.
	if entry, err := s.engine.RankOf(ctx, gameID, userID, game.Policy); err == nil {
		result.Rank = entry.Rank
		if n, err := s.engine.Cardinality(ctx, gameID); err == nil {
			result.TotalPlayers = n
		}
	}

	return result, nil
}

// deferUpdate hands a failed index write to the retry queue.
func (s *Service) deferUpdate(ctx context.Context, u model.IndexUpdate) {
	if !s.updates.Enqueue(ctx, u) {
		// The record is still in the log; the gap closes on the next
		// rebuild.
		s.logger.Error(ctx, "deferred update dropped, queue full",
			logger.String("recordID", u.RecordID),
			logger.String("gameID", u.GameID),
		)
	}
}

// GetLeaderboard returns the inclusive rank window [start, stop] of a
// game, decorated with display names.
func (s *Service) GetLeaderboard(ctx context.Context, gameID string, start, stop int64) ([]types.Row, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}

	entries, err := s.engine.Window(ctx, gameID, start, stop, game.Policy)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, entries), nil
}

// GetGlobalLeaderboard returns the inclusive rank window [start, stop]
// of the cross-game cumulative ordering.
func (s *Service) GetGlobalLeaderboard(ctx context.Context, start, stop int64) ([]types.GlobalRow, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	entries, err := s.engine.GlobalWindow(ctx, start, stop)
	if err != nil {
		return nil, err
	}

	rows := make([]types.GlobalRow, 0, len(entries))
	for _, e := range entries {
		d, err := s.users.ResolveDisplay(ctx, e.UserID)
		if err != nil {
			s.skipRow(ctx, e.UserID, err)
			continue
		}
		rows = append(rows, types.GlobalRow{
			Rank:        e.Rank,
			UserID:      e.UserID,
			DisplayName: d.DisplayName,
			TotalScore:  e.Score,
		})
	}
	return rows, nil
}

// GetUserRank returns a user's rank in one game together with the
// surrounding window of players. Unranked users get repository.ErrNotFound.
func (s *Service) GetUserRank(ctx context.Context, gameID, userID string) (types.UserRank, error) {
	if err := s.ready(); err != nil {
		return types.UserRank{}, err
	}

	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return types.UserRank{}, err
	}

	entry, err := s.engine.RankOf(ctx, gameID, userID, game.Policy)
	if err != nil {
		return types.UserRank{}, err
	}

	start := entry.Rank - 1 - surroundingSpan
	if start < 0 {
		start = 0
	}
	stop := entry.Rank - 1 + surroundingSpan

	window, err := s.engine.Window(ctx, gameID, start, stop, game.Policy)
	if err != nil {
		return types.UserRank{}, err
	}
	total, err := s.engine.Cardinality(ctx, gameID)
	if err != nil {
		return types.UserRank{}, err
	}

	return types.UserRank{
		Rank:         entry.Rank,
		Score:        entry.Score,
		TotalPlayers: total,
		Surrounding:  s.decorate(ctx, window),
	}, nil
}

// GetUserGlobalRank returns a user's position in the global ordering.
func (s *Service) GetUserGlobalRank(ctx context.Context, userID string) (types.GlobalUserRank, error) {
	if err := s.ready(); err != nil {
		return types.GlobalUserRank{}, err
	}

	entry, err := s.engine.GlobalRankOf(ctx, userID)
	if err != nil {
		return types.GlobalUserRank{}, err
	}
	total, err := s.engine.GlobalCardinality(ctx)
	if err != nil {
		return types.GlobalUserRank{}, err
	}

	return types.GlobalUserRank{
		Rank:         entry.Rank,
		TotalScore:   entry.Score,
		TotalPlayers: total,
	}, nil
}

// RebuildLeaderboard reconstructs a game's index from the score log,
// keeping each user's policy-best score. Returns the number of ranked
// users after the rebuild.
func (s *Service) RebuildLeaderboard(ctx context.Context, gameID string) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}

	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return 0, err
	}

	startedAt := time.Now()
	best := make(map[string]float64)
	err = s.log.ForEachByGame(ctx, gameID, s.rebuildBatchSize, func(ctx context.Context, batch []model.ScoreRecord) error {
		for _, rec := range batch {
			cur, ok := best[rec.UserID]
			if !ok || game.Policy.Better(rec.Score, cur) {
				best[rec.UserID] = rec.Score
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if err := s.engine.Rebuild(ctx, gameID, game.Policy, best); err != nil {
		return 0, err
	}

	elapsed := time.Since(startedAt)
	metrics.RecordRebuild(float64(elapsed.Microseconds()) / 1e3)
	metrics.UpdateRebuildLastUnix(float64(time.Now().Unix()))
	metrics.UpdateRankedUsers(rank.Board(gameID), int64(len(best)))

	s.logger.Info(ctx, "leaderboard rebuilt",
		logger.String("gameID", gameID),
		logger.Int("rankedUsers", len(best)),
		logger.String("took", elapsed.String()),
	)
	return len(best), nil
}

// ClearLeaderboard drops a game's index. The score log is untouched, so
// a rebuild restores every ranking.
func (s *Service) ClearLeaderboard(ctx context.Context, gameID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.games.Get(ctx, gameID); err != nil {
		return err
	}
	return s.engine.Clear(ctx, gameID)
}

// ClearGlobalLeaderboard drops the cross-game index.
func (s *Service) ClearGlobalLeaderboard(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.engine.GlobalClear(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"worker_count": s.workerCount,
		"queue_size":   s.queueSize,
	}
	if s.updates != nil {
		stats["queue_length"] = s.updates.Len(ctx)
	}
	if s.started {
		if n, err := s.engine.GlobalCardinality(ctx); err == nil {
			stats["global_players"] = n
		}
	}
	return stats
}

// ready reports whether the service has been started.
func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// decorate resolves display names for a window of entries. Rows whose
// identity cannot be resolved are dropped rather than breaking the page.
func (s *Service) decorate(ctx context.Context, entries []rank.Entry) []types.Row {
	rows := make([]types.Row, 0, len(entries))
	for _, e := range entries {
		d, err := s.users.ResolveDisplay(ctx, e.UserID)
		if err != nil {
			s.skipRow(ctx, e.UserID, err)
			continue
		}
		rows = append(rows, types.Row{
			Rank:        e.Rank,
			UserID:      e.UserID,
			DisplayName: d.DisplayName,
			Score:       e.Score,
		})
	}
	return rows
}

func (s *Service) skipRow(ctx context.Context, userID string, err error) {
	if !errors.Is(err, directory.ErrUserNotFound) {
		s.logger.Warn(ctx, "display lookup failed, dropping row",
			logger.String("userID", userID),
			logger.Error(err),
		)
	}
}
