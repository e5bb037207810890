package scorelog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/IMperiumX/ranker/internal/domain/model"
	"github.com/IMperiumX/ranker/internal/domain/policy"
)

// MemoryLog implements Log in memory. Used for tests and for running the
// service without a database.
type MemoryLog struct {
	mu      sync.RWMutex
	records []model.ScoreRecord
}

// NewMemoryLog constructs an empty in-memory log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

// Append implements Log.Append.
func (l *MemoryLog) Append(ctx context.Context, rec model.ScoreRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.SubmittedAt.IsZero() {
		rec.SubmittedAt = time.Now().UTC()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
	return rec.ID, nil
}

// ForEachByGame implements Log.ForEachByGame over a snapshot of the log.
func (l *MemoryLog) ForEachByGame(ctx context.Context, gameID string, batchSize int, fn func(context.Context, []model.ScoreRecord) error) error {
	if batchSize < 1 {
		batchSize = 1
	}

	l.mu.RLock()
	var matched []model.ScoreRecord
	for _, rec := range l.records {
		if rec.GameID == gameID {
			matched = append(matched, rec)
		}
	}
	l.mu.RUnlock()

	for start := 0; start < len(matched); start += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := start + batchSize
		if end > len(matched) {
			end = len(matched)
		}
		if err := fn(ctx, matched[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// Best implements Log.Best with a policy-aware fold over the user's records.
func (l *MemoryLog) Best(ctx context.Context, userID, gameID string, pol policy.Policy) (*model.ScoreRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var best *model.ScoreRecord
	for i := range l.records {
		rec := l.records[i]
		if rec.UserID != userID || rec.GameID != gameID {
			continue
		}
		if best == nil || pol.Better(rec.Score, best.Score) {
			best = &rec
		}
	}
	return best, nil
}

// Len returns the number of records in the log.
func (l *MemoryLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}
