// Package rank implements the ranking index engine: one ordered keyspace
// per game plus one global aggregate keyspace, maintained on top of the
// repository's ordered-index store.
package rank

import (
	"context"
	"fmt"

	"github.com/IMperiumX/ranker/internal/adapters/repository"
	"github.com/IMperiumX/ranker/internal/domain/policy"
)

// GlobalBoard is the keyspace of the cross-game aggregate index.
const GlobalBoard = "leaderboard:global"

// rebuildBatchSize bounds index writes per batch during rebuild.
const rebuildBatchSize = 1000

// Board returns the keyspace of a game's leaderboard.
func Board(gameID string) string {
	return "leaderboard:" + gameID
}

// Entry is one ranked row: 1-indexed rank under "better" ordering and the
// denormalized raw score.
type Entry struct {
	Rank   int64
	UserID string
	Score  float64
}

// Engine maintains the per-game and global ranking indices. The policy is
// threaded explicitly; the backing store only ever sees ascending keys.
//
// The global keyspace stores negated cumulative sums, so the single
// "ascending key ranks first" store contract holds there too: a higher
// total is a smaller key. Reads negate back.
type Engine struct {
	store repository.Store
}

// NewEngine constructs an engine over the given ordered-index store.
func NewEngine(store repository.Store) *Engine {
	return &Engine{store: store}
}

// Upsert writes a submission into both indices: the game index gets the
// normalized key with overwrite semantics (the newest submission always
// wins, even if worse), and the global index atomically accumulates the
// raw score.
func (e *Engine) Upsert(ctx context.Context, gameID, userID string, raw float64, pol policy.Policy) error {
	if err := policy.Validate(raw); err != nil {
		return err
	}
	if err := e.store.Set(ctx, Board(gameID), userID, pol.Normalize(raw)); err != nil {
		return fmt.Errorf("game index upsert: %w", err)
	}
	if _, err := e.store.Add(ctx, GlobalBoard, userID, -policy.Round(raw)); err != nil {
		return fmt.Errorf("global index accumulate: %w", err)
	}
	return nil
}

// RankOf returns the user's 1-indexed rank and raw score in a game, or
// repository.ErrNotFound if the user has no entry.
func (e *Engine) RankOf(ctx context.Context, gameID, userID string, pol policy.Policy) (Entry, error) {
	board := Board(gameID)
	r, err := e.store.Rank(ctx, board, userID)
	if err != nil {
		return Entry{}, err
	}
	key, err := e.store.Key(ctx, board, userID)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Rank: r + 1, UserID: userID, Score: pol.Denormalize(key)}, nil
}

// Window returns ranks [start, stop] (0-indexed, inclusive) in better-first
// order. Bounds are clamped; a start beyond the cardinality yields an empty
// slice.
func (e *Engine) Window(ctx context.Context, gameID string, start, stop int64, pol policy.Policy) ([]Entry, error) {
	if start < 0 {
		start = 0
	}
	members, err := e.store.Range(ctx, Board(gameID), start, stop)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, len(members))
	for i, m := range members {
		out[i] = Entry{Rank: start + int64(i) + 1, UserID: m.ID, Score: pol.Denormalize(m.Key)}
	}
	return out, nil
}

// Cardinality returns the number of ranked users in a game.
func (e *Engine) Cardinality(ctx context.Context, gameID string) (int64, error) {
	return e.store.Card(ctx, Board(gameID))
}

// Clear removes every entry of a game's index.
func (e *Engine) Clear(ctx context.Context, gameID string) error {
	return e.store.Clear(ctx, Board(gameID))
}

// GlobalRankOf returns the user's 1-indexed global rank and cumulative
// total score.
func (e *Engine) GlobalRankOf(ctx context.Context, userID string) (Entry, error) {
	r, err := e.store.Rank(ctx, GlobalBoard, userID)
	if err != nil {
		return Entry{}, err
	}
	key, err := e.store.Key(ctx, GlobalBoard, userID)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Rank: r + 1, UserID: userID, Score: policy.Round(-key)}, nil
}

// GlobalWindow returns global ranks [start, stop] in better-first order.
func (e *Engine) GlobalWindow(ctx context.Context, start, stop int64) ([]Entry, error) {
	if start < 0 {
		start = 0
	}
	members, err := e.store.Range(ctx, GlobalBoard, start, stop)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, len(members))
	for i, m := range members {
		out[i] = Entry{Rank: start + int64(i) + 1, UserID: m.ID, Score: policy.Round(-m.Key)}
	}
	return out, nil
}

// GlobalCardinality returns the number of globally ranked users.
func (e *Engine) GlobalCardinality(ctx context.Context) (int64, error) {
	return e.store.Card(ctx, GlobalBoard)
}

// GlobalClear removes the global index.
func (e *Engine) GlobalClear(ctx context.Context) error {
	return e.store.Clear(ctx, GlobalBoard)
}

// Rebuild clears a game's index and repopulates it from a reduced
// best-score set, writing in bounded batches. It never touches the global
// index. Cancellation is honored between batches.
func (e *Engine) Rebuild(ctx context.Context, gameID string, pol policy.Policy, best map[string]float64) error {
	board := Board(gameID)
	if err := e.store.Clear(ctx, board); err != nil {
		return fmt.Errorf("clear before rebuild: %w", err)
	}

	batch := make([]repository.Member, 0, rebuildBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := e.store.SetAll(ctx, board, batch); err != nil {
			return fmt.Errorf("rebuild batch write: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	for userID, raw := range best {
		batch = append(batch, repository.Member{ID: userID, Key: pol.Normalize(raw)})
		if len(batch) == rebuildBatchSize {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("rebuild cancelled: %w", err)
			}
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}
