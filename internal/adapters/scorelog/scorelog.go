// Package scorelog defines the append-only score log interface and its
// implementations. The log is the system of record; the ranking index is
// a projection rebuilt from it.
package scorelog

import (
	"context"

	"github.com/IMperiumX/ranker/internal/domain/model"
	"github.com/IMperiumX/ranker/internal/domain/policy"
)

// Log provides append and read access to the durable score record.
type Log interface {
	// Append durably stores a submission and returns the record id.
	// Without a successful append no index update may happen.
	Append(ctx context.Context, rec model.ScoreRecord) (string, error)

	// ForEachByGame streams every record of a game in bounded batches.
	// Order across batches is unspecified; coverage is complete.
	ForEachByGame(ctx context.Context, gameID string, batchSize int, fn func(context.Context, []model.ScoreRecord) error) error

	// Best returns the user's true policy-best record for a game, or nil
	// if the user never submitted to it.
	Best(ctx context.Context, userID, gameID string, pol policy.Policy) (*model.ScoreRecord, error)
}
