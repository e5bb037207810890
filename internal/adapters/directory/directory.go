// Package directory defines the game and user directory collaborators.
// The core reads game policy/active state from the game directory and
// decorates leaderboard rows via the user directory; neither is required
// for ranking correctness.
package directory

import (
	"context"

	"github.com/IMperiumX/ranker/internal/domain/model"
)

// Display is the identity shown on leaderboard rows.
type Display struct {
	UserID      string
	DisplayName string
}

// Games resolves game configuration.
type Games interface {
	// Get returns the game or ErrGameNotFound.
	Get(ctx context.Context, gameID string) (model.Game, error)
}

// Users resolves display identities.
type Users interface {
	// ResolveDisplay returns the user's display identity or ErrUserNotFound.
	ResolveDisplay(ctx context.Context, userID string) (Display, error)
}
