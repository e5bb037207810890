package directory

import (
	"context"
	"sync"

	"github.com/IMperiumX/ranker/internal/domain/model"
)

// MemoryGames implements Games in memory.
type MemoryGames struct {
	mu    sync.RWMutex
	games map[string]model.Game
}

// NewMemoryGames constructs an empty in-memory game directory.
func NewMemoryGames() *MemoryGames {
	return &MemoryGames{games: make(map[string]model.Game)}
}

// Put registers or replaces a game.
func (d *MemoryGames) Put(game model.Game) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.games[game.ID] = game
}

// Get implements Games.Get.
func (d *MemoryGames) Get(ctx context.Context, gameID string) (model.Game, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	game, ok := d.games[gameID]
	if !ok {
		return model.Game{}, ErrGameNotFound
	}
	return game, nil
}

// MemoryUsers implements Users in memory.
type MemoryUsers struct {
	mu    sync.RWMutex
	users map[string]Display
}

// NewMemoryUsers constructs an empty in-memory user directory.
func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: make(map[string]Display)}
}

// Put registers or replaces a user's display identity.
func (d *MemoryUsers) Put(display Display) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[display.UserID] = display
}

// ResolveDisplay implements Users.ResolveDisplay.
func (d *MemoryUsers) ResolveDisplay(ctx context.Context, userID string) (Display, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	display, ok := d.users[userID]
	if !ok {
		return Display{}, ErrUserNotFound
	}
	return display, nil
}
