// internal/live/live.go
//
// Store for games currently being played. A game lives here from /game/new
// until it is won (row written to the rankings database) or surrendered;
// in both cases it is deleted, so nothing in this store outlives its game.
//
// The in-memory implementation is a mutex-guarded map. The Store interface
// exists so the hint, guess, and surrender handlers stay ignorant of where
// active games actually sit.

package live

import (
	"context"
	"errors"
	"sync"

	"guessnumber/internal/secret"
)

// ErrNotFound is returned by Get for unknown game IDs.
var ErrNotFound = errors.New("live: game not found")

// Store holds the games currently in play.
type Store interface {
	// Save inserts or replaces a game under its ID.
	Save(ctx context.Context, g *secret.Game) error

	// Get returns the game for id, or ErrNotFound.
	Get(ctx context.Context, id string) (*secret.Game, error)

	// Delete removes a won or surrendered game.
	Delete(ctx context.Context, id string)
}

type memory struct {
	mu    sync.RWMutex
	games map[string]*secret.Game // keyed by secret.Game.ID
}

// NewMemoryStore returns a Store that keeps active games in process memory.
func NewMemoryStore() Store {
	return &memory{games: make(map[string]*secret.Game)}
}

func (m *memory) Save(ctx context.Context, g *secret.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = g
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*secret.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.games[id]; ok {
		return g, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
}
