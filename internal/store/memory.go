// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// This is the default session store, used in development/testing or when
// no Redis address is configured.
//
// Characteristics:
//   - Stores *game.Game objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Get hands back the stored pointer, so concurrent requests on one game
//     share it and serialize on the game's own mutex.
//   - Entries idle longer than the TTL are swept on Save.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robalobadob/matchstick/internal/game"
)

var ErrNotFound = errors.New("store: game not found")

// Store defines the persistence interface for game sessions.
// Implementations are backed by memory (this file) or Redis (redis.go).
type Store interface {
	// Save persists or updates a game state.
	Save(ctx context.Context, g *game.Game) error

	// Get retrieves a game by ID.
	// Returns ErrNotFound if the game is missing or expired.
	Get(ctx context.Context, id string) (*game.Game, error)
}

type entry struct {
	g       *game.Game
	touched time.Time
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu    sync.RWMutex      // guards games
	games map[string]*entry // keyed by Game.ID
	ttl   time.Duration     // zero disables expiry
	now   func() time.Time
}

// NewMemoryStore constructs a new in-memory Store. A ttl of zero keeps
// games until the process exits.
func NewMemoryStore(ttl time.Duration) Store {
	return &memory{games: make(map[string]*entry), ttl: ttl, now: time.Now}
}

// Save adds or updates the game in the map.
func (m *memory) Save(ctx context.Context, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.games[g.ID] = &entry{g: g, touched: now}
	if m.ttl > 0 {
		for id, e := range m.games {
			if now.Sub(e.touched) > m.ttl {
				delete(m.games, id)
			}
		}
	}
	return nil
}

// Get looks up a game by ID.
func (m *memory) Get(ctx context.Context, id string) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.games[id]
	if !ok || (m.ttl > 0 && m.now().Sub(e.touched) > m.ttl) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e.g, nil
}
