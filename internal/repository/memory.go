package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"chessgame/internal/domain/game"
	errs "chessgame/internal/errors"
)

// MemoryGameRepository keeps games for the lifetime of the process.
type MemoryGameRepository struct {
	mu    sync.RWMutex
	games map[string]game.Game
}

func NewMemoryGameRepository() *MemoryGameRepository {
	return &MemoryGameRepository{
		games: make(map[string]game.Game),
	}
}

func (m *MemoryGameRepository) Save(_ context.Context, g game.Game) (string, error) {
	prepareForSave(&g)

	m.mu.Lock()
	m.games[g.ID] = g.Clone()
	m.mu.Unlock()

	return g.ID, nil
}

func (m *MemoryGameRepository) FindByID(_ context.Context, id string) (game.Game, error) {
	m.mu.RLock()
	g, ok := m.games[id]
	m.mu.RUnlock()

	if !ok {
		return game.Game{}, errs.ErrGameNotFound
	}
	return g.Clone(), nil
}

func (m *MemoryGameRepository) ListGameIDs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	ids := make([]string, 0, len(m.games))
	for id := range m.games {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	sort.Strings(ids)
	return ids, nil
}

// prepareForSave assigns an id to new games and stamps the timestamps.
// Millisecond precision matches what BSON can store.
func prepareForSave(g *game.Game) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	g.UpdatedAt = now
}
