package archive

import (
	"context"
	"sort"
	"sync"

	"github.com/kapu/chess-coach-client-go/internal/domain"
)

// memrepo is the in-memory archive used when no DATABASE_URL is configured.
type memrepo struct {
	mu sync.RWMutex

	nextID    int64
	games     map[string]*domain.GameRecord // sessionUUID -> record
	gameOrder []string
}

func NewMemoryRepository() Repository {
	return &memrepo{games: make(map[string]*domain.GameRecord)}
}

func (m *memrepo) SaveFinishedGame(ctx context.Context, rec *domain.GameRecord) error {
	if rec == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *rec
	if existing, ok := m.games[rec.SessionUUID]; ok {
		cp.ID = existing.ID
	} else {
		m.nextID++
		cp.ID = m.nextID
		m.gameOrder = append(m.gameOrder, rec.SessionUUID)
	}
	m.games[rec.SessionUUID] = &cp
	return nil
}

func (m *memrepo) RecentGames(ctx context.Context, limit int) ([]*domain.GameRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]*domain.GameRecord, 0, len(m.games))
	for _, uuid := range m.gameOrder {
		if g, ok := m.games[uuid]; ok {
			cp := *g
			items = append(items, &cp)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].EndedAt.Equal(items[j].EndedAt) {
			return items[i].EndedAt.After(items[j].EndedAt)
		}
		return items[i].ID > items[j].ID
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *memrepo) Close() error { return nil }
