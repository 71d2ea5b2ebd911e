package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
	"github.com/m04kA/SMC-CarWashService/internal/infra/storage/blocker"
)

// BlockerStore хранилище периодов закрытия в памяти
type BlockerStore struct {
	mu    sync.RWMutex
	items map[string]*domain.Blocker
}

// NewBlockerStore создает пустое хранилище
func NewBlockerStore() *BlockerStore {
	return &BlockerStore{items: make(map[string]*domain.Blocker)}
}

// Create сохраняет блокировку
func (s *BlockerStore) Create(_ context.Context, b *domain.Blocker) (*domain.Blocker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.CreatedAt = time.Now()
	c := *b
	s.items[b.ID] = &c
	return b, nil
}

// GetByID получает блокировку по ID
func (s *BlockerStore) GetByID(_ context.Context, id string) (*domain.Blocker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.items[id]
	if !ok {
		return nil, blocker.ErrBlockerNotFound
	}
	c := *b
	return &c, nil
}

// List получает блокировки, пересекающие период [from, to]
func (s *BlockerStore) List(_ context.Context, from, to *time.Time) ([]*domain.Blocker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Blocker, 0)
	for _, b := range s.items {
		if from != nil && b.EndTime.Before(*from) {
			continue
		}
		if to != nil && b.StartTime.After(*to) {
			continue
		}
		c := *b
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

// Delete удаляет блокировку
func (s *BlockerStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return blocker.ErrBlockerNotFound
	}
	delete(s.items, id)
	return nil
}
