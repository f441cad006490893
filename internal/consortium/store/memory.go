package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/dmytrokrutii/mod-consortia/internal/consortium/models"
	"github.com/dmytrokrutii/mod-consortia/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded map store for tests and local development.
type InMemory struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]models.Consortium
}

func NewInMemory() *InMemory {
	return &InMemory{rows: make(map[uuid.UUID]models.Consortium)}
}

func (s *InMemory) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows), nil
}

func (s *InMemory) Insert(ctx context.Context, consortium models.Consortium) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[consortium.ID]; ok {
		return sentinel.ErrConflict
	}
	s.rows[consortium.ID] = consortium
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, id uuid.UUID) (models.Consortium, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	consortium, ok := s.rows[id]
	if !ok {
		return models.Consortium{}, sentinel.ErrNotFound
	}
	return consortium, nil
}

func (s *InMemory) Update(ctx context.Context, consortium models.Consortium) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[consortium.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.rows[consortium.ID] = consortium
	return nil
}

func (s *InMemory) FindAll(ctx context.Context, limit int) ([]models.Consortium, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Consortium, 0, len(s.rows))
	for _, consortium := range s.rows {
		if len(out) == limit {
			break
		}
		out = append(out, consortium)
	}
	return out, nil
}
