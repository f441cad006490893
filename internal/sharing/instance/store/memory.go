package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/dmytrokrutii/mod-consortia/internal/sharing/instance/models"
	"github.com/dmytrokrutii/mod-consortia/pkg/paging"
	"github.com/dmytrokrutii/mod-consortia/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded attempt store for tests and local development.
type InMemory struct {
	mu    sync.RWMutex
	rows  map[uuid.UUID]models.SharingInstance
	order []uuid.UUID
}

func NewInMemory() *InMemory {
	return &InMemory{rows: make(map[uuid.UUID]models.SharingInstance)}
}

func (s *InMemory) Insert(ctx context.Context, attempt models.SharingInstance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[attempt.ID]; ok {
		return sentinel.ErrConflict
	}
	s.rows[attempt.ID] = attempt
	s.order = append(s.order, attempt.ID)
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, id uuid.UUID) (models.SharingInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.rows[id]
	if !ok {
		return models.SharingInstance{}, sentinel.ErrNotFound
	}
	return attempt, nil
}

func (s *InMemory) FindAll(ctx context.Context, filter models.Filter, page paging.Page) ([]models.SharingInstance, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// order preserves insertion order, keeping listings stable across calls.
	matched := make([]models.SharingInstance, 0, len(s.order))
	for _, id := range s.order {
		attempt := s.rows[id]
		if matches(attempt, filter) {
			matched = append(matched, attempt)
		}
	}

	total := len(matched)
	if page.Offset >= total {
		return nil, total, nil
	}
	end := page.Offset + page.Limit
	if end > total {
		end = total
	}
	return matched[page.Offset:end], total, nil
}

func matches(attempt models.SharingInstance, filter models.Filter) bool {
	if filter.InstanceIdentifier != uuid.Nil && attempt.InstanceIdentifier != filter.InstanceIdentifier {
		return false
	}
	if filter.SourceTenantID != "" && attempt.SourceTenantID != filter.SourceTenantID {
		return false
	}
	if filter.TargetTenantID != "" && attempt.TargetTenantID != filter.TargetTenantID {
		return false
	}
	if filter.Status != "" && attempt.Status != filter.Status {
		return false
	}
	return true
}
