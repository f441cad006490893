package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/dmytrokrutii/mod-consortia/internal/usertenant/models"
	"github.com/dmytrokrutii/mod-consortia/pkg/paging"
	"github.com/dmytrokrutii/mod-consortia/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded association store for tests and local development.
type InMemory struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]models.UserTenant
}

func NewInMemory() *InMemory {
	return &InMemory{rows: make(map[uuid.UUID]models.UserTenant)}
}

func (s *InMemory) Insert(ctx context.Context, association models.UserTenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.UserID == association.UserID && row.TenantID == association.TenantID {
			return sentinel.ErrConflict
		}
	}
	s.rows[association.ID] = association
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, id uuid.UUID) (models.UserTenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	association, ok := s.rows[id]
	if !ok {
		return models.UserTenant{}, sentinel.ErrNotFound
	}
	return association, nil
}

func (s *InMemory) FindAll(ctx context.Context, page paging.Page) ([]models.UserTenant, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return paginate(s.sorted(), page)
}

func (s *InMemory) FindByUserID(ctx context.Context, userID uuid.UUID, page paging.Page) ([]models.UserTenant, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []models.UserTenant
	for _, row := range s.sorted() {
		if row.UserID == userID {
			matched = append(matched, row)
		}
	}
	return paginate(matched, page)
}

func (s *InMemory) FindByUsernameAndTenantID(ctx context.Context, username, tenantID string) (models.UserTenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, row := range s.rows {
		if row.Username == username && row.TenantID == tenantID {
			return row, nil
		}
	}
	return models.UserTenant{}, sentinel.ErrNotFound
}

func (s *InMemory) DeleteByUserIDAndTenantID(ctx context.Context, userID uuid.UUID, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, row := range s.rows {
		if row.UserID == userID && row.TenantID == tenantID {
			delete(s.rows, id)
			return nil
		}
	}
	return sentinel.ErrNotFound
}

func (s *InMemory) sorted() []models.UserTenant {
	out := make([]models.UserTenant, 0, len(s.rows))
	for _, row := range s.rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

func paginate(rows []models.UserTenant, page paging.Page) ([]models.UserTenant, int, error) {
	total := len(rows)
	if page.Offset >= total {
		return nil, total, nil
	}
	end := page.Offset + page.Limit
	if end > total {
		end = total
	}
	return rows[page.Offset:end], total, nil
}
