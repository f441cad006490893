package store

import (
	"context"
	"sort"
	"sync"

	"github.com/dmytrokrutii/mod-consortia/internal/tenant/models"
	"github.com/dmytrokrutii/mod-consortia/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded roster for tests and local development.
type InMemory struct {
	mu   sync.RWMutex
	rows map[string]models.Tenant
}

func NewInMemory() *InMemory {
	return &InMemory{rows: make(map[string]models.Tenant)}
}

func (s *InMemory) Insert(ctx context.Context, tenant models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[tenant.ID]; ok {
		return sentinel.ErrConflict
	}
	s.rows[tenant.ID] = tenant
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, tenantID string) (models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tenant, ok := s.rows[tenantID]
	if !ok {
		return models.Tenant{}, sentinel.ErrNotFound
	}
	return tenant, nil
}

func (s *InMemory) FindAll(ctx context.Context) ([]models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Tenant, 0, len(s.rows))
	for _, tenant := range s.rows {
		out = append(out, tenant)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) FindCentral(ctx context.Context) (models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tenant := range s.rows {
		if tenant.IsCentral {
			return tenant, nil
		}
	}
	return models.Tenant{}, sentinel.ErrNotFound
}

func (s *InMemory) SetSetupStatus(ctx context.Context, tenantID string, status models.SetupStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tenant, ok := s.rows[tenantID]
	if !ok {
		return sentinel.ErrNotFound
	}
	tenant.SetupStatus = status
	s.rows[tenantID] = tenant
	return nil
}
