package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemory is a mutex-guarded distribution store for tests and local
// development.
type InMemory struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]map[string]struct{}
}

func NewInMemory() *InMemory {
	return &InMemory{rows: make(map[uuid.UUID]map[string]struct{})}
}

func (s *InMemory) FindTenantsBySettingID(ctx context.Context, settingID uuid.UUID) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]struct{}, len(s.rows[settingID]))
	for tenantID := range s.rows[settingID] {
		out[tenantID] = struct{}{}
	}
	return out, nil
}

func (s *InMemory) SaveAll(ctx context.Context, settingID uuid.UUID, tenantIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.rows[settingID]
	if !ok {
		set = make(map[string]struct{}, len(tenantIDs))
		s.rows[settingID] = set
	}
	for _, tenantID := range tenantIDs {
		set[tenantID] = struct{}{}
	}
	return nil
}

func (s *InMemory) ExistsBySettingID(ctx context.Context, settingID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows[settingID]) > 0, nil
}

func (s *InMemory) DeleteBySettingID(ctx context.Context, settingID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, settingID)
	return nil
}
