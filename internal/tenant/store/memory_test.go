package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/dmytrokrutii/mod-consortia/internal/tenant/models"
	"github.com/dmytrokrutii/mod-consortia/pkg/platform/sentinel"
)

type TenantStoreSuite struct {
	suite.Suite
	store        *InMemory
	consortiumID uuid.UUID
	ctx          context.Context
}

func TestTenantStoreSuite(t *testing.T) {
	suite.Run(t, new(TenantStoreSuite))
}

func (s *TenantStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.consortiumID = uuid.New()
	s.ctx = context.Background()
}

func (s *TenantStoreSuite) tenant(id string, central bool) models.Tenant {
	return models.Tenant{ID: id, Name: id, ConsortiumID: s.consortiumID, IsCentral: central}
}

func (s *TenantStoreSuite) TestInsertAndFind() {
	s.Require().NoError(s.store.Insert(s.ctx, s.tenant("college", false)))

	found, err := s.store.FindByID(s.ctx, "college")
	s.Require().NoError(err)
	s.Equal("college", found.ID)

	_, err = s.store.FindByID(s.ctx, "unknown")
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.ErrorIs(s.store.Insert(s.ctx, s.tenant("college", false)), sentinel.ErrConflict)
}

func (s *TenantStoreSuite) TestFindCentral() {
	_, err := s.store.FindCentral(s.ctx)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.Require().NoError(s.store.Insert(s.ctx, s.tenant("college", false)))
	s.Require().NoError(s.store.Insert(s.ctx, s.tenant("mobius", true)))

	central, err := s.store.FindCentral(s.ctx)
	s.Require().NoError(err)
	s.Equal("mobius", central.ID)
}

func (s *TenantStoreSuite) TestFindAllSortsByID() {
	for _, id := range []string{"university", "college", "mobius"} {
		s.Require().NoError(s.store.Insert(s.ctx, s.tenant(id, false)))
	}

	tenants, err := s.store.FindAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(tenants, 3)
	s.Equal("college", tenants[0].ID)
	s.Equal("mobius", tenants[1].ID)
	s.Equal("university", tenants[2].ID)
}

func (s *TenantStoreSuite) TestSetSetupStatus() {
	s.Require().NoError(s.store.Insert(s.ctx, s.tenant("college", false)))

	s.Require().NoError(s.store.SetSetupStatus(s.ctx, "college", models.SetupCompleted))
	found, err := s.store.FindByID(s.ctx, "college")
	s.Require().NoError(err)
	s.Equal(models.SetupCompleted, found.SetupStatus)

	s.ErrorIs(s.store.SetSetupStatus(s.ctx, "unknown", models.SetupFailed), sentinel.ErrNotFound)
}
