package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/dmytrokrutii/mod-consortia/internal/usertenant/models"
	"github.com/dmytrokrutii/mod-consortia/pkg/paging"
	"github.com/dmytrokrutii/mod-consortia/pkg/platform/sentinel"
)

type UserTenantStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestUserTenantStoreSuite(t *testing.T) {
	suite.Run(t, new(UserTenantStoreSuite))
}

func (s *UserTenantStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *UserTenantStoreSuite) association(userID uuid.UUID, username, tenantID string) models.UserTenant {
	return models.UserTenant{
		ID:       uuid.New(),
		UserID:   userID,
		Username: username,
		TenantID: tenantID,
	}
}

func (s *UserTenantStoreSuite) TestInsertRejectsDuplicatePair() {
	userID := uuid.New()
	s.Require().NoError(s.store.Insert(s.ctx, s.association(userID, "jdoe", "college")))

	// A fresh row id does not help: the (user, tenant) pair is taken.
	s.ErrorIs(s.store.Insert(s.ctx, s.association(userID, "jdoe", "college")), sentinel.ErrConflict)

	s.Require().NoError(s.store.Insert(s.ctx, s.association(userID, "jdoe", "mobius")))
}

func (s *UserTenantStoreSuite) TestLookups() {
	userID := uuid.New()
	primary := s.association(userID, "jdoe", "college")
	s.Require().NoError(s.store.Insert(s.ctx, primary))
	s.Require().NoError(s.store.Insert(s.ctx, s.association(userID, "jdoe", "mobius")))
	s.Require().NoError(s.store.Insert(s.ctx, s.association(uuid.New(), "asmith", "college")))

	found, err := s.store.FindByID(s.ctx, primary.ID)
	s.Require().NoError(err)
	s.Equal(primary, found)

	byName, err := s.store.FindByUsernameAndTenantID(s.ctx, "jdoe", "college")
	s.Require().NoError(err)
	s.Equal(primary.ID, byName.ID)

	_, err = s.store.FindByUsernameAndTenantID(s.ctx, "jdoe", "university")
	s.ErrorIs(err, sentinel.ErrNotFound)

	rows, total, err := s.store.FindByUserID(s.ctx, userID, paging.Page{Offset: 0, Limit: 10})
	s.Require().NoError(err)
	s.Equal(2, total)
	s.Len(rows, 2)
}

func (s *UserTenantStoreSuite) TestFindAllPages() {
	for i := 0; i < 5; i++ {
		s.Require().NoError(s.store.Insert(s.ctx, s.association(uuid.New(), fmt.Sprintf("user-%d", i), "college")))
	}

	rows, total, err := s.store.FindAll(s.ctx, paging.Page{Offset: 3, Limit: 10})
	s.Require().NoError(err)
	s.Equal(5, total)
	s.Len(rows, 2)

	rows, total, err = s.store.FindAll(s.ctx, paging.Page{Offset: 10, Limit: 10})
	s.Require().NoError(err)
	s.Equal(5, total)
	s.Empty(rows)
}

func (s *UserTenantStoreSuite) TestDelete() {
	userID := uuid.New()
	s.Require().NoError(s.store.Insert(s.ctx, s.association(userID, "jdoe", "college")))

	s.Require().NoError(s.store.DeleteByUserIDAndTenantID(s.ctx, userID, "college"))
	s.ErrorIs(s.store.DeleteByUserIDAndTenantID(s.ctx, userID, "college"), sentinel.ErrNotFound)
}
