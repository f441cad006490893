package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type SettingStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestSettingStoreSuite(t *testing.T) {
	suite.Run(t, new(SettingStoreSuite))
}

func (s *SettingStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *SettingStoreSuite) TestSaveAllAccumulates() {
	settingID := uuid.New()

	s.Require().NoError(s.store.SaveAll(s.ctx, settingID, []string{"mobius", "college"}))
	s.Require().NoError(s.store.SaveAll(s.ctx, settingID, []string{"college", "university"}))

	tenants, err := s.store.FindTenantsBySettingID(s.ctx, settingID)
	s.Require().NoError(err)
	s.Len(tenants, 3)
	s.Contains(tenants, "university")
}

func (s *SettingStoreSuite) TestExistsAndDelete() {
	settingID := uuid.New()

	exists, err := s.store.ExistsBySettingID(s.ctx, settingID)
	s.Require().NoError(err)
	s.False(exists)

	s.Require().NoError(s.store.SaveAll(s.ctx, settingID, []string{"mobius"}))
	exists, err = s.store.ExistsBySettingID(s.ctx, settingID)
	s.Require().NoError(err)
	s.True(exists)

	s.Require().NoError(s.store.DeleteBySettingID(s.ctx, settingID))
	exists, err = s.store.ExistsBySettingID(s.ctx, settingID)
	s.Require().NoError(err)
	s.False(exists)
}

func (s *SettingStoreSuite) TestDistributionsAreIndependent() {
	first, second := uuid.New(), uuid.New()
	s.Require().NoError(s.store.SaveAll(s.ctx, first, []string{"mobius"}))
	s.Require().NoError(s.store.SaveAll(s.ctx, second, []string{"college"}))

	s.Require().NoError(s.store.DeleteBySettingID(s.ctx, first))

	tenants, err := s.store.FindTenantsBySettingID(s.ctx, second)
	s.Require().NoError(err)
	s.Contains(tenants, "college")
}
