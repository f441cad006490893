package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/dmytrokrutii/mod-consortia/internal/tenant/models"
	"github.com/dmytrokrutii/mod-consortia/internal/tenant/store"
	domainerrors "github.com/dmytrokrutii/mod-consortia/pkg/domain-errors"
)

type stubConsortium struct {
	id uuid.UUID
}

func (c *stubConsortium) CheckExists(_ context.Context, consortiumID uuid.UUID) error {
	if consortiumID != c.id {
		return domainerrors.Newf(domainerrors.CodeNotFound, "consortium with id [%s] was not found", consortiumID)
	}
	return nil
}

type TenantServiceSuite struct {
	suite.Suite
	service      *Service
	consortiumID uuid.UUID
	ctx          context.Context
}

func TestTenantServiceSuite(t *testing.T) {
	suite.Run(t, new(TenantServiceSuite))
}

func (s *TenantServiceSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.consortiumID = uuid.New()
	s.service = New(store.NewInMemory(), &stubConsortium{id: s.consortiumID}, logger)
	s.ctx = context.Background()
}

func (s *TenantServiceSuite) TestSave() {
	s.Run("requires a known consortium", func() {
		_, err := s.service.Save(s.ctx, uuid.New(), models.Tenant{ID: "college"})
		s.Require().Error(err)
		s.True(domainerrors.HasCode(err, domainerrors.CodeNotFound))
	})

	s.Run("defaults setup status to in progress", func() {
		saved, err := s.service.Save(s.ctx, s.consortiumID, models.Tenant{ID: "college", Name: "College"})
		s.Require().NoError(err)
		s.Equal(models.SetupInProgress, saved.SetupStatus)
		s.Equal(s.consortiumID, saved.ConsortiumID)
	})

	s.Run("rejects duplicate tenant id", func() {
		_, err := s.service.Save(s.ctx, s.consortiumID, models.Tenant{ID: "college", Name: "College"})
		s.Require().Error(err)
		s.True(domainerrors.HasCode(err, domainerrors.CodeAlreadyExists))
	})

	s.Run("rejects empty tenant id", func() {
		_, err := s.service.Save(s.ctx, s.consortiumID, models.Tenant{Name: "Anonymous"})
		s.Require().Error(err)
		s.True(domainerrors.HasCode(err, domainerrors.CodeValidation))
	})
}

func (s *TenantServiceSuite) TestCentralTenantLookup() {
	s.Run("not configured without a central tenant", func() {
		_, err := s.service.GetCentralTenantID(s.ctx)
		s.Require().Error(err)
		s.True(domainerrors.HasCode(err, domainerrors.CodeNotFound))
		s.Contains(err.Error(), "central tenant is not configured")
	})

	s.Run("resolves the hub once registered", func() {
		_, err := s.service.Save(s.ctx, s.consortiumID, models.Tenant{ID: "mobius", Name: "Hub", IsCentral: true})
		s.Require().NoError(err)

		centralTenantID, err := s.service.GetCentralTenantID(s.ctx)
		s.Require().NoError(err)
		s.Equal("mobius", centralTenantID)
	})
}

func (s *TenantServiceSuite) TestSetupStatusBookkeeping() {
	saved, err := s.service.Save(s.ctx, s.consortiumID, models.Tenant{ID: "college", Name: "College"})
	s.Require().NoError(err)
	s.Equal(models.SetupInProgress, saved.SetupStatus)

	s.service.UpdateSetupStatus(s.ctx, "college", models.SetupCompleted)

	got, err := s.service.GetByID(s.ctx, "college")
	s.Require().NoError(err)
	s.Equal(models.SetupCompleted, got.SetupStatus)
}

func (s *TenantServiceSuite) TestGetAll() {
	_, err := s.service.Save(s.ctx, s.consortiumID, models.Tenant{ID: "mobius", Name: "Hub", IsCentral: true})
	s.Require().NoError(err)
	_, err = s.service.Save(s.ctx, s.consortiumID, models.Tenant{ID: "college", Name: "College"})
	s.Require().NoError(err)

	collection, err := s.service.GetAll(s.ctx, s.consortiumID)
	s.Require().NoError(err)
	s.Equal(2, collection.TotalRecords)
}
