// Package service exposes the member-tenant roster: existence checks, the
// central-tenant lookup every sharing operation depends on, and the setup
// status bookkeeping used by the affiliation sync engine.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmytrokrutii/mod-consortia/internal/tenant/models"
	"github.com/dmytrokrutii/mod-consortia/internal/tenant/store"
	domainerrors "github.com/dmytrokrutii/mod-consortia/pkg/domain-errors"
	"github.com/dmytrokrutii/mod-consortia/pkg/platform/sentinel"
)

// ConsortiumChecker validates consortium existence before roster mutations.
type ConsortiumChecker interface {
	CheckExists(ctx context.Context, consortiumID uuid.UUID) error
}

type Service struct {
	tenants    store.Store
	consortium ConsortiumChecker
	logger     *slog.Logger
}

func New(tenants store.Store, consortium ConsortiumChecker, logger *slog.Logger) *Service {
	return &Service{tenants: tenants, consortium: consortium, logger: logger}
}

// Save adds a tenant to the consortium roster.
func (s *Service) Save(ctx context.Context, consortiumID uuid.UUID, tenant models.Tenant) (models.Tenant, error) {
	if tenant.ID == "" {
		return models.Tenant{}, domainerrors.New(domainerrors.CodeValidation, "tenant id is required")
	}
	if err := s.consortium.CheckExists(ctx, consortiumID); err != nil {
		return models.Tenant{}, err
	}
	tenant.ConsortiumID = consortiumID
	if tenant.SetupStatus == "" {
		tenant.SetupStatus = models.SetupInProgress
	}
	if err := s.tenants.Insert(ctx, tenant); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return models.Tenant{}, domainerrors.Newf(domainerrors.CodeAlreadyExists, "tenant with id [%s] already exists", tenant.ID)
		}
		return models.Tenant{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to save tenant")
	}
	s.logger.Info("tenant joined consortium", "tenantId", tenant.ID, "consortiumId", consortiumID, "isCentral", tenant.IsCentral)
	return tenant, nil
}

// GetByID returns the tenant with the given code.
func (s *Service) GetByID(ctx context.Context, tenantID string) (models.Tenant, error) {
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return models.Tenant{}, wrapTenantErr(err, tenantID)
	}
	return tenant, nil
}

// GetAll returns the full member roster for the consortium.
func (s *Service) GetAll(ctx context.Context, consortiumID uuid.UUID) (models.Collection, error) {
	if err := s.consortium.CheckExists(ctx, consortiumID); err != nil {
		return models.Collection{}, err
	}
	tenants, err := s.tenants.FindAll(ctx)
	if err != nil {
		return models.Collection{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to list tenants")
	}
	return models.Collection{Tenants: tenants, TotalRecords: len(tenants)}, nil
}

// CheckExists validates the tenant exists in the roster.
func (s *Service) CheckExists(ctx context.Context, tenantID string) error {
	if _, err := s.tenants.FindByID(ctx, tenantID); err != nil {
		return wrapTenantErr(err, tenantID)
	}
	return nil
}

// GetCentralTenantID resolves the coordinating tenant. Deployments hosting
// standalone tenants have no central tenant registered; callers treat the
// NotFound error as "not a consortium member".
func (s *Service) GetCentralTenantID(ctx context.Context) (string, error) {
	central, err := s.tenants.FindCentral(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", domainerrors.New(domainerrors.CodeNotFound, "central tenant is not configured")
		}
		return "", domainerrors.Wrap(err, domainerrors.CodeInternal, "central tenant lookup failed")
	}
	return central.ID, nil
}

// UpdateSetupStatus records the tenant's affiliation setup outcome.
func (s *Service) UpdateSetupStatus(ctx context.Context, tenantID string, status models.SetupStatus) {
	if err := s.tenants.SetSetupStatus(ctx, tenantID, status); err != nil {
		// Status bookkeeping must never mask the operation's own outcome.
		s.logger.Error("failed to update tenant setup status", "tenantId", tenantID, "status", status, "error", err)
		return
	}
	s.logger.Info("tenant setup status updated", "tenantId", tenantID, "status", status)
}

func wrapTenantErr(err error, tenantID string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return domainerrors.Newf(domainerrors.CodeNotFound, "tenant with id [%s] was not found", tenantID)
	}
	return domainerrors.Wrap(err, domainerrors.CodeInternal, "tenant lookup failed")
}
