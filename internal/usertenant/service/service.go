// Package service manages user↔tenant associations: the paged query API and
// the affiliation primitives the sync engine builds on.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	tenantservice "github.com/dmytrokrutii/mod-consortia/internal/tenant/service"
	"github.com/dmytrokrutii/mod-consortia/internal/usertenant/models"
	"github.com/dmytrokrutii/mod-consortia/internal/usertenant/store"
	domainerrors "github.com/dmytrokrutii/mod-consortia/pkg/domain-errors"
	"github.com/dmytrokrutii/mod-consortia/pkg/paging"
	"github.com/dmytrokrutii/mod-consortia/pkg/platform/sentinel"
)

// ConsortiumChecker validates consortium existence before association reads.
type ConsortiumChecker interface {
	CheckExists(ctx context.Context, consortiumID uuid.UUID) error
}

// TenantGetter resolves tenants referenced by associations.
type TenantGetter interface {
	CheckExists(ctx context.Context, tenantID string) error
}

var _ TenantGetter = (*tenantservice.Service)(nil)

type Service struct {
	associations store.Store
	consortium   ConsortiumChecker
	tenants      TenantGetter
	logger       *slog.Logger
}

func New(associations store.Store, consortium ConsortiumChecker, tenants TenantGetter, logger *slog.Logger) *Service {
	return &Service{associations: associations, consortium: consortium, tenants: tenants, logger: logger}
}

// Get returns the paged association collection.
func (s *Service) Get(ctx context.Context, consortiumID uuid.UUID, page paging.Page) (models.Collection, error) {
	if err := s.consortium.CheckExists(ctx, consortiumID); err != nil {
		return models.Collection{}, err
	}
	rows, total, err := s.associations.FindAll(ctx, page)
	if err != nil {
		return models.Collection{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to list user tenants")
	}
	return models.Collection{UserTenants: rows, TotalRecords: total}, nil
}

// GetByUserID returns every association the user holds.
func (s *Service) GetByUserID(ctx context.Context, consortiumID uuid.UUID, userID uuid.UUID, page paging.Page) (models.Collection, error) {
	if err := s.consortium.CheckExists(ctx, consortiumID); err != nil {
		return models.Collection{}, err
	}
	rows, total, err := s.associations.FindByUserID(ctx, userID, page)
	if err != nil {
		return models.Collection{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to list user tenants")
	}
	if total == 0 {
		return models.Collection{}, domainerrors.Newf(domainerrors.CodeNotFound, "associations for user [%s] were not found", userID)
	}
	return models.Collection{UserTenants: rows, TotalRecords: total}, nil
}

// GetByUsernameAndTenantID returns the single association matching the pair.
func (s *Service) GetByUsernameAndTenantID(ctx context.Context, consortiumID uuid.UUID, username, tenantID string) (models.Collection, error) {
	if err := s.consortium.CheckExists(ctx, consortiumID); err != nil {
		return models.Collection{}, err
	}
	association, err := s.associations.FindByUsernameAndTenantID(ctx, username, tenantID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Collection{}, domainerrors.Newf(domainerrors.CodeNotFound, "association for username [%s] in tenant [%s] was not found", username, tenantID)
		}
		return models.Collection{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "association lookup failed")
	}
	return models.Collection{UserTenants: []models.UserTenant{association}, TotalRecords: 1}, nil
}

// GetByID returns a single association row.
func (s *Service) GetByID(ctx context.Context, consortiumID uuid.UUID, id uuid.UUID) (models.UserTenant, error) {
	if err := s.consortium.CheckExists(ctx, consortiumID); err != nil {
		return models.UserTenant{}, err
	}
	association, err := s.associations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.UserTenant{}, domainerrors.Newf(domainerrors.CodeNotFound, "association with id [%s] was not found", id)
		}
		return models.UserTenant{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "association lookup failed")
	}
	return association, nil
}

// Save creates an association. The (userId, tenantId) pair is unique; the
// tenant must already be a roster member.
func (s *Service) Save(ctx context.Context, consortiumID uuid.UUID, association models.UserTenant) (models.UserTenant, error) {
	if err := s.consortium.CheckExists(ctx, consortiumID); err != nil {
		return models.UserTenant{}, err
	}
	if association.UserID == uuid.Nil || association.TenantID == "" {
		return models.UserTenant{}, domainerrors.New(domainerrors.CodeValidation, "userId and tenantId are required")
	}
	if err := s.tenants.CheckExists(ctx, association.TenantID); err != nil {
		return models.UserTenant{}, err
	}
	if association.ID == uuid.Nil {
		association.ID = uuid.New()
	}
	if err := s.associations.Insert(ctx, association); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return models.UserTenant{}, domainerrors.Newf(domainerrors.CodeAlreadyExists, "user [%s] is already associated with tenant [%s]", association.UserID, association.TenantID)
		}
		return models.UserTenant{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to save association")
	}
	s.logger.Info("user tenant association created",
		"associationId", association.ID,
		"userId", association.UserID,
		"tenantId", association.TenantID,
		"isPrimary", association.IsPrimary,
	)
	return association, nil
}

// Delete removes the association for the user/tenant pair.
func (s *Service) Delete(ctx context.Context, consortiumID uuid.UUID, userID uuid.UUID, tenantID string) error {
	if err := s.consortium.CheckExists(ctx, consortiumID); err != nil {
		return err
	}
	if err := s.tenants.CheckExists(ctx, tenantID); err != nil {
		return err
	}
	if err := s.associations.DeleteByUserIDAndTenantID(ctx, userID, tenantID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domainerrors.Newf(domainerrors.CodeNotFound, "association for user [%s] in tenant [%s] was not found", userID, tenantID)
		}
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to delete association")
	}
	s.logger.Info("user tenant association deleted", "userId", userID, "tenantId", tenantID)
	return nil
}

// HasAnyAssociation reports whether the user holds an association anywhere in
// the consortium. The sync engine uses it as its idempotence guard.
func (s *Service) HasAnyAssociation(ctx context.Context, userID uuid.UUID) (bool, error) {
	_, total, err := s.associations.FindByUserID(ctx, userID, paging.Page{Offset: 0, Limit: 1})
	if err != nil {
		return false, domainerrors.Wrap(err, domainerrors.CodeInternal, "association lookup failed")
	}
	return total > 0, nil
}

// CreatePrimaryAffiliation inserts the user's home-tenant association.
func (s *Service) CreatePrimaryAffiliation(ctx context.Context, tenantID string, userID uuid.UUID, username string) (models.UserTenant, error) {
	return s.insertAffiliation(ctx, tenantID, userID, username, true)
}

// CreateShadowAffiliation inserts the non-primary central-tenant mirror of a
// member tenant's primary affiliation.
func (s *Service) CreateShadowAffiliation(ctx context.Context, tenantID string, userID uuid.UUID, username string) (models.UserTenant, error) {
	return s.insertAffiliation(ctx, tenantID, userID, username, false)
}

func (s *Service) insertAffiliation(ctx context.Context, tenantID string, userID uuid.UUID, username string, primary bool) (models.UserTenant, error) {
	association := models.UserTenant{
		ID:        uuid.New(),
		UserID:    userID,
		Username:  username,
		TenantID:  tenantID,
		IsPrimary: primary,
	}
	if err := s.associations.Insert(ctx, association); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return models.UserTenant{}, domainerrors.Newf(domainerrors.CodeAlreadyExists, "user [%s] is already associated with tenant [%s]", userID, tenantID)
		}
		return models.UserTenant{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to save affiliation")
	}
	return association, nil
}
