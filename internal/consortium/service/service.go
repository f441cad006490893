// Package service implements the consortium registry: the singleton federation
// record every cross-tenant operation validates against.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/dmytrokrutii/mod-consortia/internal/consortium/models"
	"github.com/dmytrokrutii/mod-consortia/internal/consortium/store"
	domainerrors "github.com/dmytrokrutii/mod-consortia/pkg/domain-errors"
	"github.com/dmytrokrutii/mod-consortia/pkg/platform/sentinel"
)

// Service guards the single-consortium invariant and answers existence checks
// for every higher-level orchestrator.
type Service struct {
	consortia store.Store
	logger    *slog.Logger
}

func New(consortia store.Store, logger *slog.Logger) *Service {
	return &Service{consortia: consortia, logger: logger}
}

// Save inserts the consortium. It is prohibited to have more than one row:
// a count check before insert enforces the singleton invariant.
func (s *Service) Save(ctx context.Context, consortium models.Consortium) (models.Consortium, error) {
	if strings.TrimSpace(consortium.Name) == "" {
		return models.Consortium{}, domainerrors.New(domainerrors.CodeValidation, "consortium name is required")
	}

	count, err := s.consortia.Count(ctx)
	if err != nil {
		return models.Consortium{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to count consortia")
	}
	if count > 0 {
		return models.Consortium{}, domainerrors.New(domainerrors.CodeAlreadyExists, "system can not have more than one consortium record")
	}

	if err := s.consortia.Insert(ctx, consortium); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return models.Consortium{}, domainerrors.New(domainerrors.CodeAlreadyExists, "system can not have more than one consortium record")
		}
		return models.Consortium{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to save consortium")
	}

	s.logger.Info("consortium created", "consortiumId", consortium.ID, "name", consortium.Name)
	return consortium, nil
}

// Get returns the consortium with the given id.
func (s *Service) Get(ctx context.Context, consortiumID uuid.UUID) (models.Consortium, error) {
	consortium, err := s.consortia.FindByID(ctx, consortiumID)
	if err != nil {
		return models.Consortium{}, wrapLookupErr(err, consortiumID)
	}
	return consortium, nil
}

// Update renames the consortium. The path id must match the payload id.
func (s *Service) Update(ctx context.Context, consortiumID uuid.UUID, consortium models.Consortium) (models.Consortium, error) {
	if consortiumID != consortium.ID {
		return models.Consortium{}, domainerrors.New(domainerrors.CodeValidation, "request id and payload id do not match")
	}
	if err := s.consortia.Update(ctx, consortium); err != nil {
		return models.Consortium{}, wrapLookupErr(err, consortiumID)
	}
	s.logger.Info("consortium updated", "consortiumId", consortium.ID, "name", consortium.Name)
	return consortium, nil
}

// GetAll returns the consortium collection. By design it contains at most one
// record; the query is capped accordingly.
func (s *Service) GetAll(ctx context.Context) (models.Collection, error) {
	consortia, err := s.consortia.FindAll(ctx, 1)
	if err != nil {
		return models.Collection{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to list consortia")
	}
	return models.Collection{Consortia: consortia, TotalRecords: len(consortia)}, nil
}

// CheckExists validates the consortium exists, returning the NotFound domain
// error otherwise. Called by every orchestrator before touching tenant data.
func (s *Service) CheckExists(ctx context.Context, consortiumID uuid.UUID) error {
	_, err := s.consortia.FindByID(ctx, consortiumID)
	if err != nil {
		return wrapLookupErr(err, consortiumID)
	}
	return nil
}

func wrapLookupErr(err error, consortiumID uuid.UUID) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return domainerrors.Newf(domainerrors.CodeNotFound, "consortium with id [%s] was not found", consortiumID)
	}
	return domainerrors.Wrap(err, domainerrors.CodeInternal, "consortium lookup failed")
}
