// Package service implements the instance sharing orchestrator: a state
// machine that propagates one inventory instance from a source tenant to a
// target tenant and records the outcome as an append-only attempt row.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dmytrokrutii/mod-consortia/internal/platform/metrics"
	"github.com/dmytrokrutii/mod-consortia/internal/sharing/instance/models"
	"github.com/dmytrokrutii/mod-consortia/internal/sharing/instance/store"
	domainerrors "github.com/dmytrokrutii/mod-consortia/pkg/domain-errors"
	"github.com/dmytrokrutii/mod-consortia/pkg/paging"
	"github.com/dmytrokrutii/mod-consortia/pkg/platform/sentinel"
	"github.com/dmytrokrutii/mod-consortia/pkg/requestcontext"
)

// Provenance markers written into the copied instance's source attribute so
// downstream consumers can tell a shared record from a locally created one.
const (
	folioSourceValue = "folio"
	consortiumFolio  = "CONSORTIUM-FOLIO"
	consortiumMarc   = "CONSORTIUM-MARC"

	getInstanceErrFmt  = "Failed to get inventory instance with reason: %s"
	postInstanceErrFmt = "Failed to post inventory instance with reason: %s"
)

// InventoryClient is the per-tenant resource service. Calls must run under a
// context already switched to the owning tenant.
type InventoryClient interface {
	GetByID(ctx context.Context, instanceID uuid.UUID) (map[string]any, error)
	Save(ctx context.Context, instance map[string]any) error
}

// ConsortiumChecker validates consortium existence.
type ConsortiumChecker interface {
	CheckExists(ctx context.Context, consortiumID uuid.UUID) error
}

// TenantRegistry answers tenant existence and central-tenant queries.
type TenantRegistry interface {
	CheckExists(ctx context.Context, tenantID string) error
	GetCentralTenantID(ctx context.Context) (string, error)
}

type Service struct {
	attempts   store.Store
	consortium ConsortiumChecker
	tenants    TenantRegistry
	inventory  InventoryClient
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func New(attempts store.Store, consortium ConsortiumChecker, tenants TenantRegistry, inventory InventoryClient, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		attempts:   attempts,
		consortium: consortium,
		tenants:    tenants,
		inventory:  inventory,
		metrics:    m,
		logger:     logger,
	}
}

// Start runs one sharing attempt.
//
// Exactly one of source/target must be the central tenant (star topology).
// When the central tenant is the source, the copy happens synchronously here:
// fetch under the source tenant's context, relabel provenance, push under the
// target tenant's context. Upstream failures are terminal attempt states, not
// errors: the attempt is persisted with status ERROR and returned normally so
// callers inspect the status instead of catching an exception.
//
// When the central tenant is the target, no copy happens at this call; the
// attempt stays IN_PROGRESS and a separate process is expected to complete it
// (external-completion contract).
//
// Every call appends a fresh attempt row regardless of outcome.
func (s *Service) Start(ctx context.Context, consortiumID uuid.UUID, request models.SharingInstance) (models.SharingInstance, error) {
	ctx, span := otel.Tracer("sharing/instance").Start(ctx, "SharingInstance.Start")
	defer span.End()
	span.SetAttributes(
		attribute.String("instanceIdentifier", request.InstanceIdentifier.String()),
		attribute.String("sourceTenantId", request.SourceTenantID),
		attribute.String("targetTenantId", request.TargetTenantID),
	)

	if err := s.consortium.CheckExists(ctx, consortiumID); err != nil {
		return models.SharingInstance{}, err
	}
	centralTenantID, err := s.tenants.GetCentralTenantID(ctx)
	if err != nil {
		return models.SharingInstance{}, err
	}
	if err := s.checkTenantPair(ctx, centralTenantID, request.SourceTenantID, request.TargetTenantID); err != nil {
		return models.SharingInstance{}, err
	}

	if centralTenantID == request.SourceTenantID {
		var instance map[string]any
		err := requestcontext.RunAsTenant(ctx, request.SourceTenantID, func(ctx context.Context) error {
			var fetchErr error
			instance, fetchErr = s.inventory.GetByID(ctx, request.InstanceIdentifier)
			return fetchErr
		})
		if err != nil {
			s.logger.Error("failed to get instance", "instanceIdentifier", request.InstanceIdentifier, "error", err)
			return s.recordFailure(ctx, request, getInstanceErrFmt, err)
		}

		instance["source"] = relabelSource(instance["source"])
		err = requestcontext.RunAsTenant(ctx, request.TargetTenantID, func(ctx context.Context) error {
			return s.inventory.Save(ctx, instance)
		})
		if err != nil {
			s.logger.Error("failed to post instance", "instanceIdentifier", request.InstanceIdentifier, "error", err)
			return s.recordFailure(ctx, request, postInstanceErrFmt, err)
		}

		request.Status = models.StatusComplete
	} else {
		request.Status = models.StatusInProgress
	}

	return s.persistAttempt(ctx, request)
}

// GetByID returns one attempt row.
func (s *Service) GetByID(ctx context.Context, consortiumID uuid.UUID, actionID uuid.UUID) (models.SharingInstance, error) {
	if err := s.consortium.CheckExists(ctx, consortiumID); err != nil {
		return models.SharingInstance{}, err
	}
	attempt, err := s.attempts.FindByID(ctx, actionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.SharingInstance{}, domainerrors.Newf(domainerrors.CodeNotFound, "sharing instance with actionId [%s] was not found", actionID)
		}
		return models.SharingInstance{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "sharing instance lookup failed")
	}
	return attempt, nil
}

// GetSharingInstances lists attempts matching the filter, paged.
func (s *Service) GetSharingInstances(ctx context.Context, consortiumID uuid.UUID, filter models.Filter, page paging.Page) (models.Collection, error) {
	if err := s.consortium.CheckExists(ctx, consortiumID); err != nil {
		return models.Collection{}, err
	}
	attempts, total, err := s.attempts.FindAll(ctx, filter, page)
	if err != nil {
		return models.Collection{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to list sharing instances")
	}
	return models.Collection{SharingInstances: attempts, TotalRecords: total}, nil
}

func (s *Service) checkTenantPair(ctx context.Context, centralTenantID, sourceTenantID, targetTenantID string) error {
	if err := s.tenants.CheckExists(ctx, sourceTenantID); err != nil {
		return err
	}
	if err := s.tenants.CheckExists(ctx, targetTenantID); err != nil {
		return err
	}
	// Sharing always touches the hub.
	if centralTenantID == sourceTenantID || centralTenantID == targetTenantID {
		return nil
	}
	return domainerrors.New(domainerrors.CodeValidation, "both 'sourceTenantId' and 'targetTenantId' cannot be member tenants")
}

// recordFailure captures an upstream failure into the attempt and persists it.
// The attempt comes back as a normal result so the caller distinguishes
// "attempt failed" from "request malformed" by status, not by error.
func (s *Service) recordFailure(ctx context.Context, request models.SharingInstance, format string, cause error) (models.SharingInstance, error) {
	request.Status = models.StatusError
	request.Error = fmt.Sprintf(format, upstreamReason(cause))
	return s.persistAttempt(ctx, request)
}

func (s *Service) persistAttempt(ctx context.Context, request models.SharingInstance) (models.SharingInstance, error) {
	request.ID = uuid.New()
	if err := s.attempts.Insert(ctx, request); err != nil {
		return models.SharingInstance{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to save sharing instance")
	}
	s.metrics.ObserveSharingAttempt(string(request.Status))
	s.logger.Info("sharing instance saved",
		"id", request.ID,
		"instanceIdentifier", request.InstanceIdentifier,
		"sourceTenantId", request.SourceTenantID,
		"targetTenantId", request.TargetTenantID,
		"status", request.Status,
	)
	return request, nil
}

// relabelSource rewrites the instance's provenance: FOLIO-native records become
// CONSORTIUM-FOLIO, everything else (MARC-native) becomes CONSORTIUM-MARC.
func relabelSource(source any) string {
	if value, ok := source.(string); ok && strings.EqualFold(value, folioSourceValue) {
		return consortiumFolio
	}
	return consortiumMarc
}

// upstreamReason extracts the reason string carried by an upstream call
// failure, falling back to the error text.
func upstreamReason(err error) string {
	var de *domainerrors.Error
	if errors.As(err, &de) && de.Code == domainerrors.CodeUpstream {
		return de.Message
	}
	return err.Error()
}
