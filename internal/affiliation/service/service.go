// Package service implements the primary affiliation sync engine: capturing a
// member tenant's user roster and creating home plus central-shadow
// associations for every user, exactly once.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dmytrokrutii/mod-consortia/internal/affiliation/lock"
	"github.com/dmytrokrutii/mod-consortia/internal/affiliation/models"
	"github.com/dmytrokrutii/mod-consortia/internal/client"
	"github.com/dmytrokrutii/mod-consortia/internal/events"
	"github.com/dmytrokrutii/mod-consortia/internal/platform/metrics"
	tenantmodels "github.com/dmytrokrutii/mod-consortia/internal/tenant/models"
	usertenantmodels "github.com/dmytrokrutii/mod-consortia/internal/usertenant/models"
	domainerrors "github.com/dmytrokrutii/mod-consortia/pkg/domain-errors"
	"github.com/dmytrokrutii/mod-consortia/pkg/platform/sentinel"
	"github.com/dmytrokrutii/mod-consortia/pkg/platform/tx"
	"github.com/dmytrokrutii/mod-consortia/pkg/requestcontext"
)

const (
	lockRetries    = 10
	lockRetryDelay = 500 * time.Millisecond
)

// UserReader fetches the full user roster of whichever tenant the context is
// scoped to.
type UserReader interface {
	GetAll(ctx context.Context) ([]client.User, error)
}

// SyncDispatcher hands a captured roster to the affiliation creation step.
type SyncDispatcher interface {
	SavePrimaryAffiliations(ctx context.Context, consortiumID uuid.UUID, body models.SyncPrimaryAffiliationsBody) error
}

// Associations is the affiliation surface of the user-tenant service.
type Associations interface {
	HasAnyAssociation(ctx context.Context, userID uuid.UUID) (bool, error)
	CreatePrimaryAffiliation(ctx context.Context, tenantID string, userID uuid.UUID, username string) (usertenantmodels.UserTenant, error)
	CreateShadowAffiliation(ctx context.Context, tenantID string, userID uuid.UUID, username string) (usertenantmodels.UserTenant, error)
}

// TenantStatus records tenant setup progress.
type TenantStatus interface {
	UpdateSetupStatus(ctx context.Context, tenantID string, status tenantmodels.SetupStatus)
}

// EventEmitter announces affiliation changes.
type EventEmitter interface {
	PrimaryAffiliationCreated(ctx context.Context, event events.PrimaryAffiliationEvent) error
}

type Service struct {
	users        UserReader
	dispatcher   SyncDispatcher
	associations Associations
	tenants      TenantStatus
	emitter      EventEmitter
	locker       lock.Locker
	txr          tx.Transactor
	metrics      *metrics.Metrics
	logger       *slog.Logger

	lockRetries    int
	lockRetryDelay time.Duration
}

func New(users UserReader, dispatcher SyncDispatcher, associations Associations, tenants TenantStatus, emitter EventEmitter, locker lock.Locker, txr tx.Transactor, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		users:        users,
		dispatcher:   dispatcher,
		associations: associations,
		tenants:      tenants,
		emitter:      emitter,
		locker:       locker,
		txr:          txr,
		metrics:      m,
		logger:       logger,

		lockRetries:    lockRetries,
		lockRetryDelay: lockRetryDelay,
	}
}

// SyncPrimaryAffiliations captures the tenant's user roster and dispatches it
// to the creation step. Either failure marks the tenant FAILED and surfaces
// the error; nothing is retried here, the operation is safe to re-run.
func (s *Service) SyncPrimaryAffiliations(ctx context.Context, consortiumID uuid.UUID, tenantID, centralTenantID string) error {
	ctx, span := otel.Tracer("affiliation").Start(ctx, "Affiliation.Sync")
	defer span.End()
	span.SetAttributes(attribute.String("tenantId", tenantID))

	var users []client.User
	err := requestcontext.RunAsTenant(ctx, tenantID, func(ctx context.Context) error {
		var fetchErr error
		users, fetchErr = s.users.GetAll(ctx)
		return fetchErr
	})
	if err != nil {
		s.logger.Error("failed to fetch users for affiliation sync", "tenantId", tenantID, "error", err)
		s.tenants.UpdateSetupStatus(ctx, tenantID, tenantmodels.SetupFailed)
		return domainerrors.Wrap(err, domainerrors.CodeSetupFailure, "failed to fetch users for affiliation sync")
	}

	body := models.SyncPrimaryAffiliationsBody{
		Users:           make([]models.SyncUser, 0, len(users)),
		TenantID:        tenantID,
		CentralTenantID: centralTenantID,
	}
	for _, u := range users {
		userID, err := uuid.Parse(u.ID)
		if err != nil {
			s.logger.Warn("skipping user with malformed id", "tenantId", tenantID, "userId", u.ID)
			continue
		}
		body.Users = append(body.Users, models.SyncUser{
			ID:                userID,
			Username:          u.Username,
			Email:             u.Personal.Email,
			PhoneNumber:       u.Personal.Phone,
			MobilePhoneNumber: u.Personal.MobilePhone,
			Barcode:           u.Barcode,
			ExternalSystemID:  u.ExternalSystemID,
		})
	}

	if err := s.dispatcher.SavePrimaryAffiliations(ctx, consortiumID, body); err != nil {
		s.logger.Error("failed to dispatch affiliation creation", "tenantId", tenantID, "error", err)
		s.tenants.UpdateSetupStatus(ctx, tenantID, tenantmodels.SetupFailed)
		return domainerrors.Wrap(err, domainerrors.CodeSetupFailure, "failed to dispatch affiliation creation")
	}

	s.logger.Info("affiliation sync dispatched", "tenantId", tenantID, "users", len(body.Users))
	return nil
}

// CreatePrimaryUserAffiliations walks the captured roster sequentially and
// affiliates each user: a primary association on the home tenant plus, for
// member tenants, a non-primary shadow on the central tenant. Users that
// already hold any association are skipped, so re-running after a partial
// failure only processes the remainder. Per-user failures are counted, not
// fatal; the tenant ends up COMPLETED or COMPLETED_WITH_ERRORS.
//
// A single distributed lock serializes setup across service instances:
// setups for different tenants contend on it too, so two rosters never
// interleave their batch inserts.
func (s *Service) CreatePrimaryUserAffiliations(ctx context.Context, consortiumID uuid.UUID, body models.SyncPrimaryAffiliationsBody) error {
	ctx, span := otel.Tracer("affiliation").Start(ctx, "Affiliation.Create")
	defer span.End()
	span.SetAttributes(attribute.String("tenantId", body.TenantID), attribute.Int("users", len(body.Users)))

	release, err := s.acquireLock(ctx)
	if err != nil {
		// Contention leaves the status to the setup that owns the lock;
		// anything else is this setup's own failure.
		if !domainerrors.HasCode(err, domainerrors.CodeAlreadyExists) {
			s.tenants.UpdateSetupStatus(ctx, body.TenantID, tenantmodels.SetupFailed)
		}
		return err
	}
	defer func() {
		if err := release(ctx); err != nil {
			s.logger.Warn("failed to release tenant setup lock", "tenantId", body.TenantID, "error", err)
		}
	}()

	var affiliated, failed int
	for _, user := range body.Users {
		if err := s.affiliateUser(ctx, consortiumID, body, user); err != nil {
			failed++
			s.metrics.AffiliationFailures.Inc()
			s.logger.Error("failed to affiliate user",
				"tenantId", body.TenantID, "userId", user.ID, "error", err)
			continue
		}
		affiliated++
	}

	status := tenantmodels.SetupCompleted
	if failed > 0 {
		status = tenantmodels.SetupCompletedWithErrors
	}
	s.tenants.UpdateSetupStatus(ctx, body.TenantID, status)
	s.metrics.SyncBatchesProcessed.Inc()

	s.logger.Info("primary affiliations created",
		"tenantId", body.TenantID, "affiliated", affiliated, "failed", failed, "status", status)
	return nil
}

func (s *Service) affiliateUser(ctx context.Context, consortiumID uuid.UUID, body models.SyncPrimaryAffiliationsBody, user models.SyncUser) error {
	exists, err := s.associations.HasAnyAssociation(ctx, user.ID)
	if err != nil {
		return err
	}
	if exists {
		s.logger.Debug("user already affiliated, skipping", "userId", user.ID, "tenantId", body.TenantID)
		return nil
	}

	// The primary and its hub shadow land together or not at all.
	err = s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.associations.CreatePrimaryAffiliation(ctx, body.TenantID, user.ID, user.Username); err != nil {
			return err
		}
		if body.TenantID != body.CentralTenantID {
			if _, err := s.associations.CreateShadowAffiliation(ctx, body.CentralTenantID, user.ID, user.Username); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.AffiliationsCreated.Inc()

	event := events.PrimaryAffiliationEvent{
		ID:                uuid.New(),
		UserID:            user.ID,
		Username:          user.Username,
		TenantID:          body.TenantID,
		CentralTenantID:   body.CentralTenantID,
		ConsortiumID:      consortiumID,
		Email:             user.Email,
		PhoneNumber:       user.PhoneNumber,
		MobilePhoneNumber: user.MobilePhoneNumber,
		Barcode:           user.Barcode,
		ExternalSystemID:  user.ExternalSystemID,
	}
	if err := s.emitter.PrimaryAffiliationCreated(ctx, event); err != nil {
		// The association exists; a lost event is logged, not rolled back.
		s.logger.Warn("failed to emit affiliation event", "userId", user.ID, "error", err)
	}
	return nil
}

func (s *Service) acquireLock(ctx context.Context) (func(context.Context) error, error) {
	for attempt := 0; ; attempt++ {
		release, err := s.locker.Acquire(ctx)
		if err == nil {
			return release, nil
		}
		if !errors.Is(err, sentinel.ErrLockHeld) {
			return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to acquire tenant setup lock")
		}
		if attempt >= s.lockRetries {
			return nil, domainerrors.New(domainerrors.CodeAlreadyExists, "a tenant setup is already in progress")
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.lockRetryDelay):
		}
	}
}
