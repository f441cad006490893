// Package listener reacts to user lifecycle events from member tenants,
// keeping affiliations in step with user creation and deletion.
package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	consortiummodels "github.com/dmytrokrutii/mod-consortia/internal/consortium/models"
	"github.com/dmytrokrutii/mod-consortia/internal/events"
	"github.com/dmytrokrutii/mod-consortia/internal/platform/kafka"
	usertenantmodels "github.com/dmytrokrutii/mod-consortia/internal/usertenant/models"
	domainerrors "github.com/dmytrokrutii/mod-consortia/pkg/domain-errors"
)

const tenantHeader = "X-Okapi-Tenant"

// ConsortiumReader lists registered consortia.
type ConsortiumReader interface {
	GetAll(ctx context.Context) (consortiummodels.Collection, error)
}

// TenantReader identifies the hub tenant.
type TenantReader interface {
	GetCentralTenantID(ctx context.Context) (string, error)
}

// Associations is the affiliation surface the listener drives.
type Associations interface {
	GetByUsernameAndTenantID(ctx context.Context, consortiumID uuid.UUID, username, tenantID string) (usertenantmodels.Collection, error)
	CreatePrimaryAffiliation(ctx context.Context, tenantID string, userID uuid.UUID, username string) (usertenantmodels.UserTenant, error)
	CreateShadowAffiliation(ctx context.Context, tenantID string, userID uuid.UUID, username string) (usertenantmodels.UserTenant, error)
	Delete(ctx context.Context, consortiumID uuid.UUID, userID uuid.UUID, tenantID string) error
}

// EventEmitter announces affiliation changes.
type EventEmitter interface {
	PrimaryAffiliationCreated(ctx context.Context, event events.PrimaryAffiliationEvent) error
	PrimaryAffiliationDeleted(ctx context.Context, event events.PrimaryAffiliationEvent) error
}

// Listener holds the shared dependencies of both topic handlers.
type Listener struct {
	consortia    ConsortiumReader
	tenants      TenantReader
	associations Associations
	emitter      EventEmitter
	logger       *slog.Logger
}

func New(consortia ConsortiumReader, tenants TenantReader, associations Associations, emitter EventEmitter, logger *slog.Logger) *Listener {
	return &Listener{
		consortia:    consortia,
		tenants:      tenants,
		associations: associations,
		emitter:      emitter,
		logger:       logger,
	}
}

// Register attaches both handlers to the router under env-resolved topics.
func (l *Listener) Register(router *kafka.Router, topics events.Topics) {
	router.Register(topics.For(events.UserCreated), &UserCreatedHandler{l})
	router.Register(topics.For(events.UserDeleted), &UserDeletedHandler{l})
}

// scope resolves the consortium and central tenant, or reports that the
// service is not yet configured. Until a consortium with a central tenant
// exists, user events are acknowledged and dropped.
func (l *Listener) scope(ctx context.Context) (uuid.UUID, string, bool, error) {
	consortia, err := l.consortia.GetAll(ctx)
	if err != nil {
		return uuid.Nil, "", false, err
	}
	if len(consortia.Consortia) == 0 {
		return uuid.Nil, "", false, nil
	}
	centralTenantID, err := l.tenants.GetCentralTenantID(ctx)
	if err != nil {
		if domainerrors.HasCode(err, domainerrors.CodeNotFound) {
			return uuid.Nil, "", false, nil
		}
		return uuid.Nil, "", false, err
	}
	return consortia.Consortia[0].ID, centralTenantID, true, nil
}

func decodeUserEvent(msg *kafka.Message) (events.UserEvent, error) {
	var event events.UserEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return events.UserEvent{}, fmt.Errorf("decode user event: %w", err)
	}
	if event.TenantID == "" {
		event.TenantID = msg.Headers[tenantHeader]
	}
	if event.TenantID == "" {
		return events.UserEvent{}, fmt.Errorf("user event for user [%s] carries no tenant", event.UserID)
	}
	return event, nil
}

// UserCreatedHandler affiliates a freshly created member-tenant user.
type UserCreatedHandler struct {
	*Listener
}

func (h *UserCreatedHandler) Handle(ctx context.Context, msg *kafka.Message) error {
	consortiumID, centralTenantID, configured, err := h.scope(ctx)
	if err != nil {
		return err
	}
	if !configured {
		return nil
	}

	event, err := decodeUserEvent(msg)
	if err != nil {
		return err
	}

	if _, err := h.associations.GetByUsernameAndTenantID(ctx, consortiumID, event.Username, event.TenantID); err == nil {
		h.logger.Debug("affiliation already exists, skipping", "userId", event.UserID, "tenantId", event.TenantID)
		return nil
	} else if !domainerrors.HasCode(err, domainerrors.CodeNotFound) {
		return err
	}

	if _, err := h.associations.CreatePrimaryAffiliation(ctx, event.TenantID, event.UserID, event.Username); err != nil {
		return err
	}
	if event.TenantID != centralTenantID {
		if _, err := h.associations.CreateShadowAffiliation(ctx, centralTenantID, event.UserID, event.Username); err != nil {
			return err
		}
	}

	out := events.PrimaryAffiliationEvent{
		ID:              uuid.New(),
		UserID:          event.UserID,
		Username:        event.Username,
		TenantID:        event.TenantID,
		CentralTenantID: centralTenantID,
		ConsortiumID:    consortiumID,
	}
	if err := h.emitter.PrimaryAffiliationCreated(ctx, out); err != nil {
		h.logger.Warn("failed to emit affiliation event", "userId", event.UserID, "error", err)
	}
	h.logger.Info("primary affiliation created from user event", "userId", event.UserID, "tenantId", event.TenantID)
	return nil
}

// UserDeletedHandler withdraws the primary affiliation of a deleted user.
type UserDeletedHandler struct {
	*Listener
}

func (h *UserDeletedHandler) Handle(ctx context.Context, msg *kafka.Message) error {
	consortiumID, centralTenantID, configured, err := h.scope(ctx)
	if err != nil {
		return err
	}
	if !configured {
		return nil
	}

	event, err := decodeUserEvent(msg)
	if err != nil {
		return err
	}

	existing, err := h.associations.GetByUsernameAndTenantID(ctx, consortiumID, event.Username, event.TenantID)
	if err != nil {
		if domainerrors.HasCode(err, domainerrors.CodeNotFound) {
			h.logger.Debug("no affiliation to delete", "userId", event.UserID, "tenantId", event.TenantID)
			return nil
		}
		return err
	}
	association := existing.UserTenants[0]

	if err := h.associations.Delete(ctx, consortiumID, association.UserID, association.TenantID); err != nil {
		return err
	}

	out := events.PrimaryAffiliationEvent{
		ID:              uuid.New(),
		UserID:          association.UserID,
		Username:        association.Username,
		TenantID:        association.TenantID,
		CentralTenantID: centralTenantID,
		ConsortiumID:    consortiumID,
	}
	if err := h.emitter.PrimaryAffiliationDeleted(ctx, out); err != nil {
		h.logger.Warn("failed to emit affiliation event", "userId", association.UserID, "error", err)
	}
	h.logger.Info("primary affiliation deleted from user event", "userId", association.UserID, "tenantId", association.TenantID)
	return nil
}
