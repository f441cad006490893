// Package handler exposes the affiliation sync endpoints over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmytrokrutii/mod-consortia/internal/affiliation/models"
	"github.com/dmytrokrutii/mod-consortia/internal/transport/http/shared"
	domainerrors "github.com/dmytrokrutii/mod-consortia/pkg/domain-errors"
)

// Service defines the interface for affiliation sync operations.
type Service interface {
	SyncPrimaryAffiliations(ctx context.Context, consortiumID uuid.UUID, tenantID, centralTenantID string) error
	CreatePrimaryUserAffiliations(ctx context.Context, consortiumID uuid.UUID, body models.SyncPrimaryAffiliationsBody) error
}

// CentralResolver identifies the hub tenant.
type CentralResolver interface {
	GetCentralTenantID(ctx context.Context) (string, error)
}

type Handler struct {
	affiliations Service
	tenants      CentralResolver
	logger       *slog.Logger
}

func New(affiliations Service, tenants CentralResolver, logger *slog.Logger) *Handler {
	return &Handler{affiliations: affiliations, tenants: tenants, logger: logger}
}

// Register wires the affiliation routes relative to /consortia.
func (h *Handler) Register(r chi.Router) {
	r.Post("/{consortiumId}/tenants/{tenantId}/sync-primary-affiliations", h.handleSync)
	r.Post("/{consortiumId}/tenants/{tenantId}/create-primary-affiliations", h.handleCreate)
}

// handleSync kicks off the roster capture in the background and acknowledges
// immediately; progress is observable through the tenant's setup status.
func (h *Handler) handleSync(w http.ResponseWriter, r *http.Request) {
	consortiumID, err := shared.URLUUID(r, "consortiumId")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	tenantID := chi.URLParam(r, "tenantId")
	centralTenantID, err := h.tenants.GetCentralTenantID(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	// Outlives the request; cancellation of the HTTP call must not abort the sync.
	ctx := context.WithoutCancel(r.Context())
	go func() {
		if err := h.affiliations.SyncPrimaryAffiliations(ctx, consortiumID, tenantID, centralTenantID); err != nil {
			h.logger.Error("affiliation sync failed", "tenantId", tenantID, "error", err)
		}
	}()

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	consortiumID, err := shared.URLUUID(r, "consortiumId")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	tenantID := chi.URLParam(r, "tenantId")

	var body models.SyncPrimaryAffiliationsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeValidation, "invalid request body"))
		return
	}
	if body.TenantID == "" {
		body.TenantID = tenantID
	}
	if body.TenantID != tenantID {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeValidation, "request tenantId and payload tenantId do not match"))
		return
	}

	if err := h.affiliations.CreatePrimaryUserAffiliations(r.Context(), consortiumID, body); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}
