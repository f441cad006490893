// Package handler exposes the tenant roster over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmytrokrutii/mod-consortia/internal/tenant/models"
	"github.com/dmytrokrutii/mod-consortia/internal/transport/http/shared"
	domainerrors "github.com/dmytrokrutii/mod-consortia/pkg/domain-errors"
)

// Service defines the interface for tenant roster operations.
type Service interface {
	Save(ctx context.Context, consortiumID uuid.UUID, tenant models.Tenant) (models.Tenant, error)
	GetByID(ctx context.Context, tenantID string) (models.Tenant, error)
	GetAll(ctx context.Context, consortiumID uuid.UUID) (models.Collection, error)
}

type Handler struct {
	tenants Service
	logger  *slog.Logger
}

func New(tenants Service, logger *slog.Logger) *Handler {
	return &Handler{tenants: tenants, logger: logger}
}

// Register wires the tenant routes relative to /consortia.
func (h *Handler) Register(r chi.Router) {
	r.Get("/{consortiumId}/tenants", h.handleGetAll)
	r.Post("/{consortiumId}/tenants", h.handleSave)
	r.Get("/{consortiumId}/tenants/{tenantId}", h.handleGet)
}

func (h *Handler) handleGetAll(w http.ResponseWriter, r *http.Request) {
	consortiumID, err := shared.URLUUID(r, "consortiumId")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	collection, err := h.tenants.GetAll(r.Context(), consortiumID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, collection)
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	consortiumID, err := shared.URLUUID(r, "consortiumId")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var tenant models.Tenant
	if err := json.NewDecoder(r.Body).Decode(&tenant); err != nil {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeValidation, "invalid request body"))
		return
	}
	saved, err := h.tenants.Save(r.Context(), consortiumID, tenant)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, saved)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.tenants.GetByID(r.Context(), chi.URLParam(r, "tenantId"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, tenant)
}
