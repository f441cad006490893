// Package handler exposes user-tenant associations over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmytrokrutii/mod-consortia/internal/transport/http/shared"
	"github.com/dmytrokrutii/mod-consortia/internal/usertenant/models"
	domainerrors "github.com/dmytrokrutii/mod-consortia/pkg/domain-errors"
	"github.com/dmytrokrutii/mod-consortia/pkg/paging"
)

// Service defines the interface for association operations.
type Service interface {
	Get(ctx context.Context, consortiumID uuid.UUID, page paging.Page) (models.Collection, error)
	GetByUserID(ctx context.Context, consortiumID uuid.UUID, userID uuid.UUID, page paging.Page) (models.Collection, error)
	GetByUsernameAndTenantID(ctx context.Context, consortiumID uuid.UUID, username, tenantID string) (models.Collection, error)
	GetByID(ctx context.Context, consortiumID uuid.UUID, id uuid.UUID) (models.UserTenant, error)
	Save(ctx context.Context, consortiumID uuid.UUID, association models.UserTenant) (models.UserTenant, error)
	Delete(ctx context.Context, consortiumID uuid.UUID, userID uuid.UUID, tenantID string) error
}

type Handler struct {
	associations Service
	logger       *slog.Logger
}

func New(associations Service, logger *slog.Logger) *Handler {
	return &Handler{associations: associations, logger: logger}
}

// Register wires the association routes relative to /consortia.
func (h *Handler) Register(r chi.Router) {
	r.Get("/{consortiumId}/user-tenants", h.handleGet)
	r.Get("/{consortiumId}/user-tenants/{associationId}", h.handleGetByID)
	r.Post("/{consortiumId}/user-tenants", h.handleSave)
	r.Delete("/{consortiumId}/user-tenants", h.handleDelete)
}

// handleGet serves three lookups through one route: by userId, by
// username+tenantId, or the plain paged listing.
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	consortiumID, err := shared.URLUUID(r, "consortiumId")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	query := r.URL.Query()

	if username := query.Get("username"); username != "" {
		tenantID := query.Get("tenantId")
		if tenantID == "" {
			shared.WriteError(w, domainerrors.New(domainerrors.CodeValidation, "tenantId is required when username is set"))
			return
		}
		collection, err := h.associations.GetByUsernameAndTenantID(r.Context(), consortiumID, username, tenantID)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		shared.WriteJSON(w, http.StatusOK, collection)
		return
	}

	page, err := shared.ParsePage(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if rawUserID := query.Get("userId"); rawUserID != "" {
		userID, err := uuid.Parse(rawUserID)
		if err != nil {
			shared.WriteError(w, domainerrors.New(domainerrors.CodeValidation, "userId must be a valid uuid"))
			return
		}
		collection, err := h.associations.GetByUserID(r.Context(), consortiumID, userID, page)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		shared.WriteJSON(w, http.StatusOK, collection)
		return
	}

	collection, err := h.associations.Get(r.Context(), consortiumID, page)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, collection)
}

func (h *Handler) handleGetByID(w http.ResponseWriter, r *http.Request) {
	consortiumID, err := shared.URLUUID(r, "consortiumId")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	associationID, err := shared.URLUUID(r, "associationId")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	association, err := h.associations.GetByID(r.Context(), consortiumID, associationID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, association)
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	consortiumID, err := shared.URLUUID(r, "consortiumId")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var association models.UserTenant
	if err := json.NewDecoder(r.Body).Decode(&association); err != nil {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeValidation, "invalid request body"))
		return
	}
	saved, err := h.associations.Save(r.Context(), consortiumID, association)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, saved)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	consortiumID, err := shared.URLUUID(r, "consortiumId")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	query := r.URL.Query()
	userID, err := uuid.Parse(query.Get("userId"))
	if err != nil {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeValidation, "userId must be a valid uuid"))
		return
	}
	tenantID := query.Get("tenantId")
	if tenantID == "" {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeValidation, "tenantId is required"))
		return
	}
	if err := h.associations.Delete(r.Context(), consortiumID, userID, tenantID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
