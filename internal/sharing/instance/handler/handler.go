// Package handler exposes instance sharing over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmytrokrutii/mod-consortia/internal/sharing/instance/models"
	"github.com/dmytrokrutii/mod-consortia/internal/transport/http/shared"
	domainerrors "github.com/dmytrokrutii/mod-consortia/pkg/domain-errors"
	"github.com/dmytrokrutii/mod-consortia/pkg/paging"
)

// Service defines the interface for sharing attempt operations.
type Service interface {
	Start(ctx context.Context, consortiumID uuid.UUID, request models.SharingInstance) (models.SharingInstance, error)
	GetByID(ctx context.Context, consortiumID uuid.UUID, actionID uuid.UUID) (models.SharingInstance, error)
	GetSharingInstances(ctx context.Context, consortiumID uuid.UUID, filter models.Filter, page paging.Page) (models.Collection, error)
}

type Handler struct {
	sharing Service
	logger  *slog.Logger
}

func New(sharing Service, logger *slog.Logger) *Handler {
	return &Handler{sharing: sharing, logger: logger}
}

// Register wires the sharing routes relative to /consortia.
func (h *Handler) Register(r chi.Router) {
	r.Post("/{consortiumId}/sharing/instances", h.handleStart)
	r.Get("/{consortiumId}/sharing/instances", h.handleList)
	r.Get("/{consortiumId}/sharing/instances/{actionId}", h.handleGet)
}

// handleStart answers 201 regardless of the attempt's outcome status: a
// persisted ERROR attempt is a successfully recorded result, not a transport
// failure.
func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	consortiumID, err := shared.URLUUID(r, "consortiumId")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var request models.SharingInstance
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeValidation, "invalid request body"))
		return
	}
	if request.InstanceIdentifier == uuid.Nil || request.SourceTenantID == "" || request.TargetTenantID == "" {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeValidation, "instanceIdentifier, sourceTenantId and targetTenantId are required"))
		return
	}
	attempt, err := h.sharing.Start(r.Context(), consortiumID, request)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, attempt)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	consortiumID, err := shared.URLUUID(r, "consortiumId")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	actionID, err := shared.URLUUID(r, "actionId")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	attempt, err := h.sharing.GetByID(r.Context(), consortiumID, actionID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, attempt)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	consortiumID, err := shared.URLUUID(r, "consortiumId")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	page, err := shared.ParsePage(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	collection, err := h.sharing.GetSharingInstances(r.Context(), consortiumID, filter, page)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, collection)
}

func parseFilter(r *http.Request) (models.Filter, error) {
	query := r.URL.Query()
	var filter models.Filter

	if raw := query.Get("instanceIdentifier"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return models.Filter{}, domainerrors.New(domainerrors.CodeValidation, "instanceIdentifier must be a valid uuid")
		}
		filter.InstanceIdentifier = id
	}
	filter.SourceTenantID = query.Get("sourceTenantId")
	filter.TargetTenantID = query.Get("targetTenantId")
	if raw := query.Get("status"); raw != "" {
		status := models.Status(raw)
		if !status.Valid() {
			return models.Filter{}, domainerrors.Newf(domainerrors.CodeValidation, "unknown status [%s]", raw)
		}
		filter.Status = status
	}
	return filter, nil
}
