// Package handler exposes setting sharing over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmytrokrutii/mod-consortia/internal/sharing/setting/models"
	"github.com/dmytrokrutii/mod-consortia/internal/transport/http/shared"
	domainerrors "github.com/dmytrokrutii/mod-consortia/pkg/domain-errors"
)

// Service defines the interface for setting distribution operations.
type Service interface {
	Start(ctx context.Context, consortiumID uuid.UUID, request models.SharingSetting) (models.SharingSettingResponse, error)
	Delete(ctx context.Context, consortiumID uuid.UUID, settingID uuid.UUID, request models.SharingSetting) (models.SharingSettingDeleteResponse, error)
}

type Handler struct {
	sharing Service
	logger  *slog.Logger
}

func New(sharing Service, logger *slog.Logger) *Handler {
	return &Handler{sharing: sharing, logger: logger}
}

// Register wires the setting sharing routes relative to /consortia.
func (h *Handler) Register(r chi.Router) {
	r.Post("/{consortiumId}/sharing/settings", h.handleStart)
	r.Delete("/{consortiumId}/sharing/settings/{settingId}", h.handleDelete)
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	consortiumID, err := shared.URLUUID(r, "consortiumId")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	request, err := decodeRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	response, err := h.sharing.Start(r.Context(), consortiumID, request)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, response)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	consortiumID, err := shared.URLUUID(r, "consortiumId")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	settingID, err := shared.URLUUID(r, "settingId")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	request, err := decodeRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	response, err := h.sharing.Delete(r.Context(), consortiumID, settingID, request)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, response)
}

func decodeRequest(r *http.Request) (models.SharingSetting, error) {
	var request models.SharingSetting
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return models.SharingSetting{}, domainerrors.New(domainerrors.CodeValidation, "invalid request body")
	}
	if request.SettingID == uuid.Nil || request.URL == "" {
		return models.SharingSetting{}, domainerrors.New(domainerrors.CodeValidation, "settingId and url are required")
	}
	return request, nil
}
