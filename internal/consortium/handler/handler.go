// Package handler exposes the consortium registry over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmytrokrutii/mod-consortia/internal/consortium/models"
	"github.com/dmytrokrutii/mod-consortia/internal/transport/http/shared"
	domainerrors "github.com/dmytrokrutii/mod-consortia/pkg/domain-errors"
)

// Service defines the interface for consortium operations.
type Service interface {
	Save(ctx context.Context, consortium models.Consortium) (models.Consortium, error)
	Get(ctx context.Context, consortiumID uuid.UUID) (models.Consortium, error)
	Update(ctx context.Context, consortiumID uuid.UUID, consortium models.Consortium) (models.Consortium, error)
	GetAll(ctx context.Context) (models.Collection, error)
}

type Handler struct {
	consortia Service
	logger    *slog.Logger
}

func New(consortia Service, logger *slog.Logger) *Handler {
	return &Handler{consortia: consortia, logger: logger}
}

// Register wires the consortium routes relative to /consortia.
func (h *Handler) Register(r chi.Router) {
	r.Post("/", h.handleSave)
	r.Get("/", h.handleGetAll)
	r.Get("/{consortiumId}", h.handleGet)
	r.Put("/{consortiumId}", h.handleUpdate)
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	var consortium models.Consortium
	if err := json.NewDecoder(r.Body).Decode(&consortium); err != nil {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeValidation, "invalid request body"))
		return
	}
	if consortium.ID == uuid.Nil {
		consortium.ID = uuid.New()
	}
	saved, err := h.consortia.Save(r.Context(), consortium)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, saved)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	consortiumID, err := shared.URLUUID(r, "consortiumId")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	consortium, err := h.consortia.Get(r.Context(), consortiumID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, consortium)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	consortiumID, err := shared.URLUUID(r, "consortiumId")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var consortium models.Consortium
	if err := json.NewDecoder(r.Body).Decode(&consortium); err != nil {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeValidation, "invalid request body"))
		return
	}
	updated, err := h.consortia.Update(r.Context(), consortiumID, consortium)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleGetAll(w http.ResponseWriter, r *http.Request) {
	collection, err := h.consortia.GetAll(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, collection)
}
