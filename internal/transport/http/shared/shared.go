// Package shared holds response helpers used by every handler package.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	domainerrors "github.com/dmytrokrutii/mod-consortia/pkg/domain-errors"
	"github.com/dmytrokrutii/mod-consortia/pkg/paging"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError translates a domain error into its HTTP envelope. Unknown errors
// come out as 500 without leaking internals.
func WriteError(w http.ResponseWriter, err error) {
	code := domainerrors.CodeOf(err)
	message := "internal server error"
	var de *domainerrors.Error
	if errors.As(err, &de) {
		message = de.Message
	}
	WriteJSON(w, domainerrors.ToHTTPStatus(code), ErrorResponse{Code: string(code), Message: message})
}

// ParsePage reads the offset/limit query window, defaulting to the first ten
// records the way the platform collection APIs do.
func ParsePage(r *http.Request) (paging.Page, error) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		return paging.Page{}, err
	}
	limit, err := queryInt(r, "limit", 10)
	if err != nil {
		return paging.Page{}, err
	}
	return paging.New(offset, limit)
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domainerrors.Newf(domainerrors.CodeValidation, "%s must be an integer", name)
	}
	return value, nil
}

// URLUUID parses a uuid path parameter.
func URLUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domainerrors.Newf(domainerrors.CodeValidation, "%s must be a valid uuid", name)
	}
	return id, nil
}
