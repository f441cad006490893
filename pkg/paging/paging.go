// Package paging validates the offset/limit window used by collection APIs.
package paging

import domainerrors "github.com/dmytrokrutii/mod-consortia/pkg/domain-errors"

// MaxLimit caps collection pages; matches the platform's collection default.
const MaxLimit = 500

// Page is a validated offset/limit window.
type Page struct {
	Offset int
	Limit  int
}

// New validates the bounds. Malformed bounds are a caller error, never clamped
// silently.
func New(offset, limit int) (Page, error) {
	if offset < 0 {
		return Page{}, domainerrors.New(domainerrors.CodeValidation, "offset must not be negative")
	}
	if limit <= 0 || limit > MaxLimit {
		return Page{}, domainerrors.Newf(domainerrors.CodeValidation, "limit must be between 1 and %d", MaxLimit)
	}
	return Page{Offset: offset, Limit: limit}, nil
}
