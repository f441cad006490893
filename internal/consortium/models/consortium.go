package models

import "github.com/google/uuid"

// Consortium is the single top-level federation record grouping member tenants.
// At most one row may ever exist in a deployment; further consortia live in
// separate deployments with their own schemas.
type Consortium struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Collection is the list envelope returned by the singleton collection API.
type Collection struct {
	Consortia    []Consortium `json:"consortia"`
	TotalRecords int          `json:"totalRecords"`
}
