package models

import "github.com/google/uuid"

// Tenant is one independently schemaed data partition of the consortium.
// The id is the opaque tenant code used for schema routing, not a UUID.
// Exactly one member is flagged central; every cross-tenant sharing operation
// must touch it.
type Tenant struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	ConsortiumID uuid.UUID   `json:"consortiumId"`
	IsCentral    bool        `json:"isCentral"`
	SetupStatus  SetupStatus `json:"setupStatus,omitempty"`
}

// SetupStatus tracks the outcome of a tenant's affiliation setup run.
// The tri-state terminal set distinguishes "done cleanly" from "done but needs
// operator attention" from "never completed".
type SetupStatus string

const (
	SetupInProgress          SetupStatus = "IN_PROGRESS"
	SetupFailed              SetupStatus = "FAILED"
	SetupCompleted           SetupStatus = "COMPLETED"
	SetupCompletedWithErrors SetupStatus = "COMPLETED_WITH_ERRORS"
)

// Collection is the roster envelope.
type Collection struct {
	Tenants      []Tenant `json:"tenants"`
	TotalRecords int      `json:"totalRecords"`
}
