package models

import "github.com/google/uuid"

// Status is the sharing attempt state machine:
// IN_PROGRESS -> {COMPLETE, ERROR}; COMPLETE and ERROR are terminal.
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusComplete   Status = "COMPLETE"
	StatusError      Status = "ERROR"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusInProgress, StatusComplete, StatusError:
		return true
	}
	return false
}

// SharingInstance is one recorded attempt to propagate an inventory instance
// between a source and target tenant. Attempts are append-only: re-running
// creates a new row so prior outcomes stay auditable.
type SharingInstance struct {
	ID                 uuid.UUID `json:"id"`
	InstanceIdentifier uuid.UUID `json:"instanceIdentifier"`
	SourceTenantID     string    `json:"sourceTenantId"`
	TargetTenantID     string    `json:"targetTenantId"`
	Status             Status    `json:"status,omitempty"`
	Error              string    `json:"error,omitempty"`
}

// Filter narrows attempt listings. Zero values match everything.
type Filter struct {
	InstanceIdentifier uuid.UUID
	SourceTenantID     string
	TargetTenantID     string
	Status             Status
}

// Collection is the paged list envelope.
type Collection struct {
	SharingInstances []SharingInstance `json:"sharingInstances"`
	TotalRecords     int               `json:"totalRecords"`
}
