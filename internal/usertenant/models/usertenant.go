package models

import "github.com/google/uuid"

// UserTenant is one user↔tenant association row in the coordinator schema.
// For a given user there is at most one association per tenant, and at most
// one association flagged primary (the user's home tenant).
type UserTenant struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Username  string    `json:"username"`
	TenantID  string    `json:"tenantId"`
	IsPrimary bool      `json:"isPrimary"`
}

// Collection is the paged list envelope.
type Collection struct {
	UserTenants  []UserTenant `json:"userTenants"`
	TotalRecords int          `json:"totalRecords"`
}
