// Package models defines the affiliation sync payloads.
package models

import "github.com/google/uuid"

// SyncUser is one member-tenant user captured for affiliation setup.
type SyncUser struct {
	ID                uuid.UUID `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email,omitempty"`
	PhoneNumber       string    `json:"phoneNumber,omitempty"`
	MobilePhoneNumber string    `json:"mobilePhoneNumber,omitempty"`
	Barcode           string    `json:"barcode,omitempty"`
	ExternalSystemID  string    `json:"externalSystemId,omitempty"`
}

// SyncPrimaryAffiliationsBody hands a tenant's user roster to the affiliation
// creation step.
type SyncPrimaryAffiliationsBody struct {
	Users           []SyncUser `json:"users"`
	TenantID        string     `json:"tenantId"`
	CentralTenantID string     `json:"centralTenantId"`
}
