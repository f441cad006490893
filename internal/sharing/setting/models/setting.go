// Package models defines the setting sharing request and response shapes.
package models

import "github.com/google/uuid"

// SharingSetting is a request to distribute one configuration record to every
// tenant in the consortium. Payload carries the record body verbatim; URL is
// the per-tenant resource path the record is written to.
type SharingSetting struct {
	SettingID uuid.UUID      `json:"settingId"`
	URL       string         `json:"url"`
	Payload   map[string]any `json:"payload"`
}

// SharingSettingResponse reports the publication coordinator jobs spawned by a
// distribution: one job creating the record on tenants that lacked it and one
// updating it on tenants that already had it. A nil id means that half of the
// roster was empty and no job was spawned.
type SharingSettingResponse struct {
	CreateSettingsPCID *uuid.UUID `json:"createSettingsPCId,omitempty"`
	UpdateSettingsPCID *uuid.UUID `json:"updateSettingsPCId,omitempty"`
}

// SharingSettingDeleteResponse reports the job deleting the record from the
// tenants that held it.
type SharingSettingDeleteResponse struct {
	PCID *uuid.UUID `json:"pcId,omitempty"`
}
