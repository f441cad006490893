// Package store persists which tenants hold a distributed setting.
package store

import (
	"context"

	"github.com/google/uuid"
)

// Store tracks (settingID, tenantID) distribution rows.
type Store interface {
	// FindTenantsBySettingID returns the set of tenants the setting was
	// previously distributed to.
	FindTenantsBySettingID(ctx context.Context, settingID uuid.UUID) (map[string]struct{}, error)
	// SaveAll records the setting as distributed to the given tenants.
	SaveAll(ctx context.Context, settingID uuid.UUID, tenantIDs []string) error
	// ExistsBySettingID reports whether any distribution rows exist.
	ExistsBySettingID(ctx context.Context, settingID uuid.UUID) (bool, error)
	// DeleteBySettingID removes all distribution rows for the setting.
	DeleteBySettingID(ctx context.Context, settingID uuid.UUID) error
}
