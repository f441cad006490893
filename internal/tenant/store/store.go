// Package store persists the member-tenant roster in the coordinator schema.
package store

import (
	"context"

	"github.com/dmytrokrutii/mod-consortia/internal/tenant/models"
)

// Store is the persistence contract for tenant rows.
type Store interface {
	Insert(ctx context.Context, tenant models.Tenant) error
	FindByID(ctx context.Context, tenantID string) (models.Tenant, error)
	FindAll(ctx context.Context) ([]models.Tenant, error)
	FindCentral(ctx context.Context) (models.Tenant, error)
	SetSetupStatus(ctx context.Context, tenantID string, status models.SetupStatus) error
}
