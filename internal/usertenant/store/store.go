// Package store persists user↔tenant association rows.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmytrokrutii/mod-consortia/internal/usertenant/models"
	"github.com/dmytrokrutii/mod-consortia/pkg/paging"
)

// Store is the persistence contract for user-tenant associations.
type Store interface {
	Insert(ctx context.Context, association models.UserTenant) error
	FindByID(ctx context.Context, id uuid.UUID) (models.UserTenant, error)
	FindAll(ctx context.Context, page paging.Page) ([]models.UserTenant, int, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, page paging.Page) ([]models.UserTenant, int, error)
	FindByUsernameAndTenantID(ctx context.Context, username, tenantID string) (models.UserTenant, error)
	DeleteByUserIDAndTenantID(ctx context.Context, userID uuid.UUID, tenantID string) error
}
