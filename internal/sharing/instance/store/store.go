// Package store persists sharing attempt rows (append-only audit).
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmytrokrutii/mod-consortia/internal/sharing/instance/models"
	"github.com/dmytrokrutii/mod-consortia/pkg/paging"
)

// Store is the persistence contract for sharing attempts.
type Store interface {
	Insert(ctx context.Context, attempt models.SharingInstance) error
	FindByID(ctx context.Context, id uuid.UUID) (models.SharingInstance, error)
	FindAll(ctx context.Context, filter models.Filter, page paging.Page) ([]models.SharingInstance, int, error)
}
