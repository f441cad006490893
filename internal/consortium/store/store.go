// Package store persists the singleton consortium record. Implementations
// return pkg/platform/sentinel errors; translation to domain errors happens in
// the service layer.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmytrokrutii/mod-consortia/internal/consortium/models"
)

// Store is the persistence contract for consortium rows.
type Store interface {
	Count(ctx context.Context) (int, error)
	Insert(ctx context.Context, consortium models.Consortium) error
	FindByID(ctx context.Context, id uuid.UUID) (models.Consortium, error)
	Update(ctx context.Context, consortium models.Consortium) error
	FindAll(ctx context.Context, limit int) ([]models.Consortium, error)
}
