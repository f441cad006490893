package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmytrokrutii/mod-consortia/internal/publication/models"
)

// PublicationCoordinator submits fan-out jobs to the coordinator service
// running on the central tenant.
type PublicationCoordinator struct {
	gateway *Gateway
}

func NewPublicationCoordinator(gateway *Gateway) *PublicationCoordinator {
	return &PublicationCoordinator{gateway: gateway}
}

// Publish submits one job and returns its id.
func (c *PublicationCoordinator) Publish(ctx context.Context, consortiumID uuid.UUID, request models.PublicationRequest) (uuid.UUID, error) {
	var response models.PublicationResponse
	path := fmt.Sprintf("/consortia/%s/publications", consortiumID)
	if err := c.gateway.Do(ctx, http.MethodPost, path, request, &response); err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(response.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse publication id %q: %w", response.ID, err)
	}
	return id, nil
}
