package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Inventory reads and writes instance records on whichever tenant the context
// is scoped to.
type Inventory struct {
	gateway *Gateway
}

func NewInventory(gateway *Gateway) *Inventory {
	return &Inventory{gateway: gateway}
}

// GetByID fetches one instance as a raw document so unknown attributes survive
// the round trip untouched.
func (c *Inventory) GetByID(ctx context.Context, instanceID uuid.UUID) (map[string]any, error) {
	var instance map[string]any
	if err := c.gateway.Do(ctx, http.MethodGet, "/inventory/instances/"+instanceID.String(), nil, &instance); err != nil {
		return nil, err
	}
	return instance, nil
}

// Save creates the instance on the context's tenant.
func (c *Inventory) Save(ctx context.Context, instance map[string]any) error {
	return c.gateway.Do(ctx, http.MethodPost, "/inventory/instances", instance, nil)
}
