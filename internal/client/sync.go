package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmytrokrutii/mod-consortia/internal/affiliation/models"
)

// AffiliationSync dispatches a captured user roster to the affiliation
// creation endpoint through the gateway. The round trip decouples the slow
// creation step from the capture step and lets any service instance pick the
// work up.
type AffiliationSync struct {
	gateway *Gateway
}

func NewAffiliationSync(gateway *Gateway) *AffiliationSync {
	return &AffiliationSync{gateway: gateway}
}

func (c *AffiliationSync) SavePrimaryAffiliations(ctx context.Context, consortiumID uuid.UUID, body models.SyncPrimaryAffiliationsBody) error {
	path := fmt.Sprintf("/consortia/%s/tenants/%s/create-primary-affiliations", consortiumID, body.TenantID)
	return c.gateway.Do(ctx, http.MethodPost, path, body, nil)
}
