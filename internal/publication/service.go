// Package publication fans one HTTP call out to many tenants through the
// publication coordinator.
package publication

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Coordinator

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmytrokrutii/mod-consortia/internal/platform/metrics"
	"github.com/dmytrokrutii/mod-consortia/internal/publication/models"
	"github.com/dmytrokrutii/mod-consortia/internal/systemuser"
	domainerrors "github.com/dmytrokrutii/mod-consortia/pkg/domain-errors"
	"github.com/dmytrokrutii/mod-consortia/pkg/requestcontext"
)

// Coordinator submits a publication job. Calls run under the tenant context
// already present on ctx.
type Coordinator interface {
	Publish(ctx context.Context, consortiumID uuid.UUID, request models.PublicationRequest) (uuid.UUID, error)
}

// Publisher submits publication jobs under an explicit system credential.
type Publisher struct {
	coordinator Coordinator
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func NewPublisher(coordinator Coordinator, m *metrics.Metrics, logger *slog.Logger) *Publisher {
	return &Publisher{coordinator: coordinator, metrics: m, logger: logger}
}

// PublishAs submits a job under cred's tenant scope. An empty tenant list is a
// no-op returning a nil job id: spawning a coordinator job with nothing to do
// would leave a permanently idle record.
func (p *Publisher) PublishAs(ctx context.Context, cred systemuser.Credential, consortiumID uuid.UUID, request models.PublicationRequest) (*uuid.UUID, error) {
	if len(request.Tenants) == 0 {
		p.logger.Debug("skipping publication with no target tenants", "url", request.URL, "method", request.Method)
		return nil, nil
	}

	ctx = requestcontext.WithTenantID(ctx, cred.TenantID)
	ctx = requestcontext.WithToken(ctx, cred.Token)

	id, err := p.coordinator.Publish(ctx, consortiumID, request)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeUpstream, "failed to submit publication")
	}
	p.metrics.PublicationsSent.Inc()
	p.logger.Info("publication submitted",
		"pcId", id, "method", request.Method, "url", request.URL, "tenants", len(request.Tenants))
	return &id, nil
}
