package publication

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/dmytrokrutii/mod-consortia/internal/platform/metrics"
	"github.com/dmytrokrutii/mod-consortia/internal/publication/mocks"
	"github.com/dmytrokrutii/mod-consortia/internal/publication/models"
	"github.com/dmytrokrutii/mod-consortia/internal/systemuser"
	domainerrors "github.com/dmytrokrutii/mod-consortia/pkg/domain-errors"
	"github.com/dmytrokrutii/mod-consortia/pkg/requestcontext"
)

var testMetrics = metrics.New()

type PublisherSuite struct {
	suite.Suite
	ctrl            *gomock.Controller
	mockCoordinator *mocks.MockCoordinator
	publisher       *Publisher
	consortiumID    uuid.UUID
	cred            systemuser.Credential
	ctx             context.Context
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockCoordinator = mocks.NewMockCoordinator(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.publisher = NewPublisher(s.mockCoordinator, testMetrics, logger)
	s.consortiumID = uuid.New()
	s.cred = systemuser.Credential{TenantID: "mobius", Token: "system-token"}
	s.ctx = context.Background()
}

// An empty tenant list must not reach the coordinator at all.
func (s *PublisherSuite) TestEmptyTenantListIsNoOp() {
	id, err := s.publisher.PublishAs(s.ctx, s.cred, s.consortiumID, models.PublicationRequest{
		URL:    "/organizations",
		Method: "POST",
	})
	s.Require().NoError(err)
	s.Nil(id)
}

func (s *PublisherSuite) TestPublishRunsUnderCredentialScope() {
	request := models.PublicationRequest{
		URL:     "/organizations",
		Method:  "POST",
		Tenants: []string{"college"},
	}
	jobID := uuid.New()

	s.mockCoordinator.EXPECT().
		Publish(gomock.Any(), s.consortiumID, request).
		DoAndReturn(func(ctx context.Context, _ uuid.UUID, _ models.PublicationRequest) (uuid.UUID, error) {
			s.Equal("mobius", requestcontext.TenantID(ctx))
			s.Equal("system-token", requestcontext.Token(ctx))
			return jobID, nil
		})

	id, err := s.publisher.PublishAs(s.ctx, s.cred, s.consortiumID, request)
	s.Require().NoError(err)
	s.Require().NotNil(id)
	s.Equal(jobID, *id)
}

func (s *PublisherSuite) TestCoordinatorFailureIsUpstream() {
	s.mockCoordinator.EXPECT().
		Publish(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(uuid.Nil, errors.New("coordinator unavailable"))

	_, err := s.publisher.PublishAs(s.ctx, s.cred, s.consortiumID, models.PublicationRequest{
		URL:     "/organizations",
		Method:  "POST",
		Tenants: []string{"college"},
	})
	s.Require().Error(err)
	s.True(domainerrors.HasCode(err, domainerrors.CodeUpstream))
}
