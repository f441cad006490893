package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/dmytrokrutii/mod-consortia/internal/platform/metrics"
	"github.com/dmytrokrutii/mod-consortia/internal/sharing/instance/models"
	"github.com/dmytrokrutii/mod-consortia/internal/sharing/instance/store"
	domainerrors "github.com/dmytrokrutii/mod-consortia/pkg/domain-errors"
	"github.com/dmytrokrutii/mod-consortia/pkg/paging"
	"github.com/dmytrokrutii/mod-consortia/pkg/requestcontext"
)

// promauto registers against the default registry, so the package shares one
// instance across tests.
var testMetrics = metrics.New()

type stubConsortium struct {
	id uuid.UUID
}

func (c *stubConsortium) CheckExists(_ context.Context, consortiumID uuid.UUID) error {
	if consortiumID != c.id {
		return domainerrors.Newf(domainerrors.CodeNotFound, "consortium with id [%s] was not found", consortiumID)
	}
	return nil
}

type stubTenants struct {
	central string
	known   map[string]bool
}

func (t *stubTenants) CheckExists(_ context.Context, tenantID string) error {
	if !t.known[tenantID] {
		return domainerrors.Newf(domainerrors.CodeNotFound, "tenant with id [%s] was not found", tenantID)
	}
	return nil
}

func (t *stubTenants) GetCentralTenantID(context.Context) (string, error) {
	return t.central, nil
}

type fakeInventory struct {
	docs          map[uuid.UUID]map[string]any
	getErr        error
	saveErr       error
	fetchedTenant string
	savedTenant   string
	saved         map[string]any
}

func (f *fakeInventory) GetByID(ctx context.Context, instanceID uuid.UUID) (map[string]any, error) {
	f.fetchedTenant = requestcontext.TenantID(ctx)
	if f.getErr != nil {
		return nil, f.getErr
	}
	doc, ok := f.docs[instanceID]
	if !ok {
		return nil, errors.New("instance not found")
	}
	return doc, nil
}

func (f *fakeInventory) Save(ctx context.Context, instance map[string]any) error {
	f.savedTenant = requestcontext.TenantID(ctx)
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = instance
	return nil
}

type SharingInstanceSuite struct {
	suite.Suite
	service      *Service
	attempts     *store.InMemory
	inventory    *fakeInventory
	consortiumID uuid.UUID
	ctx          context.Context
}

func TestSharingInstanceSuite(t *testing.T) {
	suite.Run(t, new(SharingInstanceSuite))
}

func (s *SharingInstanceSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.consortiumID = uuid.New()
	s.attempts = store.NewInMemory()
	s.inventory = &fakeInventory{docs: make(map[uuid.UUID]map[string]any)}
	tenants := &stubTenants{central: "mobius", known: map[string]bool{"mobius": true, "college": true, "university": true}}
	s.service = New(s.attempts, &stubConsortium{id: s.consortiumID}, tenants, s.inventory, testMetrics, logger)
	s.ctx = context.Background()
}

func (s *SharingInstanceSuite) request(source, target string) models.SharingInstance {
	return models.SharingInstance{
		InstanceIdentifier: uuid.New(),
		SourceTenantID:     source,
		TargetTenantID:     target,
	}
}

func (s *SharingInstanceSuite) TestRejectsMemberToMemberPair() {
	_, err := s.service.Start(s.ctx, s.consortiumID, s.request("college", "university"))
	s.Require().Error(err)
	s.True(domainerrors.HasCode(err, domainerrors.CodeValidation))
	s.Contains(err.Error(), "cannot be member tenants")
}

func (s *SharingInstanceSuite) TestRejectsUnknownTenant() {
	_, err := s.service.Start(s.ctx, s.consortiumID, s.request("mobius", "nowhere"))
	s.Require().Error(err)
	s.True(domainerrors.HasCode(err, domainerrors.CodeNotFound))
}

func (s *SharingInstanceSuite) TestCentralAsSourceCopiesInstance() {
	request := s.request("mobius", "college")
	s.inventory.docs[request.InstanceIdentifier] = map[string]any{"title": "Moby Dick", "source": "FOLIO"}

	attempt, err := s.service.Start(s.ctx, s.consortiumID, request)
	s.Require().NoError(err)

	s.Equal(models.StatusComplete, attempt.Status)
	s.NotEqual(uuid.Nil, attempt.ID)
	s.Equal("mobius", s.inventory.fetchedTenant)
	s.Equal("college", s.inventory.savedTenant)
	s.Equal("CONSORTIUM-FOLIO", s.inventory.saved["source"])
	s.Equal("Moby Dick", s.inventory.saved["title"])
}

func (s *SharingInstanceSuite) TestMarcSourceRelabel() {
	request := s.request("mobius", "college")
	s.inventory.docs[request.InstanceIdentifier] = map[string]any{"source": "MARC"}

	attempt, err := s.service.Start(s.ctx, s.consortiumID, request)
	s.Require().NoError(err)
	s.Equal(models.StatusComplete, attempt.Status)
	s.Equal("CONSORTIUM-MARC", s.inventory.saved["source"])
}

// Upstream failures are recorded as ERROR attempts and returned as values; the
// caller sees a persisted result, not a transport error.
func (s *SharingInstanceSuite) TestFetchFailureRecordsError() {
	request := s.request("mobius", "college")
	s.inventory.getErr = errors.New("connection refused")

	attempt, err := s.service.Start(s.ctx, s.consortiumID, request)
	s.Require().NoError(err)

	s.Equal(models.StatusError, attempt.Status)
	s.Equal("Failed to get inventory instance with reason: connection refused", attempt.Error)

	persisted, err := s.attempts.FindByID(s.ctx, attempt.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusError, persisted.Status)
}

func (s *SharingInstanceSuite) TestPostFailureRecordsError() {
	request := s.request("mobius", "college")
	s.inventory.docs[request.InstanceIdentifier] = map[string]any{"source": "folio"}
	s.inventory.saveErr = errors.New("target rejected the record")

	attempt, err := s.service.Start(s.ctx, s.consortiumID, request)
	s.Require().NoError(err)
	s.Equal(models.StatusError, attempt.Status)
	s.Equal("Failed to post inventory instance with reason: target rejected the record", attempt.Error)
}

// A central-bound attempt is left IN_PROGRESS for the target-side process to
// complete; no copy happens here.
func (s *SharingInstanceSuite) TestCentralAsTargetStaysInProgress() {
	attempt, err := s.service.Start(s.ctx, s.consortiumID, s.request("college", "mobius"))
	s.Require().NoError(err)

	s.Equal(models.StatusInProgress, attempt.Status)
	s.Empty(s.inventory.fetchedTenant)
	s.Empty(s.inventory.savedTenant)
}

func (s *SharingInstanceSuite) TestAttemptsAreAppendOnly() {
	request := s.request("college", "mobius")

	first, err := s.service.Start(s.ctx, s.consortiumID, request)
	s.Require().NoError(err)
	second, err := s.service.Start(s.ctx, s.consortiumID, request)
	s.Require().NoError(err)
	s.NotEqual(first.ID, second.ID)

	collection, err := s.service.GetSharingInstances(s.ctx, s.consortiumID,
		models.Filter{InstanceIdentifier: request.InstanceIdentifier}, paging.Page{Offset: 0, Limit: 10})
	s.Require().NoError(err)
	s.Equal(2, collection.TotalRecords)
}

func (s *SharingInstanceSuite) TestListFilters() {
	inProgress, err := s.service.Start(s.ctx, s.consortiumID, s.request("college", "mobius"))
	s.Require().NoError(err)

	errored := s.request("mobius", "college")
	s.inventory.getErr = errors.New("boom")
	_, err = s.service.Start(s.ctx, s.consortiumID, errored)
	s.Require().NoError(err)

	collection, err := s.service.GetSharingInstances(s.ctx, s.consortiumID,
		models.Filter{Status: models.StatusInProgress}, paging.Page{Offset: 0, Limit: 10})
	s.Require().NoError(err)
	s.Equal(1, collection.TotalRecords)
	s.Equal(inProgress.ID, collection.SharingInstances[0].ID)
}

func (s *SharingInstanceSuite) TestGetByID() {
	attempt, err := s.service.Start(s.ctx, s.consortiumID, s.request("college", "mobius"))
	s.Require().NoError(err)

	got, err := s.service.GetByID(s.ctx, s.consortiumID, attempt.ID)
	s.Require().NoError(err)
	s.Equal(attempt, got)

	_, err = s.service.GetByID(s.ctx, s.consortiumID, uuid.New())
	s.Require().Error(err)
	s.True(domainerrors.HasCode(err, domainerrors.CodeNotFound))
}
