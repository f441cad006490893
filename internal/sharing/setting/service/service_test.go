package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	publication "github.com/dmytrokrutii/mod-consortia/internal/publication/models"
	"github.com/dmytrokrutii/mod-consortia/internal/sharing/setting/models"
	"github.com/dmytrokrutii/mod-consortia/internal/sharing/setting/store"
	"github.com/dmytrokrutii/mod-consortia/internal/systemuser"
	tenantmodels "github.com/dmytrokrutii/mod-consortia/internal/tenant/models"
	domainerrors "github.com/dmytrokrutii/mod-consortia/pkg/domain-errors"
)

type stubConsortium struct {
	id uuid.UUID
}

func (c *stubConsortium) CheckExists(_ context.Context, consortiumID uuid.UUID) error {
	if consortiumID != c.id {
		return domainerrors.Newf(domainerrors.CodeNotFound, "consortium with id [%s] was not found", consortiumID)
	}
	return nil
}

type stubRoster struct {
	central string
	tenants []string
}

func (r *stubRoster) GetAll(context.Context, uuid.UUID) (tenantmodels.Collection, error) {
	collection := tenantmodels.Collection{TotalRecords: len(r.tenants)}
	for _, id := range r.tenants {
		collection.Tenants = append(collection.Tenants, tenantmodels.Tenant{ID: id, IsCentral: id == r.central})
	}
	return collection, nil
}

func (r *stubRoster) GetCentralTenantID(context.Context) (string, error) {
	return r.central, nil
}

type publishedJob struct {
	cred    systemuser.Credential
	request publication.PublicationRequest
	id      uuid.UUID
}

type fakePublisher struct {
	jobs []publishedJob
}

func (p *fakePublisher) PublishAs(_ context.Context, cred systemuser.Credential, _ uuid.UUID, request publication.PublicationRequest) (*uuid.UUID, error) {
	if len(request.Tenants) == 0 {
		return nil, nil
	}
	id := uuid.New()
	p.jobs = append(p.jobs, publishedJob{cred: cred, request: request, id: id})
	return &id, nil
}

func (p *fakePublisher) jobFor(method string) *publishedJob {
	for i := range p.jobs {
		if p.jobs[i].request.Method == method {
			return &p.jobs[i]
		}
	}
	return nil
}

type stubCredentials struct{}

func (stubCredentials) CredentialFor(tenantID string) (systemuser.Credential, error) {
	return systemuser.Credential{TenantID: tenantID, Token: "system-token"}, nil
}

type SharingSettingSuite struct {
	suite.Suite
	service       *Service
	distributions *store.InMemory
	publisher     *fakePublisher
	consortiumID  uuid.UUID
	ctx           context.Context
}

func TestSharingSettingSuite(t *testing.T) {
	suite.Run(t, new(SharingSettingSuite))
}

func (s *SharingSettingSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.consortiumID = uuid.New()
	s.distributions = store.NewInMemory()
	s.publisher = &fakePublisher{}
	roster := &stubRoster{central: "mobius", tenants: []string{"mobius", "college", "university"}}
	s.service = New(s.distributions, &stubConsortium{id: s.consortiumID}, roster, s.publisher, stubCredentials{}, logger)
	s.ctx = context.Background()
}

func (s *SharingSettingSuite) request(settingID uuid.UUID) models.SharingSetting {
	return models.SharingSetting{
		SettingID: settingID,
		URL:       "/organizations",
		Payload:   map[string]any{"id": settingID.String(), "name": "Vendor"},
	}
}

func (s *SharingSettingSuite) TestRejectsPayloadIDMismatch() {
	request := s.request(uuid.New())
	request.Payload["id"] = uuid.NewString()

	_, err := s.service.Start(s.ctx, s.consortiumID, request)
	s.Require().Error(err)
	s.True(domainerrors.HasCode(err, domainerrors.CodeValidation))
	s.Contains(err.Error(), "mismatch id in payload")
}

// Every roster tenant lands in exactly one half: tenants without the setting
// get the create job, tenants holding it get the update job.
func (s *SharingSettingSuite) TestRosterPartition() {
	settingID := uuid.New()
	s.Require().NoError(s.distributions.SaveAll(s.ctx, settingID, []string{"college"}))

	response, err := s.service.Start(s.ctx, s.consortiumID, s.request(settingID))
	s.Require().NoError(err)
	s.Require().NotNil(response.CreateSettingsPCID)
	s.Require().NotNil(response.UpdateSettingsPCID)

	create := s.publisher.jobFor("POST")
	s.Require().NotNil(create)
	s.ElementsMatch([]string{"mobius", "university"}, create.request.Tenants)
	s.Equal("/organizations", create.request.URL)

	update := s.publisher.jobFor("PUT")
	s.Require().NotNil(update)
	s.Equal([]string{"college"}, update.request.Tenants)
	s.Equal("/organizations/"+settingID.String(), update.request.URL)
}

func (s *SharingSettingSuite) TestPayloadStampedWithConsortiumSource() {
	response, err := s.service.Start(s.ctx, s.consortiumID, s.request(uuid.New()))
	s.Require().NoError(err)
	s.Require().NotNil(response.CreateSettingsPCID)
	// Nobody held the setting yet, so there is no update half.
	s.Nil(response.UpdateSettingsPCID)

	create := s.publisher.jobFor("POST")
	s.Require().NotNil(create)
	s.Equal("consortium", create.request.Payload["source"])
	s.Equal("Vendor", create.request.Payload["name"])
	s.Equal("mobius", create.cred.TenantID)
}

func (s *SharingSettingSuite) TestStartRecordsDistribution() {
	settingID := uuid.New()
	_, err := s.service.Start(s.ctx, s.consortiumID, s.request(settingID))
	s.Require().NoError(err)

	held, err := s.distributions.FindTenantsBySettingID(s.ctx, settingID)
	s.Require().NoError(err)
	s.Len(held, 3)
}

func (s *SharingSettingSuite) TestDelete() {
	settingID := uuid.New()

	s.Run("unknown setting is not found", func() {
		_, err := s.service.Delete(s.ctx, s.consortiumID, settingID, s.request(settingID))
		s.Require().Error(err)
		s.True(domainerrors.HasCode(err, domainerrors.CodeNotFound))
	})

	s.Run("withdraws from holders and drops rows", func() {
		s.Require().NoError(s.distributions.SaveAll(s.ctx, settingID, []string{"college", "university"}))

		response, err := s.service.Delete(s.ctx, s.consortiumID, settingID, s.request(settingID))
		s.Require().NoError(err)
		s.Require().NotNil(response.PCID)

		job := s.publisher.jobFor("DELETE")
		s.Require().NotNil(job)
		s.Equal([]string{"college", "university"}, job.request.Tenants)
		s.Equal("/organizations/"+settingID.String(), job.request.URL)

		exists, err := s.distributions.ExistsBySettingID(s.ctx, settingID)
		s.Require().NoError(err)
		s.False(exists)
	})

	s.Run("rejects settingId mismatch", func() {
		other := uuid.New()
		_, err := s.service.Delete(s.ctx, s.consortiumID, other, s.request(settingID))
		s.Require().Error(err)
		s.True(domainerrors.HasCode(err, domainerrors.CodeValidation))
	})
}
