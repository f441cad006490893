package listener

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	consortiummodels "github.com/dmytrokrutii/mod-consortia/internal/consortium/models"
	"github.com/dmytrokrutii/mod-consortia/internal/events"
	"github.com/dmytrokrutii/mod-consortia/internal/platform/kafka"
	usertenantmodels "github.com/dmytrokrutii/mod-consortia/internal/usertenant/models"
	domainerrors "github.com/dmytrokrutii/mod-consortia/pkg/domain-errors"
)

type stubConsortia struct {
	consortia []consortiummodels.Consortium
}

func (s *stubConsortia) GetAll(context.Context) (consortiummodels.Collection, error) {
	return consortiummodels.Collection{Consortia: s.consortia, TotalRecords: len(s.consortia)}, nil
}

type stubTenants struct {
	central string
}

func (s *stubTenants) GetCentralTenantID(context.Context) (string, error) {
	if s.central == "" {
		return "", domainerrors.New(domainerrors.CodeNotFound, "central tenant is not configured")
	}
	return s.central, nil
}

type affiliationCall struct {
	tenantID string
	userID   uuid.UUID
	primary  bool
}

type fakeAssociations struct {
	byUsername map[string]usertenantmodels.UserTenant
	created    []affiliationCall
	deleted    []affiliationCall
}

func (f *fakeAssociations) GetByUsernameAndTenantID(_ context.Context, _ uuid.UUID, username, tenantID string) (usertenantmodels.Collection, error) {
	if association, ok := f.byUsername[username+"/"+tenantID]; ok {
		return usertenantmodels.Collection{UserTenants: []usertenantmodels.UserTenant{association}, TotalRecords: 1}, nil
	}
	return usertenantmodels.Collection{}, domainerrors.New(domainerrors.CodeNotFound, "association was not found")
}

func (f *fakeAssociations) CreatePrimaryAffiliation(_ context.Context, tenantID string, userID uuid.UUID, _ string) (usertenantmodels.UserTenant, error) {
	f.created = append(f.created, affiliationCall{tenantID: tenantID, userID: userID, primary: true})
	return usertenantmodels.UserTenant{}, nil
}

func (f *fakeAssociations) CreateShadowAffiliation(_ context.Context, tenantID string, userID uuid.UUID, _ string) (usertenantmodels.UserTenant, error) {
	f.created = append(f.created, affiliationCall{tenantID: tenantID, userID: userID, primary: false})
	return usertenantmodels.UserTenant{}, nil
}

func (f *fakeAssociations) Delete(_ context.Context, _ uuid.UUID, userID uuid.UUID, tenantID string) error {
	f.deleted = append(f.deleted, affiliationCall{tenantID: tenantID, userID: userID})
	return nil
}

type fakeEmitter struct {
	created []events.PrimaryAffiliationEvent
	deleted []events.PrimaryAffiliationEvent
}

func (f *fakeEmitter) PrimaryAffiliationCreated(_ context.Context, event events.PrimaryAffiliationEvent) error {
	f.created = append(f.created, event)
	return nil
}

func (f *fakeEmitter) PrimaryAffiliationDeleted(_ context.Context, event events.PrimaryAffiliationEvent) error {
	f.deleted = append(f.deleted, event)
	return nil
}

type ListenerSuite struct {
	suite.Suite
	consortia    *stubConsortia
	tenants      *stubTenants
	associations *fakeAssociations
	emitter      *fakeEmitter
	listener     *Listener
	consortiumID uuid.UUID
	ctx          context.Context
}

func TestListenerSuite(t *testing.T) {
	suite.Run(t, new(ListenerSuite))
}

func (s *ListenerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.consortiumID = uuid.New()
	s.consortia = &stubConsortia{consortia: []consortiummodels.Consortium{{ID: s.consortiumID, Name: "MOBIUS"}}}
	s.tenants = &stubTenants{central: "mobius"}
	s.associations = &fakeAssociations{byUsername: map[string]usertenantmodels.UserTenant{}}
	s.emitter = &fakeEmitter{}
	s.listener = New(s.consortia, s.tenants, s.associations, s.emitter, logger)
	s.ctx = context.Background()
}

func (s *ListenerSuite) message(event events.UserEvent) *kafka.Message {
	payload, err := json.Marshal(event)
	s.Require().NoError(err)
	return &kafka.Message{Topic: "folio.USER_CREATED", Value: payload, Headers: map[string]string{}}
}

func (s *ListenerSuite) TestDropsEventsUntilConfigured() {
	event := events.UserEvent{UserID: uuid.New(), Username: "jdoe", TenantID: "college"}
	handler := &UserCreatedHandler{s.listener}

	s.Run("no consortium registered", func() {
		s.consortia.consortia = nil
		s.Require().NoError(handler.Handle(s.ctx, s.message(event)))
		s.Empty(s.associations.created)
	})

	s.Run("no central tenant", func() {
		s.consortia.consortia = []consortiummodels.Consortium{{ID: s.consortiumID}}
		s.tenants.central = ""
		s.Require().NoError(handler.Handle(s.ctx, s.message(event)))
		s.Empty(s.associations.created)
	})
}

func (s *ListenerSuite) TestUserCreated() {
	handler := &UserCreatedHandler{s.listener}
	userID := uuid.New()

	s.Run("affiliates a member tenant user with a hub shadow", func() {
		event := events.UserEvent{UserID: userID, Username: "jdoe", TenantID: "college"}
		s.Require().NoError(handler.Handle(s.ctx, s.message(event)))

		s.Require().Len(s.associations.created, 2)
		s.Equal(affiliationCall{tenantID: "college", userID: userID, primary: true}, s.associations.created[0])
		s.Equal(affiliationCall{tenantID: "mobius", userID: userID, primary: false}, s.associations.created[1])

		s.Require().Len(s.emitter.created, 1)
		s.Equal("mobius", s.emitter.created[0].CentralTenantID)
	})

	s.Run("a hub user gets no shadow", func() {
		s.associations.created = nil
		event := events.UserEvent{UserID: uuid.New(), Username: "admin", TenantID: "mobius"}
		s.Require().NoError(handler.Handle(s.ctx, s.message(event)))
		s.Require().Len(s.associations.created, 1)
		s.True(s.associations.created[0].primary)
	})

	s.Run("skips a user already affiliated", func() {
		s.associations.created = nil
		s.associations.byUsername["jdoe/college"] = usertenantmodels.UserTenant{UserID: userID, Username: "jdoe", TenantID: "college"}
		event := events.UserEvent{UserID: userID, Username: "jdoe", TenantID: "college"}
		s.Require().NoError(handler.Handle(s.ctx, s.message(event)))
		s.Empty(s.associations.created)
	})
}

func (s *ListenerSuite) TestUserDeleted() {
	handler := &UserDeletedHandler{s.listener}
	userID := uuid.New()

	s.Run("no affiliation is a no-op", func() {
		event := events.UserEvent{UserID: userID, Username: "jdoe", TenantID: "college"}
		s.Require().NoError(handler.Handle(s.ctx, s.message(event)))
		s.Empty(s.associations.deleted)
	})

	s.Run("withdraws the affiliation and announces it", func() {
		s.associations.byUsername["jdoe/college"] = usertenantmodels.UserTenant{UserID: userID, Username: "jdoe", TenantID: "college", IsPrimary: true}
		event := events.UserEvent{UserID: userID, Username: "jdoe", TenantID: "college"}
		s.Require().NoError(handler.Handle(s.ctx, s.message(event)))

		s.Require().Len(s.associations.deleted, 1)
		s.Equal(userID, s.associations.deleted[0].userID)
		s.Require().Len(s.emitter.deleted, 1)
		s.Equal("college", s.emitter.deleted[0].TenantID)
	})
}

func (s *ListenerSuite) TestTenantFallsBackToHeader() {
	handler := &UserCreatedHandler{s.listener}
	event := events.UserEvent{UserID: uuid.New(), Username: "jdoe"}
	msg := s.message(event)
	msg.Headers["X-Okapi-Tenant"] = "college"

	s.Require().NoError(handler.Handle(s.ctx, msg))
	s.Require().Len(s.associations.created, 2)
	s.Equal("college", s.associations.created[0].tenantID)
}
