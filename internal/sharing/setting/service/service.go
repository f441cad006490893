// Package service implements the setting sharing orchestrator: it distributes
// one configuration record to the whole tenant roster through the publication
// coordinator, splitting the roster into create and update halves.
package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	publication "github.com/dmytrokrutii/mod-consortia/internal/publication/models"
	"github.com/dmytrokrutii/mod-consortia/internal/sharing/setting/models"
	"github.com/dmytrokrutii/mod-consortia/internal/sharing/setting/store"
	"github.com/dmytrokrutii/mod-consortia/internal/systemuser"
	tenantmodels "github.com/dmytrokrutii/mod-consortia/internal/tenant/models"
	domainerrors "github.com/dmytrokrutii/mod-consortia/pkg/domain-errors"
)

// Distributed records carry this source so per-tenant services can tell a
// consortium-managed record from a locally created one.
const consortiumSource = "consortium"

// ConsortiumChecker validates consortium existence.
type ConsortiumChecker interface {
	CheckExists(ctx context.Context, consortiumID uuid.UUID) error
}

// TenantRoster lists the consortium's tenants and identifies the hub.
type TenantRoster interface {
	GetAll(ctx context.Context, consortiumID uuid.UUID) (tenantmodels.Collection, error)
	GetCentralTenantID(ctx context.Context) (string, error)
}

// Publisher submits fan-out jobs under an explicit system credential.
type Publisher interface {
	PublishAs(ctx context.Context, cred systemuser.Credential, consortiumID uuid.UUID, request publication.PublicationRequest) (*uuid.UUID, error)
}

// Credentials mints tenant-scoped system credentials.
type Credentials interface {
	CredentialFor(tenantID string) (systemuser.Credential, error)
}

type Service struct {
	distributions store.Store
	consortium    ConsortiumChecker
	tenants       TenantRoster
	publisher     Publisher
	credentials   Credentials
	logger        *slog.Logger
}

func New(distributions store.Store, consortium ConsortiumChecker, tenants TenantRoster, publisher Publisher, credentials Credentials, logger *slog.Logger) *Service {
	return &Service{
		distributions: distributions,
		consortium:    consortium,
		tenants:       tenants,
		publisher:     publisher,
		credentials:   credentials,
		logger:        logger,
	}
}

// Start distributes the setting to every tenant in the roster.
//
// The roster is partitioned in one pass against the recorded distribution set:
// tenants that never received the setting get a create (POST) job, tenants
// that already hold it get an update (PUT) job. Every roster tenant lands in
// exactly one half. Both jobs run under a system credential minted for the
// central tenant, never under the caller's token.
func (s *Service) Start(ctx context.Context, consortiumID uuid.UUID, request models.SharingSetting) (models.SharingSettingResponse, error) {
	ctx, span := otel.Tracer("sharing/setting").Start(ctx, "SharingSetting.Start")
	defer span.End()
	span.SetAttributes(attribute.String("settingId", request.SettingID.String()))

	if err := s.validate(ctx, consortiumID, request); err != nil {
		return models.SharingSettingResponse{}, err
	}

	centralTenantID, err := s.tenants.GetCentralTenantID(ctx)
	if err != nil {
		return models.SharingSettingResponse{}, err
	}
	roster, err := s.tenants.GetAll(ctx, consortiumID)
	if err != nil {
		return models.SharingSettingResponse{}, err
	}
	held, err := s.distributions.FindTenantsBySettingID(ctx, request.SettingID)
	if err != nil {
		return models.SharingSettingResponse{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to load setting distribution")
	}

	var create, update []string
	for _, tenant := range roster.Tenants {
		if _, ok := held[tenant.ID]; ok {
			update = append(update, tenant.ID)
		} else {
			create = append(create, tenant.ID)
		}
	}

	if err := s.distributions.SaveAll(ctx, request.SettingID, create); err != nil {
		return models.SharingSettingResponse{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to save setting distribution")
	}

	payload := make(map[string]any, len(request.Payload)+1)
	for k, v := range request.Payload {
		payload[k] = v
	}
	payload["source"] = consortiumSource

	cred, err := s.credentials.CredentialFor(centralTenantID)
	if err != nil {
		return models.SharingSettingResponse{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to mint system credential")
	}

	createPCID, err := s.publisher.PublishAs(ctx, cred, consortiumID, publication.PublicationRequest{
		URL:     request.URL,
		Method:  "POST",
		Payload: payload,
		Tenants: create,
	})
	if err != nil {
		return models.SharingSettingResponse{}, err
	}
	updatePCID, err := s.publisher.PublishAs(ctx, cred, consortiumID, publication.PublicationRequest{
		URL:     request.URL + "/" + request.SettingID.String(),
		Method:  "PUT",
		Payload: payload,
		Tenants: update,
	})
	if err != nil {
		return models.SharingSettingResponse{}, err
	}

	s.logger.Info("sharing setting started",
		"settingId", request.SettingID, "createTenants", len(create), "updateTenants", len(update))
	return models.SharingSettingResponse{
		CreateSettingsPCID: createPCID,
		UpdateSettingsPCID: updatePCID,
	}, nil
}

// Delete withdraws the setting from every tenant that holds it and drops the
// distribution records.
func (s *Service) Delete(ctx context.Context, consortiumID uuid.UUID, settingID uuid.UUID, request models.SharingSetting) (models.SharingSettingDeleteResponse, error) {
	if err := s.validate(ctx, consortiumID, request); err != nil {
		return models.SharingSettingDeleteResponse{}, err
	}
	if settingID != request.SettingID {
		return models.SharingSettingDeleteResponse{}, domainerrors.New(domainerrors.CodeValidation, "mismatch id in payload with settingId")
	}

	exists, err := s.distributions.ExistsBySettingID(ctx, settingID)
	if err != nil {
		return models.SharingSettingDeleteResponse{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to check setting distribution")
	}
	if !exists {
		return models.SharingSettingDeleteResponse{}, domainerrors.Newf(domainerrors.CodeNotFound, "setting with id [%s] was not found", settingID)
	}

	held, err := s.distributions.FindTenantsBySettingID(ctx, settingID)
	if err != nil {
		return models.SharingSettingDeleteResponse{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to load setting distribution")
	}
	if err := s.distributions.DeleteBySettingID(ctx, settingID); err != nil {
		return models.SharingSettingDeleteResponse{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to delete setting distribution")
	}

	centralTenantID, err := s.tenants.GetCentralTenantID(ctx)
	if err != nil {
		return models.SharingSettingDeleteResponse{}, err
	}
	cred, err := s.credentials.CredentialFor(centralTenantID)
	if err != nil {
		return models.SharingSettingDeleteResponse{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to mint system credential")
	}

	tenants := make([]string, 0, len(held))
	for tenantID := range held {
		tenants = append(tenants, tenantID)
	}
	sort.Strings(tenants)
	pcID, err := s.publisher.PublishAs(ctx, cred, consortiumID, publication.PublicationRequest{
		URL:     request.URL + "/" + settingID.String(),
		Method:  "DELETE",
		Tenants: tenants,
	})
	if err != nil {
		return models.SharingSettingDeleteResponse{}, err
	}

	s.logger.Info("sharing setting deleted", "settingId", settingID, "tenants", len(tenants))
	return models.SharingSettingDeleteResponse{PCID: pcID}, nil
}

func (s *Service) validate(ctx context.Context, consortiumID uuid.UUID, request models.SharingSetting) error {
	if err := s.consortium.CheckExists(ctx, consortiumID); err != nil {
		return err
	}
	payloadID, _ := request.Payload["id"].(string)
	if payloadID != request.SettingID.String() {
		return domainerrors.New(domainerrors.CodeValidation, "mismatch id in payload with settingId")
	}
	return nil
}
