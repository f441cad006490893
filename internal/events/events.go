// Package events defines the kafka topics and payloads the service produces
// and consumes.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmytrokrutii/mod-consortia/internal/platform/kafka"
)

// Topic base names. Wire topics are env-prefixed, see Topics.
const (
	PrimaryAffiliationCreated = "CONSORTIUM_PRIMARY_AFFILIATION_CREATED"
	PrimaryAffiliationDeleted = "CONSORTIUM_PRIMARY_AFFILIATION_DELETED"
	UserCreated               = "USER_CREATED"
	UserDeleted               = "USER_DELETED"
)

// Topics resolves base topic names to wire names for one environment, keeping
// parallel deployments against a shared broker apart.
type Topics struct {
	env string
}

func NewTopics(env string) Topics {
	return Topics{env: env}
}

func (t Topics) For(name string) string {
	return fmt.Sprintf("%s.%s", t.env, name)
}

// All lists every wire topic the service touches, for broker bootstrap.
func (t Topics) All() []string {
	return []string{
		t.For(PrimaryAffiliationCreated),
		t.For(PrimaryAffiliationDeleted),
		t.For(UserCreated),
		t.For(UserDeleted),
	}
}

// PrimaryAffiliationEvent announces that a user's home-tenant affiliation was
// created or removed. Contact attributes ride along so consumers do not have
// to call back into the member tenant.
type PrimaryAffiliationEvent struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"userId"`
	Username          string    `json:"username"`
	TenantID          string    `json:"tenantId"`
	CentralTenantID   string    `json:"centralTenantId"`
	ConsortiumID      uuid.UUID `json:"consortiumId"`
	Email             string    `json:"email,omitempty"`
	PhoneNumber       string    `json:"phoneNumber,omitempty"`
	MobilePhoneNumber string    `json:"mobilePhoneNumber,omitempty"`
	Barcode           string    `json:"barcode,omitempty"`
	ExternalSystemID  string    `json:"externalSystemId,omitempty"`
}

// UserEvent is the user lifecycle payload produced by per-tenant user
// services.
type UserEvent struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"userId"`
	Username string    `json:"username"`
	TenantID string    `json:"tenantId"`
}

// Emitter publishes consortium events.
type Emitter struct {
	producer *kafka.Producer
	topics   Topics
}

func NewEmitter(producer *kafka.Producer, topics Topics) *Emitter {
	return &Emitter{producer: producer, topics: topics}
}

// PrimaryAffiliationCreated announces a new primary affiliation, keyed by user
// id so per-user ordering holds.
func (e *Emitter) PrimaryAffiliationCreated(ctx context.Context, event PrimaryAffiliationEvent) error {
	return e.send(ctx, e.topics.For(PrimaryAffiliationCreated), event)
}

// PrimaryAffiliationDeleted announces a removed primary affiliation.
func (e *Emitter) PrimaryAffiliationDeleted(ctx context.Context, event PrimaryAffiliationEvent) error {
	return e.send(ctx, e.topics.For(PrimaryAffiliationDeleted), event)
}

func (e *Emitter) send(ctx context.Context, topic string, event PrimaryAffiliationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", topic, err)
	}
	e.producer.Send(ctx, topic, event.UserID.String(), payload)
	return nil
}
