package registry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/merchantiq/pricewise-backend/pkg/config"
	"github.com/merchantiq/pricewise-backend/pkg/db/models"
	"github.com/merchantiq/pricewise-backend/pkg/enums"
	"github.com/merchantiq/pricewise-backend/pkg/outbox"
	"github.com/merchantiq/pricewise-backend/pkg/outbox/payloads"
)

func testRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{DomainTopic: "pw-domain-events"})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return reg
}

func envelopeRow(t *testing.T, eventType enums.OutboxEventType, aggregateType enums.OutboxAggregateType, data interface{}) models.OutboxEvent {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now(),
		Data:       raw,
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return models.OutboxEvent{
		EventType:     eventType,
		AggregateType: aggregateType,
		AggregateID:   uuid.New(),
		Payload:       payload,
	}
}

func TestRegistryResolvesInviteCreated(t *testing.T) {
	reg := testRegistry(t)
	row := envelopeRow(t, enums.OutboxEventInviteCreated, enums.OutboxAggregateInvite, payloads.InviteCreatedEvent{
		InviteID: uuid.New(),
		Email:    "new.hire@example.com",
		Role:     enums.UserRoleMember,
	})

	resolved, err := reg.Resolve(row)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Descriptor.Topic != "pw-domain-events" {
		t.Fatalf("expected domain topic, got %s", resolved.Descriptor.Topic)
	}
	payload, ok := resolved.Payload.(*payloads.InviteCreatedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", resolved.Payload)
	}
	if payload.Email != "new.hire@example.com" {
		t.Fatalf("unexpected email %s", payload.Email)
	}
}

func TestRegistryRejectsUnknownEventType(t *testing.T) {
	reg := testRegistry(t)
	row := envelopeRow(t, enums.OutboxEventType("order.created"), enums.OutboxAggregateInvite, map[string]string{"k": "v"})

	_, err := reg.Resolve(row)
	var nonRetryable NonRetryableError
	if !errors.As(err, &nonRetryable) {
		t.Fatalf("expected NonRetryableError, got %v", err)
	}
}

func TestRegistryRejectsAggregateMismatch(t *testing.T) {
	reg := testRegistry(t)
	row := envelopeRow(t, enums.OutboxEventScenarioCreated, enums.OutboxAggregateReport, payloads.ScenarioCreatedEvent{})

	_, err := reg.Resolve(row)
	var nonRetryable NonRetryableError
	if !errors.As(err, &nonRetryable) {
		t.Fatalf("expected NonRetryableError, got %v", err)
	}
}

func TestRegistryRejectsEmptyPayload(t *testing.T) {
	reg := testRegistry(t)
	envelope := outbox.PayloadEnvelope{Version: 1, EventID: uuid.NewString(), OccurredAt: time.Now(), Data: json.RawMessage("null")}
	payload, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	row := models.OutboxEvent{
		EventType:     enums.OutboxEventReportGenerated,
		AggregateType: enums.OutboxAggregateReport,
		AggregateID:   uuid.New(),
		Payload:       payload,
	}

	if _, err := reg.Resolve(row); err == nil {
		t.Fatal("expected error for null payload")
	}
}
