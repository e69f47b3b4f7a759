// Package events publishes best-effort domain events to a Pub/Sub topic.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/foodlink-backend/pkg/logger"
)

// Type names a domain event.
type Type string

const (
	OrderConfirmed                Type = "order.confirmed"
	OrderCancelled                Type = "order.cancelled"
	OrderStatusChanged            Type = "order.status_changed"
	InquiryCreated                Type = "inquiry.created"
	PaymentReconciliationRequired Type = "payment.reconciliation_required"
)

const envelopeVersion = 1

const publishTimeout = 5 * time.Second

// Actor identifies who produced the event.
type Actor struct {
	ProfileID uuid.UUID `json:"profileId"`
	Role      string    `json:"role,omitempty"`
}

// Envelope is the message body published for every event.
type Envelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	Type       Type            `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *Actor          `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// Publisher emits domain events. Implementations never fail the caller's
// operation; errors are returned for logging only.
type Publisher interface {
	Publish(ctx context.Context, eventType Type, actor *Actor, data any) error
}

// Sender is the transport used by TopicPublisher.
type Sender interface {
	Publish(ctx context.Context, topic string, data []byte, attrs map[string]string) (string, error)
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, Type, *Actor, any) error { return nil }

// TopicPublisher wraps events in an Envelope and sends them to one topic.
type TopicPublisher struct {
	sender Sender
	topic  string
	logg   *logger.Logger
	now    func() time.Time
}

// NewTopicPublisher builds a publisher for the given topic.
func NewTopicPublisher(sender Sender, topic string, logg *logger.Logger) (*TopicPublisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("sender required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic required")
	}
	return &TopicPublisher{sender: sender, topic: topic, logg: logg, now: time.Now}, nil
}

func (p *TopicPublisher) Publish(ctx context.Context, eventType Type, actor *Actor, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	env := Envelope{
		Version:    envelopeVersion,
		EventID:    uuid.NewString(),
		Type:       eventType,
		OccurredAt: p.now().UTC(),
		Actor:      actor,
		Data:       raw,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	attrs := map[string]string{"event_type": string(eventType), "event_id": env.EventID}
	if _, err := p.sender.Publish(ctx, p.topic, body, attrs); err != nil {
		if p.logg != nil {
			logCtx := p.logg.WithFields(ctx, map[string]any{"event_type": string(eventType), "event_id": env.EventID})
			p.logg.Warn(logCtx, "domain event publish failed: "+err.Error())
		}
		return err
	}
	return nil
}
