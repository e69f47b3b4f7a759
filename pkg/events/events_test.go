package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type stubSender struct {
	topic string
	body  []byte
	attrs map[string]string
	err   error
}

func (s *stubSender) Publish(_ context.Context, topic string, data []byte, attrs map[string]string) (string, error) {
	s.topic = topic
	s.body = data
	s.attrs = attrs
	return "msg-1", s.err
}

func TestTopicPublisherWrapsEnvelope(t *testing.T) {
	sender := &stubSender{}
	pub, err := NewTopicPublisher(sender, "domain-events", nil)
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	fixed := time.Date(2026, 1, 9, 12, 0, 0, 0, time.UTC)
	pub.now = func() time.Time { return fixed }

	actor := &Actor{ProfileID: uuid.New(), Role: "retailer"}
	if err := pub.Publish(context.Background(), OrderConfirmed, actor, map[string]string{"orderId": "O1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if sender.topic != "domain-events" {
		t.Fatalf("unexpected topic %q", sender.topic)
	}
	if sender.attrs["event_type"] != string(OrderConfirmed) {
		t.Fatalf("missing event_type attribute: %v", sender.attrs)
	}

	var env Envelope
	if err := json.Unmarshal(sender.body, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Version != 1 || env.Type != OrderConfirmed || env.EventID == "" || !env.OccurredAt.Equal(fixed) {
		t.Fatalf("unexpected envelope %+v", env)
	}
	if env.Actor == nil || env.Actor.ProfileID != actor.ProfileID {
		t.Fatalf("actor not preserved")
	}
	if string(env.Data) != `{"orderId":"O1"}` {
		t.Fatalf("unexpected data %s", env.Data)
	}
}

func TestTopicPublisherReturnsSendError(t *testing.T) {
	sender := &stubSender{err: errors.New("unavailable")}
	pub, _ := NewTopicPublisher(sender, "domain-events", nil)
	if err := pub.Publish(context.Background(), InquiryCreated, nil, struct{}{}); err == nil {
		t.Fatal("expected send error")
	}
}

func TestNewTopicPublisherValidates(t *testing.T) {
	if _, err := NewTopicPublisher(nil, "t", nil); err == nil {
		t.Fatal("expected sender error")
	}
	if _, err := NewTopicPublisher(&stubSender{}, "", nil); err == nil {
		t.Fatal("expected topic error")
	}
	if err := (Noop{}).Publish(context.Background(), OrderCancelled, nil, nil); err != nil {
		t.Fatalf("noop should not fail: %v", err)
	}
}
