package pubsub

import (
	"context"
	"testing"

	"github.com/angelmondragon/foodlink-backend/pkg/config"
)

func TestTopicResourceName(t *testing.T) {
	c := &Client{projectID: "foodlink-dev"}
	cases := map[string]string{
		"domain-events":                        "projects/foodlink-dev/topics/domain-events",
		" domain-events ":                      "projects/foodlink-dev/topics/domain-events",
		"projects/other/topics/domain-events": "projects/other/topics/domain-events",
		"":                                     "",
	}
	for in, want := range cases {
		if got := c.topicResourceName(in); got != want {
			t.Fatalf("topicResourceName(%q) = %q, want %q", in, got, want)
		}
	}

	var nilClient *Client
	if nilClient.topicResourceName("x") != "" {
		t.Fatal("nil client should not build names")
	}
}

func TestNewClientRequiresProject(t *testing.T) {
	if _, err := NewClient(context.Background(), config.PubSubConfig{DomainTopic: "t"}, nil); err != errProjectIDRequired {
		t.Fatalf("expected project id error, got %v", err)
	}
}

func TestPublishWithoutClientFails(t *testing.T) {
	var c *Client
	if _, err := c.Publish(context.Background(), "topic", []byte("{}"), nil); err == nil {
		t.Fatal("expected error from nil client")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("nil close should be a no-op: %v", err)
	}
}
