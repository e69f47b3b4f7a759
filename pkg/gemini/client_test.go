package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/foodlink-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/foodlink-backend/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(context.Background(), config.AIConfig{
		APIKey:   "test-key",
		Model:    "gemini-2.0-flash",
		Endpoint: srv.URL + "/",
		Timeout:  time.Second,
	}, srv.Client(), nil, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestNewClientFailsClosedWithoutKey(t *testing.T) {
	if _, err := NewClient(context.Background(), config.AIConfig{}, nil, nil, nil); err != ErrNotConfigured {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestGenerateSendsSystemInstructionAndHistory(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "models/gemini-2.0-flash:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":" 안녕하세요 "}]}}]}`))
	})

	text, err := c.Generate(context.Background(), "system", []Message{{Role: RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "안녕하세요" {
		t.Fatalf("unexpected text %q", text)
	}
	if body["systemInstruction"] == nil {
		t.Fatal("system instruction missing from request")
	}
	contents, _ := body["contents"].([]any)
	if len(contents) != 1 {
		t.Fatalf("expected one content, got %v", body["contents"])
	}
}

func TestGenerateMapsFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   pkgerrors.Code
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":{"code":429,"message":"quota"}}`, pkgerrors.CodeRateLimit},
		{"server error", http.StatusInternalServerError, `{"error":{"code":500,"message":"internal"}}`, pkgerrors.CodeUpstream},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, pkgerrors.CodeUpstream},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := c.Generate(context.Background(), "", []Message{{Role: RoleUser, Content: "x"}})
			if got := pkgerrors.CodeOf(err); got != tc.want {
				t.Fatalf("expected %s, got %s (%v)", tc.want, got, err)
			}
			if strings.Contains(pkgerrors.As(err).Message(), "quota") || strings.Contains(pkgerrors.As(err).Message(), "internal") {
				t.Fatal("provider body must not leak into the message")
			}
			if tc.want == pkgerrors.CodeRateLimit && pkgerrors.As(err).Message() != pkgerrors.MetadataFor(pkgerrors.CodeRateLimit).PublicMessage {
				t.Fatalf("unexpected rate limit message %q", pkgerrors.As(err).Message())
			}
		})
	}
}
