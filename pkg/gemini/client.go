// Package gemini wraps the Generative Language API for single-shot text
// generation.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/angelmondragon/foodlink-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/foodlink-backend/pkg/errors"
	"github.com/angelmondragon/foodlink-backend/pkg/logger"
	"github.com/angelmondragon/foodlink-backend/pkg/metrics"
)

const upstreamName = "generative_ai"

// Role of a conversation turn.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ErrNotConfigured is returned when no API key is configured.
var ErrNotConfigured = errors.New("generative ai api key is not configured")

// Message is one conversation turn.
type Message struct {
	Role    string
	Content string
}

// Generator produces a reply for a system instruction and history.
type Generator interface {
	Generate(ctx context.Context, systemInstruction string, messages []Message) (string, error)
}

// Client calls generateContent once per invocation with a bounded timeout.
type Client struct {
	svc     *generativelanguage.Service
	model   string
	timeout time.Duration
	logg    *logger.Logger
	metrics *metrics.UpstreamMetrics
}

// NewClient builds the client. It returns ErrNotConfigured when cfg has no
// API key so callers can fail closed.
func NewClient(ctx context.Context, cfg config.AIConfig, httpClient *http.Client, logg *logger.Logger, m *metrics.UpstreamMetrics) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, ErrNotConfigured
	}
	opts := []option.ClientOption{option.WithAPIKey(key)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	svc, err := generativelanguage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating generative language service: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	model := cfg.Model
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}
	return &Client{svc: svc, model: model, timeout: timeout, logg: logg, metrics: m}, nil
}

// Generate returns the first candidate's text. Provider failures are logged
// here and returned as UPSTREAM_ERROR (or RATE_LIMIT_EXCEEDED on 429) without
// the provider body.
func (c *Client) Generate(ctx context.Context, systemInstruction string, messages []Message) (text string, err error) {
	started := time.Now()
	defer func() { c.metrics.Observe(upstreamName, started, err) }()

	req := &generativelanguage.GenerateContentRequest{
		Contents: make([]*generativelanguage.Content, 0, len(messages)),
	}
	if systemInstruction != "" {
		req.SystemInstruction = &generativelanguage.Content{
			Parts: []*generativelanguage.Part{{Text: systemInstruction}},
		}
	}
	for _, m := range messages {
		req.Contents = append(req.Contents, &generativelanguage.Content{
			Role:  m.Role,
			Parts: []*generativelanguage.Part{{Text: m.Content}},
		})
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.svc.Models.GenerateContent(c.model, req).Context(ctx).Do()
	if err != nil {
		c.logError(ctx, "generate content failed", err)
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
			return "", pkgerrors.Wrap(pkgerrors.CodeRateLimit, err, pkgerrors.MetadataFor(pkgerrors.CodeRateLimit).PublicMessage)
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "generative provider failure")
	}

	text = firstText(resp)
	if text == "" {
		err := errors.New("empty candidate text")
		c.logError(ctx, "generate content returned no text", err)
		return "", pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "generative provider returned no text")
	}
	return text, nil
}

func firstText(resp *generativelanguage.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil || len(cand.Content.Parts) == 0 || cand.Content.Parts[0] == nil {
		return ""
	}
	return strings.TrimSpace(cand.Content.Parts[0].Text)
}

func (c *Client) logError(ctx context.Context, msg string, err error) {
	if c.logg == nil {
		return
	}
	ctx = c.logg.WithFields(ctx, map[string]any{"upstream": upstreamName, "model": c.model})
	c.logg.Error(ctx, msg, err)
}
