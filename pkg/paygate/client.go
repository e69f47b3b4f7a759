// Package paygate calls the payment gateway's confirm endpoint.
package paygate

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/foodlink-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/foodlink-backend/pkg/errors"
	"github.com/angelmondragon/foodlink-backend/pkg/logger"
	"github.com/angelmondragon/foodlink-backend/pkg/metrics"
)

const (
	upstreamName = "payment_gateway"
	maxBodyBytes = 1 << 20
)

var (
	errSecretKeyRequired  = errors.New("payment gateway secret key is required")
	errGatewayURLRequired = errors.New("payment gateway url is required")
)

// ConfirmRequest is the triple the gateway confirms.
type ConfirmRequest struct {
	PaymentKey string `json:"paymentKey"`
	OrderID    string `json:"orderId"`
	Amount     int64  `json:"amount"`
}

// ConfirmResponse is the accepted shape of a successful confirm call.
// Status and OrderID are required; everything else is optional.
type ConfirmResponse struct {
	Status       string     `json:"status"`
	OrderID      string     `json:"orderId"`
	PaymentKey   string     `json:"paymentKey,omitempty"`
	SettlementID string     `json:"settlementId,omitempty"`
	PaymentID    string     `json:"paymentId,omitempty"`
	TotalAmount  int64      `json:"totalAmount,omitempty"`
	Method       string     `json:"method,omitempty"`
	ApprovedAt   *time.Time `json:"approvedAt,omitempty"`
}

type errorBody struct {
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
}

// Confirmer is the gateway surface the payment service depends on.
type Confirmer interface {
	Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResponse, error)
}

// Client confirms payments over HTTP with a bounded timeout and no retries.
type Client struct {
	httpClient *http.Client
	url        string
	authHeader string
	timeout    time.Duration
	logg       *logger.Logger
	metrics    *metrics.UpstreamMetrics
}

// NewClient validates configuration and builds the gateway client.
func NewClient(cfg config.PaymentsConfig, httpClient *http.Client, logg *logger.Logger, m *metrics.UpstreamMetrics) (*Client, error) {
	secret := strings.TrimSpace(cfg.SecretKey)
	if secret == "" {
		return nil, errSecretKeyRequired
	}
	if strings.TrimSpace(cfg.GatewayURL) == "" {
		return nil, errGatewayURLRequired
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: httpClient,
		url:        cfg.GatewayURL,
		authHeader: "Basic " + base64.StdEncoding.EncodeToString([]byte(secret+":")),
		timeout:    timeout,
		logg:       logg,
		metrics:    m,
	}, nil
}

// Confirm posts the triple to the gateway. Non-2xx responses with a readable
// body become PAYMENT_FAILED carrying the gateway's message and details; a 429
// becomes RATE_LIMIT_EXCEEDED; transport failures and malformed bodies become
// UPSTREAM_ERROR.
func (c *Client) Confirm(ctx context.Context, req ConfirmRequest) (resp *ConfirmResponse, err error) {
	started := time.Now()
	defer func() { c.metrics.Observe(upstreamName, started, err) }()

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode confirm request")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build confirm request")
	}
	httpReq.Header.Set("Authorization", c.authHeader)
	httpReq.Header.Set("Content-Type", "application/json")

	c.log(ctx, "request", map[string]any{"order_id": req.OrderID, "amount": req.Amount})

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logError(ctx, "gateway transport failure", err, req)
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "payment gateway unreachable")
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		c.logError(ctx, "gateway read failure", err, req)
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "read payment gateway response")
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, c.mapFailure(ctx, res.StatusCode, body, req)
	}

	var out ConfirmResponse
	if err := json.Unmarshal(body, &out); err != nil {
		c.logError(ctx, "gateway returned malformed body", err, req)
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "malformed payment gateway response")
	}
	if strings.TrimSpace(out.Status) == "" || strings.TrimSpace(out.OrderID) == "" {
		err := fmt.Errorf("gateway response missing status or orderId")
		c.logError(ctx, "gateway returned incomplete body", err, req)
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "malformed payment gateway response")
	}

	c.log(ctx, "response", map[string]any{"order_id": out.OrderID, "status": out.Status})
	return &out, nil
}

func (c *Client) mapFailure(ctx context.Context, status int, body []byte, req ConfirmRequest) error {
	var eb errorBody
	parseErr := json.Unmarshal(body, &eb)
	message := strings.TrimSpace(eb.Error)
	if message == "" {
		message = strings.TrimSpace(eb.Message)
	}

	cause := fmt.Errorf("gateway status %d: %s", status, strings.TrimSpace(string(body)))
	c.logError(ctx, "gateway rejected confirmation", cause, req)

	if status == http.StatusTooManyRequests {
		return pkgerrors.Wrap(pkgerrors.CodeRateLimit, cause, pkgerrors.MetadataFor(pkgerrors.CodeRateLimit).PublicMessage)
	}
	if parseErr != nil || message == "" {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, cause, "payment gateway failure")
	}

	details := map[string]any{"gatewayStatus": status}
	if eb.Code != "" {
		details["gatewayCode"] = eb.Code
	}
	if len(eb.Details) > 0 && string(eb.Details) != "null" {
		details["details"] = eb.Details
	}
	return pkgerrors.Wrap(pkgerrors.CodePaymentFailed, cause, message).WithDetails(details)
}

func (c *Client) log(ctx context.Context, phase string, fields map[string]any) {
	if c.logg == nil {
		return
	}
	fields["phase"] = phase
	fields["upstream"] = upstreamName
	c.logg.Info(c.logg.WithFields(ctx, fields), "payment gateway "+phase)
}

func (c *Client) logError(ctx context.Context, msg string, err error, req ConfirmRequest) {
	if c.logg == nil {
		return
	}
	ctx = c.logg.WithFields(ctx, map[string]any{
		"upstream": upstreamName,
		"order_id": req.OrderID,
		"amount":   req.Amount,
	})
	c.logg.Error(ctx, msg, err)
}
