// Package paypal is a small client for the PayPal Orders v2 and Payments v2
// REST APIs: create order, capture order and refund capture.
//
// Calls are never retried. Any non-2xx answer is returned as *GatewayError.
package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/yourorg/salesman-paypal/internal/logger"
)

const (
	SandboxBaseURL = "https://api-m.sandbox.paypal.com"
	LiveBaseURL    = "https://api-m.paypal.com"

	tokenPath = "/v1/oauth2/token"

	defaultTimeout = 30 * time.Second
)

// Prefer header values.
const (
	PreferRepresentation = "return=representation"
	PreferMinimal        = "return=minimal"
)

// Operation names used in metrics, spans and GatewayError.Operation.
const (
	OpAuthenticate  = "authenticate"
	OpCreateOrder   = "create_order"
	OpCaptureOrder  = "capture_order"
	OpRefundCapture = "refund_capture"
)

var ErrMissingCredentials = errors.New("paypal: client id and secret are required")

// Options configure a Client.
type Options struct {
	ClientID     string
	ClientSecret string
	Sandbox      bool
	// BaseURL overrides the sandbox/live endpoint.
	BaseURL string
	// HTTPClient is the underlying client used for API and token calls.
	// Its transport is wrapped with OAuth2 bearer authentication.
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client talks to the PayPal REST API.
type Client struct {
	httpClient *http.Client
	apiBaseURL string
}

// BaseURLFor returns the API endpoint for sandbox or live mode.
func BaseURLFor(sandbox bool) string {
	if sandbox {
		return SandboxBaseURL
	}
	return LiveBaseURL
}

// NewClient builds a client authenticating with the client credentials grant.
// Tokens are fetched lazily and reused until they expire.
func NewClient(opts Options) (*Client, error) {
	if opts.ClientID == "" || opts.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}

	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = BaseURLFor(opts.Sandbox)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	ctx := context.Background()
	if opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
	}

	cc := clientcredentials.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		TokenURL:     base + tokenPath,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	httpClient := cc.Client(ctx)
	httpClient.Timeout = timeout

	return &Client{
		httpClient: httpClient,
		apiBaseURL: base,
	}, nil
}

// BaseURL is the API endpoint the client talks to.
func (c *Client) BaseURL() string {
	return c.apiBaseURL
}

// CreateOrder creates a checkout order and returns its full representation.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	var order Order
	err := c.do(ctx, call{
		operation: OpCreateOrder,
		path:      "/v2/checkout/orders",
		body:      req,
		prefer:    PreferRepresentation,
	}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CaptureOrder captures payment for an approved order. requestID, when set,
// is sent as PayPal-Request-Id so a repeated capture is answered from
// PayPal's idempotency cache instead of failing.
func (c *Client) CaptureOrder(ctx context.Context, orderID, requestID string) (*Order, error) {
	if orderID == "" {
		return nil, errors.New("paypal: order id is required")
	}
	var order Order
	err := c.do(ctx, call{
		operation: OpCaptureOrder,
		path:      "/v2/checkout/orders/" + url.PathEscape(orderID) + "/capture",
		prefer:    PreferRepresentation,
		requestID: requestID,
	}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// RefundCapture refunds a captured payment. A nil amount refunds it in full.
// PayPal answers with the minimal representation: id, status and links.
func (c *Client) RefundCapture(ctx context.Context, captureID string, amount *Money, requestID string) (*Refund, error) {
	if captureID == "" {
		return nil, errors.New("paypal: capture id is required")
	}
	var refund Refund
	err := c.do(ctx, call{
		operation: OpRefundCapture,
		path:      "/v2/payments/captures/" + url.PathEscape(captureID) + "/refund",
		body:      refundRequest{Amount: amount},
		prefer:    PreferMinimal,
		requestID: requestID,
	}, &refund)
	if err != nil {
		return nil, err
	}
	return &refund, nil
}

type call struct {
	operation string
	path      string
	body      any
	prefer    string
	requestID string
}

func (c *Client) do(ctx context.Context, cl call, out any) error {
	ctx, span := otel.Tracer("paypal").Start(ctx, "paypal."+cl.operation, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("paypal.operation", cl.operation),
		attribute.String("http.url", c.apiBaseURL+cl.path),
	)

	log := logger.FromCtx(ctx).With(zap.String("operation", cl.operation), zap.String("path", cl.path))

	var payload io.Reader
	if cl.body != nil {
		raw, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("paypal: failed to encode %s request: %w", cl.operation, err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBaseURL+cl.path, payload)
	if err != nil {
		return fmt.Errorf("paypal: failed to create %s request: %w", cl.operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if cl.prefer != "" {
		req.Header.Set("Prefer", cl.prefer)
	}
	if cl.requestID != "" {
		req.Header.Set("PayPal-Request-Id", cl.requestID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	gatewayRequestDuration.WithLabelValues(cl.operation).Observe(time.Since(start).Seconds())
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			gwErr := newGatewayError(OpAuthenticate, retrieveErr.Response.StatusCode, retrieveErr.Body)
			gatewayRequestsTotal.WithLabelValues(cl.operation, outcomeGatewayError).Inc()
			span.RecordError(gwErr)
			span.SetStatus(codes.Error, gwErr.Name)
			log.Error("PayPal authentication failed", zap.Int("status", gwErr.StatusCode), zap.String("error", gwErr.Name))
			return gwErr
		}
		gatewayRequestsTotal.WithLabelValues(cl.operation, outcomeTransportError).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		log.Error("PayPal request failed", zap.Error(err))
		return fmt.Errorf("paypal: %s request failed: %w", cl.operation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		gatewayRequestsTotal.WithLabelValues(cl.operation, outcomeTransportError).Inc()
		span.RecordError(err)
		return fmt.Errorf("paypal: failed to read %s response: %w", cl.operation, err)
	}

	debugID := resp.Header.Get("Paypal-Debug-Id")
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode), attribute.String("paypal.debug_id", debugID))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		gwErr := newGatewayError(cl.operation, resp.StatusCode, body)
		if gwErr.DebugID == "" {
			gwErr.DebugID = debugID
		}
		gatewayRequestsTotal.WithLabelValues(cl.operation, outcomeGatewayError).Inc()
		span.RecordError(gwErr)
		span.SetStatus(codes.Error, gwErr.Name)
		log.Error("PayPal returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.String("name", gwErr.Name),
			zap.String("debug_id", gwErr.DebugID),
		)
		return gwErr
	}

	gatewayRequestsTotal.WithLabelValues(cl.operation, outcomeSuccess).Inc()
	log.Info("PayPal request succeeded", zap.Int("status", resp.StatusCode), zap.String("debug_id", debugID))

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("paypal: failed to decode %s response: %w", cl.operation, err)
	}
	return nil
}
