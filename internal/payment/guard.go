package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/yourorg/salesman-paypal/internal/circuitbreaker"
	"github.com/yourorg/salesman-paypal/internal/logger"
	"github.com/yourorg/salesman-paypal/internal/paypal"
)

// ErrGatewayUnavailable is returned without calling PayPal while the circuit
// for the operation is open.
var ErrGatewayUnavailable = errors.New("paypal is temporarily unavailable")

// GuardedGateway stops calling a PayPal operation after repeated outages.
// Only transport errors, 429 and 5xx answers count as failures; PayPal
// rejecting a request (a 4xx) means the API is healthy.
type GuardedGateway struct {
	next    Gateway
	breaker *circuitbreaker.CircuitBreaker
}

// NewGuardedGateway wraps next with breaker.
func NewGuardedGateway(next Gateway, breaker *circuitbreaker.CircuitBreaker) *GuardedGateway {
	if next == nil || breaker == nil {
		panic("payment: NewGuardedGateway requires a gateway and a circuit breaker")
	}
	return &GuardedGateway{next: next, breaker: breaker}
}

func (g *GuardedGateway) CreateOrder(ctx context.Context, req paypal.OrderRequest) (*paypal.Order, error) {
	if err := g.allow(ctx, paypal.OpCreateOrder); err != nil {
		return nil, err
	}
	order, err := g.next.CreateOrder(ctx, req)
	g.record(paypal.OpCreateOrder, err)
	return order, err
}

func (g *GuardedGateway) CaptureOrder(ctx context.Context, orderID, requestID string) (*paypal.Order, error) {
	if err := g.allow(ctx, paypal.OpCaptureOrder); err != nil {
		return nil, err
	}
	order, err := g.next.CaptureOrder(ctx, orderID, requestID)
	g.record(paypal.OpCaptureOrder, err)
	return order, err
}

func (g *GuardedGateway) RefundCapture(ctx context.Context, captureID string, amount *paypal.Money, requestID string) (*paypal.Refund, error) {
	if err := g.allow(ctx, paypal.OpRefundCapture); err != nil {
		return nil, err
	}
	refund, err := g.next.RefundCapture(ctx, captureID, amount, requestID)
	g.record(paypal.OpRefundCapture, err)
	return refund, err
}

func (g *GuardedGateway) allow(ctx context.Context, op string) error {
	if g.breaker.AllowRequest(op) {
		return nil
	}
	logger.FromCtx(ctx).Warn("PayPal circuit open, rejecting call", zap.String("operation", op))
	return fmt.Errorf("%s: %w", op, ErrGatewayUnavailable)
}

func (g *GuardedGateway) record(op string, err error) {
	switch {
	case err == nil:
		g.breaker.RecordSuccess(op)
	case errors.Is(err, context.Canceled):
		// the caller went away; says nothing about PayPal
	case isOutage(err):
		g.breaker.RecordFailure(op)
	default:
		g.breaker.RecordSuccess(op)
	}
}

func isOutage(err error) bool {
	var gwErr *paypal.GatewayError
	if !errors.As(err, &gwErr) {
		return true
	}
	return gwErr.StatusCode >= http.StatusInternalServerError || gwErr.StatusCode == http.StatusTooManyRequests
}
