// Package mock provides a scriptable payment.Gateway for tests.
package mock

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yourorg/salesman-paypal/internal/paypal"
)

// Gateway is a mock payment.Gateway. Unset funcs fall back to a happy path.
type Gateway struct {
	CreateOrderFunc   func(ctx context.Context, req paypal.OrderRequest) (*paypal.Order, error)
	CaptureOrderFunc  func(ctx context.Context, orderID, requestID string) (*paypal.Order, error)
	RefundCaptureFunc func(ctx context.Context, captureID string, amount *paypal.Money, requestID string) (*paypal.Refund, error)

	mu       sync.Mutex
	Created  []paypal.OrderRequest
	Captured []string
	Refunded []string
}

// NewGateway creates a mock gateway.
func NewGateway() *Gateway {
	return &Gateway{}
}

func (g *Gateway) CreateOrder(ctx context.Context, req paypal.OrderRequest) (*paypal.Order, error) {
	g.mu.Lock()
	g.Created = append(g.Created, req)
	g.mu.Unlock()

	if g.CreateOrderFunc != nil {
		return g.CreateOrderFunc(ctx, req)
	}
	id := uuid.NewString()
	return &paypal.Order{
		ID:     id,
		Status: paypal.OrderCreated,
		Links:  []paypal.Link{{Href: "https://www.sandbox.paypal.com/checkoutnow?token=" + id, Rel: "approve", Method: "GET"}},
	}, nil
}

func (g *Gateway) CaptureOrder(ctx context.Context, orderID, requestID string) (*paypal.Order, error) {
	g.mu.Lock()
	g.Captured = append(g.Captured, orderID)
	g.mu.Unlock()

	if g.CaptureOrderFunc != nil {
		return g.CaptureOrderFunc(ctx, orderID, requestID)
	}
	return &paypal.Order{ID: orderID, Status: paypal.OrderCompleted}, nil
}

func (g *Gateway) RefundCapture(ctx context.Context, captureID string, amount *paypal.Money, requestID string) (*paypal.Refund, error) {
	g.mu.Lock()
	g.Refunded = append(g.Refunded, captureID)
	g.mu.Unlock()

	if g.RefundCaptureFunc != nil {
		return g.RefundCaptureFunc(ctx, captureID, amount, requestID)
	}
	return &paypal.Refund{ID: "REF-" + captureID, Status: paypal.RefundCompleted}, nil
}
