// Package payment is the PayPal payment method: it turns baskets and orders
// into PayPal orders, captures them and refunds captures, reporting results
// as checkout payment statuses.
package payment

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/yourorg/salesman-paypal/internal/config"
	"github.com/yourorg/salesman-paypal/internal/logger"
	"github.com/yourorg/salesman-paypal/internal/payable"
	"github.com/yourorg/salesman-paypal/internal/paypal"
)

// Identifier is the payment method id stored on order payments.
const Identifier = "paypal"

// Callback routes registered by the payment method.
const (
	ReturnPath  = "/paypal/return/"
	CancelPath  = "/paypal/cancel/"
	CapturePath = "/paypal/capture/:order_id/"
)

// idempotencyNamespace seeds the deterministic PayPal-Request-Id values.
var idempotencyNamespace = uuid.MustParse("0b0a7cf4-6a5e-4bd4-9d5e-2c6c3f1f4e11")

var paymentStatusTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "salesman_paypal_payment_status_total",
		Help: "Payment statuses reported to the checkout, by operation.",
	},
	[]string{"operation", "status"},
)

// GetPaymentStatusTotal exposes the status counter for tests.
func GetPaymentStatusTotal() *prometheus.CounterVec {
	return paymentStatusTotal
}

// Gateway is the part of the PayPal API the payment method needs.
// *paypal.Client implements it.
type Gateway interface {
	CreateOrder(ctx context.Context, req paypal.OrderRequest) (*paypal.Order, error)
	CaptureOrder(ctx context.Context, orderID, requestID string) (*paypal.Order, error)
	RefundCapture(ctx context.Context, captureID string, amount *paypal.Money, requestID string) (*paypal.Refund, error)
}

// CaptureResult is the outcome of capturing a PayPal order.
type CaptureResult struct {
	Status Status        `json:"status"`
	Order  *paypal.Order `json:"order"`
}

// Capture returns the first capture of the order, if PayPal made one.
func (r CaptureResult) Capture() (*paypal.Capture, bool) {
	if r.Order == nil {
		return nil, false
	}
	return r.Order.FirstCapture()
}

// RefundResult serialises to exactly {"status", "refund_id"}.
type RefundResult struct {
	Status   Status `json:"status"`
	RefundID string `json:"refund_id"`
}

// PayPalPayment is the PayPal payment method.
type PayPalPayment struct {
	gateway         Gateway
	label           string
	defaultCurrency string
}

// NewPayPalPayment creates the payment method from settings.
func NewPayPalPayment(gw Gateway, settings *config.Settings) *PayPalPayment {
	if gw == nil {
		panic("payment gateway cannot be nil")
	}
	if settings == nil {
		panic("settings cannot be nil")
	}
	return &PayPalPayment{
		gateway:         gw,
		label:           settings.PaymentLabel,
		defaultCurrency: settings.DefaultCurrency,
	}
}

// NewGateway builds the PayPal API client the settings describe.
func NewGateway(settings *config.Settings) (*paypal.Client, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return paypal.NewClient(paypal.Options{
		ClientID:     settings.ClientID,
		ClientSecret: settings.ClientSecret,
		Sandbox:      settings.SandboxMode,
		BaseURL:      settings.APIBase,
	})
}

func (p *PayPalPayment) Identifier() string { return Identifier }

// Label is shown to the shopper when choosing a payment method.
func (p *PayPalPayment) Label() string { return p.label }

// GetCurrency returns the ISO currency for the request: its override when
// present, the configured default otherwise. Unsupported currencies are a
// ValidationError, never silently replaced.
func (p *PayPalPayment) GetCurrency(req Request) (string, error) {
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = strings.ToUpper(p.defaultCurrency)
	}
	if !paypal.SupportedCurrency(currency) {
		return "", invalid("currency", "%q is not supported by PayPal", currency)
	}
	return currency, nil
}

// BasketPayment starts a PayPal payment for a basket.
func (p *PayPalPayment) BasketPayment(ctx context.Context, basket *payable.Basket, req Request) (*paypal.Order, error) {
	return p.ProcessPayment(ctx, basket, req)
}

// OrderPayment starts a PayPal payment for an existing order.
func (p *PayPalPayment) OrderPayment(ctx context.Context, order *payable.Order, req Request) (*paypal.Order, error) {
	return p.ProcessPayment(ctx, order, req)
}

// ProcessPayment creates a PayPal order for the payable and returns it as
// PayPal represents it, including the "approve" link.
func (p *PayPalPayment) ProcessPayment(ctx context.Context, obj payable.Payable, req Request) (*paypal.Order, error) {
	ctx, span := otel.Tracer("payment").Start(ctx, "PayPalPayment.ProcessPayment")
	defer span.End()
	span.SetAttributes(attribute.String("payable.reference", payable.Reference(obj)))

	log := logger.FromCtx(ctx).With(zap.String("reference", payable.Reference(obj)))

	payload, err := p.BuildOrderPayload(obj, req)
	if err != nil {
		span.RecordError(err)
		log.Warn("Rejected payable", zap.Error(err))
		return nil, err
	}

	order, err := p.gateway.CreateOrder(ctx, payload)
	if err != nil {
		span.RecordError(err)
		log.Error("Failed to create PayPal order", zap.Error(err))
		return nil, &PaymentError{Op: "create order", Err: err}
	}

	paymentStatusTotal.WithLabelValues("create", string(StatusFromOrder(order.Status))).Inc()
	log.Info("Created PayPal order", zap.String("paypal_order_id", order.ID), zap.String("status", string(order.Status)))
	return order, nil
}

// CreateOrder creates a PayPal order and returns its id.
func (p *PayPalPayment) CreateOrder(ctx context.Context, obj payable.Payable, req Request) (string, error) {
	order, err := p.ProcessPayment(ctx, obj, req)
	if err != nil {
		return "", err
	}
	return order.ID, nil
}

// CaptureOrder captures an approved PayPal order. The status is paid if and
// only if PayPal reports the order COMPLETED. Gateway errors are returned
// unchanged.
func (p *PayPalPayment) CaptureOrder(ctx context.Context, orderID string) (CaptureResult, error) {
	ctx, span := otel.Tracer("payment").Start(ctx, "PayPalPayment.CaptureOrder")
	defer span.End()
	span.SetAttributes(attribute.String("paypal.order_id", orderID))

	if strings.TrimSpace(orderID) == "" {
		return CaptureResult{}, invalid("order_id", "is required")
	}

	order, err := p.gateway.CaptureOrder(ctx, orderID, requestID("capture", orderID))
	if err != nil {
		span.RecordError(err)
		logger.FromCtx(ctx).Error("Failed to capture PayPal order", zap.String("paypal_order_id", orderID), zap.Error(err))
		return CaptureResult{}, err
	}

	status := StatusFromOrder(order.Status)
	paymentStatusTotal.WithLabelValues("capture", string(status)).Inc()
	span.SetAttributes(attribute.String("payment.status", string(status)))
	return CaptureResult{Status: status, Order: order}, nil
}

// RefundPayment refunds a capture. A zero amount refunds the full capture.
func (p *PayPalPayment) RefundPayment(ctx context.Context, captureID string, amount decimal.Decimal, currency string) (RefundResult, error) {
	ctx, span := otel.Tracer("payment").Start(ctx, "PayPalPayment.RefundPayment")
	defer span.End()
	span.SetAttributes(attribute.String("paypal.capture_id", captureID))

	if strings.TrimSpace(captureID) == "" {
		return RefundResult{}, invalid("capture_id", "is required")
	}
	if amount.IsNegative() {
		return RefundResult{}, invalid("amount", "must not be negative, got %s", amount.String())
	}

	var value *paypal.Money
	if amount.IsPositive() {
		code, err := p.GetCurrency(Request{Currency: currency})
		if err != nil {
			return RefundResult{}, err
		}
		if err := checkPrecision("amount", amount, code); err != nil {
			return RefundResult{}, err
		}
		value = money(amount, code)
	}

	refund, err := p.gateway.RefundCapture(ctx, captureID, value, "")
	if err != nil {
		span.RecordError(err)
		logger.FromCtx(ctx).Error("Failed to refund PayPal capture", zap.String("capture_id", captureID), zap.Error(err))
		return RefundResult{}, err
	}

	status := StatusFromRefund(refund.Status)
	paymentStatusTotal.WithLabelValues("refund", string(status)).Inc()
	return RefundResult{Status: status, RefundID: refund.ID}, nil
}

// requestID derives a stable PayPal-Request-Id so replaying the same
// operation on the same resource is deduplicated by PayPal.
func requestID(operation, resourceID string) string {
	return uuid.NewSHA1(idempotencyNamespace, []byte(operation+":"+resourceID)).String()
}
