package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/yourorg/salesman-paypal/internal/logger"
	"github.com/yourorg/salesman-paypal/internal/payable"
	"github.com/yourorg/salesman-paypal/internal/payment"
	"github.com/yourorg/salesman-paypal/internal/paypal"
)

var (
	ErrInvalidReference = errors.New("invalid paypal reference")
	ErrMissingBasket    = errors.New("missing basket")
	ErrMissingOrder     = errors.New("missing order")
	ErrMissingCapture   = errors.New("missing paypal capture")
)

// Fulfiller turns a captured PayPal order into a paid host order.
type Fulfiller struct {
	store      Store
	paidStatus string
}

// NewFulfiller creates a Fulfiller. Orders created from baskets get
// paidStatus.
func NewFulfiller(store Store, paidStatus string) *Fulfiller {
	if store == nil {
		panic("checkout store cannot be nil")
	}
	return &Fulfiller{store: store, paidStatus: paidStatus}
}

// Fulfil resolves the payable the PayPal order was created for, converting a
// basket into an order when needed, and records the capture as a payment.
func (f *Fulfiller) Fulfil(ctx context.Context, paypalOrder *paypal.Order) (*payable.Order, error) {
	ctx, span := otel.Tracer("checkout").Start(ctx, "Fulfiller.Fulfil")
	defer span.End()

	log := logger.FromCtx(ctx)

	if paypalOrder == nil || len(paypalOrder.PurchaseUnits) == 0 {
		return nil, ErrInvalidReference
	}
	span.SetAttributes(attribute.String("paypal.order_id", paypalOrder.ID))

	capture, hasCapture := paypalOrder.FirstCapture()

	// The capture response may only carry custom_id on the capture itself.
	ref := paypalOrder.PurchaseUnits[0].CustomID
	if ref == "" && hasCapture {
		ref = capture.CustomID
	}
	kind, id, ok := payable.ParseReference(ref)
	if !ok {
		log.Error("Invalid paypal reference", zap.String("paypal_order_id", paypalOrder.ID))
		return nil, ErrInvalidReference
	}

	if !hasCapture || capture.Amount == nil {
		log.Error("PayPal order has no capture", zap.String("paypal_order_id", paypalOrder.ID))
		return nil, ErrMissingCapture
	}
	amount, err := decimal.NewFromString(capture.Amount.Value)
	if err != nil {
		return nil, fmt.Errorf("checkout: invalid capture amount %q: %w", capture.Amount.Value, err)
	}

	// Replayed return or capture callbacks get PayPal's cached capture back.
	if paid, err := f.store.OrderByTransaction(capture.ID); err == nil {
		log.Info("Capture already fulfilled", zap.String("order_ref", paid.Ref), zap.String("capture_id", capture.ID))
		return paid, nil
	}

	var order *payable.Order
	switch kind {
	case payable.KindBasket:
		order, err = f.store.ConvertBasket(id, f.paidStatus)
		if errors.Is(err, ErrNotFound) {
			log.Error("Missing basket", zap.String("basket_id", id))
			return nil, ErrMissingBasket
		}
		if err != nil {
			return nil, fmt.Errorf("checkout: convert basket %s: %w", id, err)
		}
	case payable.KindOrder:
		order, err = f.store.Order(id)
		if err != nil {
			log.Error("Missing order", zap.String("order_id", id))
			return nil, ErrMissingOrder
		}
	}

	orderID := order.OrderID
	order, recorded, err := f.store.RecordPayment(orderID, payable.NewPayment(amount, capture.ID, payment.Identifier))
	if err != nil {
		return nil, fmt.Errorf("checkout: record payment on order %s: %w", orderID, err)
	}
	if !recorded {
		log.Info("Capture already fulfilled", zap.String("order_ref", order.Ref), zap.String("capture_id", capture.ID))
		return order, nil
	}

	log.Info("Order fulfilled", zap.String("order_ref", order.Ref), zap.String("capture_id", capture.ID))
	return order, nil
}
