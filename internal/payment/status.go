package payment

import "github.com/yourorg/salesman-paypal/internal/paypal"

// Status is the payment status handed back to the checkout.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
	StatusFailed    Status = "failed"
)

// StatusFromOrder maps a PayPal order status. Only COMPLETED is paid.
func StatusFromOrder(s paypal.OrderStatus) Status {
	switch s {
	case paypal.OrderCompleted:
		return StatusPaid
	case paypal.OrderCreated, paypal.OrderSaved, paypal.OrderApproved, paypal.OrderPayerActionRequired:
		return StatusPending
	case paypal.OrderVoided:
		return StatusCancelled
	default:
		return StatusFailed
	}
}

// StatusFromRefund maps a PayPal refund status.
func StatusFromRefund(s string) Status {
	switch s {
	case paypal.RefundCompleted:
		return StatusRefunded
	case paypal.RefundPending:
		return StatusPending
	case paypal.RefundCancelled:
		return StatusCancelled
	default:
		return StatusFailed
	}
}
