package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourorg/salesman-paypal/internal/paypal"
)

func TestStatusFromOrder(t *testing.T) {
	cases := map[paypal.OrderStatus]Status{
		paypal.OrderCompleted:           StatusPaid,
		paypal.OrderCreated:             StatusPending,
		paypal.OrderSaved:               StatusPending,
		paypal.OrderApproved:            StatusPending,
		paypal.OrderPayerActionRequired: StatusPending,
		paypal.OrderVoided:              StatusCancelled,
		"":                              StatusFailed,
		"SOMETHING_NEW":                 StatusFailed,
	}
	for in, want := range cases {
		assert.Equal(t, want, StatusFromOrder(in), "order status %q", in)
		assert.Equal(t, in == paypal.OrderCompleted, StatusFromOrder(in) == StatusPaid)
	}
}

func TestStatusFromRefund(t *testing.T) {
	assert.Equal(t, StatusRefunded, StatusFromRefund(paypal.RefundCompleted))
	assert.Equal(t, StatusPending, StatusFromRefund(paypal.RefundPending))
	assert.Equal(t, StatusCancelled, StatusFromRefund(paypal.RefundCancelled))
	assert.Equal(t, StatusFailed, StatusFromRefund(paypal.RefundFailed))
	assert.Equal(t, StatusFailed, StatusFromRefund("WHATEVER"))
}
