package payable

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleItems() []LineItem {
	return []LineItem{
		{Name: "Mug", UnitPrice: decimal.RequireFromString("10.00"), Quantity: 2, ProductRef: "mug"},
		{Name: "Sticker", UnitPrice: decimal.RequireFromString("5.00"), Quantity: 1, ProductRef: "sticker"},
	}
}

func TestBasketTotal(t *testing.T) {
	b := &Basket{BasketID: "1", LineItems: sampleItems()}
	assert.True(t, b.Total().Equal(decimal.RequireFromString("25.00")))
	assert.Equal(t, KindBasket, b.Kind())
}

func TestUserFullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", (&User{FirstName: "Ada", LastName: "Lovelace"}).FullName())
	assert.Equal(t, "Ada", (&User{FirstName: "Ada"}).FullName())
	var nobody *User
	assert.Empty(t, nobody.FullName())
}

func TestNewOrderFromBasket(t *testing.T) {
	b := &Basket{BasketID: "7", Contact: "a@example.com", Curr: "USD", LineItems: sampleItems()}
	o := NewOrderFromBasket(b, "PROCESSING")

	assert.NotEmpty(t, o.OrderID)
	assert.NotEmpty(t, o.Ref)
	assert.Equal(t, "PROCESSING", o.Status)
	assert.Equal(t, "a@example.com", o.Email())
	assert.True(t, o.Total().Equal(b.Total()))

	// items are copied, not shared
	o.LineItems[0].Quantity = 9
	assert.Equal(t, 2, b.LineItems[0].Quantity)
}

func TestOrderPay(t *testing.T) {
	o := &Order{OrderID: "1", LineItems: sampleItems()}
	o.Pay(decimal.RequireFromString("20.00"), "CAP-1", "paypal")
	o.Pay(decimal.RequireFromString("5.00"), "CAP-2", "paypal")

	assert.True(t, o.AmountPaid().Equal(decimal.RequireFromString("25.00")))
	p, ok := o.FindPayment("CAP-2")
	require.True(t, ok)
	assert.Equal(t, "paypal", p.Method)
	_, ok = o.FindPayment("CAP-3")
	assert.False(t, ok)
}

func TestReference(t *testing.T) {
	assert.Equal(t, "basket_12", Reference(&Basket{BasketID: "12"}))
	assert.Equal(t, "order_34", Reference(&Order{OrderID: "34"}))
}

func TestParseReference(t *testing.T) {
	tests := []struct {
		in   string
		kind Kind
		id   string
		ok   bool
	}{
		{"basket_12", KindBasket, "12", true},
		{"order_abc", KindOrder, "abc", true},
		{"cart_12", "", "", false},
		{"order_", "", "", false},
		{"order_1_2", KindOrder, "1_2", true},
		{"basket__", KindBasket, "_", true},
		{"order", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			kind, id, ok := ParseReference(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.id, id)
		})
	}
}

func TestReference_RoundTrip(t *testing.T) {
	payables := []Payable{
		&Basket{BasketID: "42"},
		&Basket{BasketID: "cart_1"},
		&Basket{BasketID: "session_abc_def"},
		&Order{OrderID: "2024_ORD_7"},
		&Order{OrderID: "9f1c2b6e-0d4a-4a8e-9f0e-3c1d2b4a5e6f"},
	}
	for _, p := range payables {
		t.Run(Reference(p), func(t *testing.T) {
			kind, id, ok := ParseReference(Reference(p))
			require.True(t, ok)
			assert.Equal(t, p.Kind(), kind)
			assert.Equal(t, p.ID(), id)
		})
	}
}

func TestOrderClone(t *testing.T) {
	o := &Order{
		OrderID:   "1",
		Owner:     &User{Username: "alice"},
		LineItems: sampleItems(),
	}
	o.Pay(decimal.RequireFromString("25"), "CAP-1", "paypal")

	c := o.Clone()
	require.Equal(t, o, c)

	c.Pay(decimal.RequireFromString("1"), "CAP-2", "paypal")
	c.LineItems[0].Quantity = 99
	c.Owner.Username = "mallory"

	assert.Len(t, o.Payments, 1)
	assert.Equal(t, 2, o.LineItems[0].Quantity)
	assert.Equal(t, "alice", o.Owner.Username)
}
