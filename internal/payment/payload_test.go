package payment

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/salesman-paypal/internal/config"
	"github.com/yourorg/salesman-paypal/internal/payable"
	"github.com/yourorg/salesman-paypal/internal/payment/mock"
	"github.com/yourorg/salesman-paypal/internal/paypal"
)

func newTestPayment(currency string) *PayPalPayment {
	return NewPayPalPayment(mock.NewGateway(), &config.Settings{
		PaymentLabel:    config.DefaultPaymentLabel,
		DefaultCurrency: currency,
	})
}

func twoItemBasket() *payable.Basket {
	return &payable.Basket{
		BasketID: "42",
		Contact:  "guest@example.com",
		LineItems: []payable.LineItem{
			{Name: "Mug", UnitPrice: decimal.RequireFromString("10"), Quantity: 2, ProductRef: "mug"},
			{Name: "Sticker", UnitPrice: decimal.RequireFromString("5"), Quantity: 1, ProductRef: "sticker"},
		},
	}
}

func requireValidationError(t *testing.T, err error, field string) {
	t.Helper()
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr), "expected ValidationError, got %v", err)
	assert.Equal(t, field, vErr.Field)
}

func TestBuildOrderPayload_TwoItemBasket(t *testing.T) {
	p := newTestPayment("USD")

	payload, err := p.BuildOrderPayload(twoItemBasket(), Request{BaseURL: "https://shop.example"})
	require.NoError(t, err)

	assert.Equal(t, paypal.IntentCapture, payload.Intent)
	require.Len(t, payload.PurchaseUnits, 1)
	unit := payload.PurchaseUnits[0]

	assert.Equal(t, "basket_42", unit.CustomID)
	assert.Equal(t, "USD", unit.Amount.CurrencyCode)
	assert.Equal(t, "25.00", unit.Amount.Value)
	assert.Equal(t, &paypal.Money{CurrencyCode: "USD", Value: "25.00"}, unit.Amount.Breakdown.ItemTotal)
	assert.Equal(t, "2x Mug, 1x Sticker", unit.Description)

	require.Len(t, unit.Items, 2)
	assert.Equal(t, paypal.Item{
		Name:       "Mug",
		UnitAmount: &paypal.Money{CurrencyCode: "USD", Value: "10.00"},
		Quantity:   "2",
		SKU:        "mug",
	}, unit.Items[0])
	assert.Equal(t, "1", unit.Items[1].Quantity)

	assert.Equal(t, "https://shop.example/paypal/return/", payload.ApplicationContext.ReturnURL)
	assert.Equal(t, "https://shop.example/paypal/cancel/", payload.ApplicationContext.CancelURL)
}

func TestBuildOrderPayload_ItemTotalMatchesTotal(t *testing.T) {
	p := newTestPayment("EUR")
	baskets := []*payable.Basket{
		twoItemBasket(),
		{BasketID: "1", LineItems: []payable.LineItem{{Name: "A", UnitPrice: decimal.RequireFromString("0.01"), Quantity: 99}}},
		{BasketID: "2", LineItems: []payable.LineItem{
			{Name: "A", UnitPrice: decimal.RequireFromString("19.99"), Quantity: 3},
			{Name: "B", UnitPrice: decimal.RequireFromString("0.00"), Quantity: 1},
			{Name: "C", UnitPrice: decimal.RequireFromString("1234.5"), Quantity: 7},
		}},
	}

	for _, b := range baskets {
		payload, err := p.BuildOrderPayload(b, Request{})
		require.NoError(t, err)
		unit := payload.PurchaseUnits[0]

		sum := decimal.Zero
		for _, item := range unit.Items {
			qty, err := decimal.NewFromString(item.Quantity)
			require.NoError(t, err)
			sum = sum.Add(decimal.RequireFromString(item.UnitAmount.Value).Mul(qty))
		}
		assert.True(t, sum.Equal(b.Total()), "items sum %s, total %s", sum, b.Total())
		assert.Equal(t, b.Total().StringFixed(2), unit.Amount.Breakdown.ItemTotal.Value)
		assert.Equal(t, b.Total().StringFixed(2), unit.Amount.Value)
	}
}

func TestBuildOrderPayload_Payer(t *testing.T) {
	p := newTestPayment("USD")

	t.Run("Anonymous", func(t *testing.T) {
		payload, err := p.BuildOrderPayload(twoItemBasket(), Request{})
		require.NoError(t, err)
		assert.Equal(t, &paypal.Payer{EmailAddress: "guest@example.com"}, payload.Payer)
		assert.Nil(t, payload.PurchaseUnits[0].Shipping)
		assert.Nil(t, payload.ApplicationContext)
	})

	t.Run("AuthenticatedUser", func(t *testing.T) {
		user := &payable.User{Username: "ada", Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace"}
		payload, err := p.BuildOrderPayload(twoItemBasket(), Request{User: user})
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", payload.Payer.EmailAddress)
		assert.Equal(t, &paypal.Name{GivenName: "Ada", Surname: "Lovelace"}, payload.Payer.Name)
		assert.Equal(t, "Ada Lovelace", payload.PurchaseUnits[0].Shipping.Name.FullName)
	})

	t.Run("UsernameFallback", func(t *testing.T) {
		payload, err := p.BuildOrderPayload(twoItemBasket(), Request{User: &payable.User{Username: "ada"}})
		require.NoError(t, err)
		assert.Equal(t, "guest@example.com", payload.Payer.EmailAddress)
		assert.Equal(t, &paypal.Name{GivenName: "ada"}, payload.Payer.Name)
		assert.Nil(t, payload.PurchaseUnits[0].Shipping)
	})

	t.Run("PayableOwner", func(t *testing.T) {
		b := twoItemBasket()
		b.Owner = &payable.User{Username: "grace", FirstName: "Grace", Email: "grace@example.com"}
		payload, err := p.BuildOrderPayload(b, Request{})
		require.NoError(t, err)
		assert.Equal(t, "grace@example.com", payload.Payer.EmailAddress)
		assert.Equal(t, "Grace", payload.Payer.Name.GivenName)
	})
}

func TestBuildOrderPayload_Validation(t *testing.T) {
	p := newTestPayment("USD")

	t.Run("UnsupportedCurrency", func(t *testing.T) {
		_, err := p.BuildOrderPayload(twoItemBasket(), Request{Currency: "XYZ"})
		requireValidationError(t, err, "currency")
	})

	t.Run("UnsupportedDefaultCurrency", func(t *testing.T) {
		_, err := newTestPayment("RUB").BuildOrderPayload(twoItemBasket(), Request{})
		requireValidationError(t, err, "currency")
	})

	t.Run("PayableCurrencyMismatch", func(t *testing.T) {
		b := twoItemBasket()
		b.Curr = "EUR"
		_, err := p.BuildOrderPayload(b, Request{})
		requireValidationError(t, err, "currency")
	})

	t.Run("ZeroTotal", func(t *testing.T) {
		_, err := p.BuildOrderPayload(&payable.Basket{BasketID: "1"}, Request{})
		requireValidationError(t, err, "total")
	})

	t.Run("NegativeTotal", func(t *testing.T) {
		b := &payable.Basket{BasketID: "1", LineItems: []payable.LineItem{{Name: "Credit", UnitPrice: decimal.RequireFromString("-5"), Quantity: 1}}}
		_, err := p.BuildOrderPayload(b, Request{})
		requireValidationError(t, err, "total")
	})

	t.Run("ZeroQuantity", func(t *testing.T) {
		b := twoItemBasket()
		b.LineItems = append(b.LineItems, payable.LineItem{Name: "Ghost", UnitPrice: decimal.RequireFromString("3"), Quantity: 0})
		_, err := p.BuildOrderPayload(b, Request{})
		requireValidationError(t, err, "items[2].quantity")
	})

	t.Run("TooPrecise", func(t *testing.T) {
		b := &payable.Basket{BasketID: "1", LineItems: []payable.LineItem{{Name: "A", UnitPrice: decimal.RequireFromString("1.005"), Quantity: 1}}}
		_, err := p.BuildOrderPayload(b, Request{})
		requireValidationError(t, err, "total")
	})

	t.Run("ZeroDecimalCurrency", func(t *testing.T) {
		b := &payable.Basket{BasketID: "1", LineItems: []payable.LineItem{{Name: "A", UnitPrice: decimal.RequireFromString("100.5"), Quantity: 2}}}
		_, err := p.BuildOrderPayload(b, Request{Currency: "jpy"})
		requireValidationError(t, err, "items[0].unit_price")
	})
}

func TestBuildOrderPayload_ZeroDecimalCurrencyFormatting(t *testing.T) {
	p := newTestPayment("JPY")
	b := &payable.Basket{BasketID: "1", LineItems: []payable.LineItem{{Name: "Tea", UnitPrice: decimal.RequireFromString("500"), Quantity: 3}}}

	payload, err := p.BuildOrderPayload(b, Request{})
	require.NoError(t, err)
	assert.Equal(t, "1500", payload.PurchaseUnits[0].Amount.Value)
	assert.Equal(t, "500", payload.PurchaseUnits[0].Items[0].UnitAmount.Value)
}

func TestBuildOrderPayload_TruncatesLongText(t *testing.T) {
	p := newTestPayment("USD")
	long := strings.Repeat("ä", 200)
	b := &payable.Basket{BasketID: "1", LineItems: []payable.LineItem{{Name: long, UnitPrice: decimal.RequireFromString("1"), Quantity: 1, ProductRef: long}}}

	payload, err := p.BuildOrderPayload(b, Request{})
	require.NoError(t, err)
	item := payload.PurchaseUnits[0].Items[0]
	assert.Len(t, []rune(item.Name), maxTextLength)
	assert.True(t, strings.HasSuffix(item.Name, "…"))
	assert.Len(t, []rune(item.SKU), maxTextLength)
	assert.Len(t, []rune(payload.PurchaseUnits[0].Description), maxTextLength)
}
