package payment

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yourorg/salesman-paypal/internal/payable"
	"github.com/yourorg/salesman-paypal/internal/paypal"
)

// PayPal caps names, SKUs and descriptions at 127 characters.
const maxTextLength = 127

// BuildOrderPayload builds the PayPal create-order body for a payable.
// https://developer.paypal.com/docs/api/orders/v2/#orders_create
func (p *PayPalPayment) BuildOrderPayload(obj payable.Payable, req Request) (paypal.OrderRequest, error) {
	currency, err := p.GetCurrency(req)
	if err != nil {
		return paypal.OrderRequest{}, err
	}
	if own := obj.Currency(); own != "" && !strings.EqualFold(own, currency) {
		return paypal.OrderRequest{}, invalid("currency", "payable is priced in %s but payment is in %s", strings.ToUpper(own), currency)
	}

	unit, err := p.purchaseUnit(obj, req, currency)
	if err != nil {
		return paypal.OrderRequest{}, err
	}

	return paypal.OrderRequest{
		Intent:             paypal.IntentCapture,
		Payer:              p.payerData(obj, req),
		PurchaseUnits:      []paypal.PurchaseUnitRequest{unit},
		ApplicationContext: p.appContextData(req),
	}, nil
}

func (p *PayPalPayment) purchaseUnit(obj payable.Payable, req Request, currency string) (paypal.PurchaseUnitRequest, error) {
	total := obj.Total()
	if !total.IsPositive() {
		return paypal.PurchaseUnitRequest{}, invalid("total", "must be greater than zero, got %s", total.String())
	}
	if err := checkPrecision("total", total, currency); err != nil {
		return paypal.PurchaseUnitRequest{}, err
	}

	items, itemTotal, err := itemsData(obj.Items(), currency)
	if err != nil {
		return paypal.PurchaseUnitRequest{}, err
	}
	if !itemTotal.Equal(total) {
		return paypal.PurchaseUnitRequest{}, invalid("items", "line items add up to %s but total is %s", itemTotal.String(), total.String())
	}

	unit := paypal.PurchaseUnitRequest{
		CustomID:    payable.Reference(obj),
		Description: describe(obj.Items()),
		Amount: &paypal.Amount{
			CurrencyCode: currency,
			Value:        money(total, currency).Value,
			Breakdown: &paypal.Breakdown{
				ItemTotal: money(itemTotal, currency),
			},
		},
		Items: items,
	}
	if name := p.user(obj, req).FullName(); name != "" {
		unit.Shipping = &paypal.Shipping{Name: &paypal.Name{FullName: name}}
	}
	return unit, nil
}

func itemsData(lines []payable.LineItem, currency string) ([]paypal.Item, decimal.Decimal, error) {
	items := make([]paypal.Item, 0, len(lines))
	sum := decimal.Zero
	for i, line := range lines {
		field := "items[" + strconv.Itoa(i) + "]"
		if strings.TrimSpace(line.Name) == "" {
			return nil, sum, invalid(field+".name", "is required")
		}
		if line.Quantity <= 0 {
			return nil, sum, invalid(field+".quantity", "must be positive, got %d", line.Quantity)
		}
		if line.UnitPrice.IsNegative() {
			return nil, sum, invalid(field+".unit_price", "must not be negative, got %s", line.UnitPrice.String())
		}
		if err := checkPrecision(field+".unit_price", line.UnitPrice, currency); err != nil {
			return nil, sum, err
		}
		items = append(items, paypal.Item{
			Name:       truncate(line.Name, maxTextLength),
			UnitAmount: money(line.UnitPrice, currency),
			Quantity:   strconv.Itoa(line.Quantity),
			SKU:        truncate(line.ProductRef, maxTextLength),
		})
		sum = sum.Add(line.Subtotal())
	}
	return items, sum, nil
}

// user prefers the request's authenticated user over the payable's owner.
func (p *PayPalPayment) user(obj payable.Payable, req Request) *payable.User {
	if req.User != nil {
		return req.User
	}
	return obj.User()
}

func (p *PayPalPayment) payerData(obj payable.Payable, req Request) *paypal.Payer {
	u := p.user(obj, req)
	if u == nil {
		if obj.Email() == "" {
			return nil
		}
		return &paypal.Payer{EmailAddress: obj.Email()}
	}

	given := u.FirstName
	if given == "" {
		given = u.Username
	}
	email := u.Email
	if email == "" {
		email = obj.Email()
	}
	payer := &paypal.Payer{EmailAddress: email}
	if given != "" || u.LastName != "" {
		payer.Name = &paypal.Name{GivenName: given, Surname: u.LastName}
	}
	return payer
}

func (p *PayPalPayment) appContextData(req Request) *paypal.ApplicationContext {
	if req.BaseURL == "" {
		return nil
	}
	base := strings.TrimRight(req.BaseURL, "/")
	return &paypal.ApplicationContext{
		ReturnURL: base + ReturnPath,
		CancelURL: base + CancelPath,
	}
}

// describe renders "2x Mug, 1x Sticker".
func describe(lines []payable.LineItem) string {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		parts = append(parts, strconv.Itoa(line.Quantity)+"x "+line.Name)
	}
	return truncate(strings.Join(parts, ", "), maxTextLength)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
