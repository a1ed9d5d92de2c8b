// Package payable describes the host checkout objects a payment method is
// asked to charge: a basket before checkout or an order after it.
package payable

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind tells baskets and orders apart.
type Kind string

const (
	KindBasket Kind = "basket"
	KindOrder  Kind = "order"
)

// LineItem is a single row of a basket or order.
type LineItem struct {
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	ProductRef string          `json:"product_ref,omitempty"`
}

// Subtotal is unit price times quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// User is the authenticated customer, if any.
type User struct {
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// FullName joins first and last name, trimming whatever is missing.
func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Payable is what the payment method charges. It is read-only from the
// payment method's point of view.
type Payable interface {
	Kind() Kind
	ID() string
	Currency() string
	Items() []LineItem
	Total() decimal.Decimal
	User() *User
	Email() string
}

// SumItems adds up the line item subtotals.
func SumItems(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Basket is a pre-checkout payable.
type Basket struct {
	BasketID  string     `json:"id"`
	Owner     *User      `json:"user,omitempty"`
	Contact   string     `json:"email,omitempty"`
	Curr      string     `json:"currency,omitempty"`
	LineItems []LineItem `json:"items"`
}

func (b *Basket) Kind() Kind             { return KindBasket }
func (b *Basket) ID() string             { return b.BasketID }
func (b *Basket) Currency() string       { return b.Curr }
func (b *Basket) Items() []LineItem      { return b.LineItems }
func (b *Basket) Total() decimal.Decimal { return SumItems(b.LineItems) }
func (b *Basket) User() *User            { return b.Owner }
func (b *Basket) Email() string          { return b.Contact }

// Payment records money received against an order.
type Payment struct {
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id"`
	Method        string          `json:"payment_method"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Order is a post-checkout payable.
type Order struct {
	OrderID   string     `json:"id"`
	Ref       string     `json:"ref"`
	Status    string     `json:"status"`
	Owner     *User      `json:"user,omitempty"`
	Contact   string     `json:"email,omitempty"`
	Curr      string     `json:"currency,omitempty"`
	LineItems []LineItem `json:"items"`
	Payments  []Payment  `json:"payments"`
}

// NewOrderFromBasket copies a basket into a new order with the given status.
func NewOrderFromBasket(b *Basket, status string) *Order {
	items := make([]LineItem, len(b.LineItems))
	copy(items, b.LineItems)
	id := uuid.NewString()
	return &Order{
		OrderID:   id,
		Ref:       time.Now().UTC().Format("2006") + "-" + strings.ToUpper(id[:8]),
		Status:    status,
		Owner:     b.Owner,
		Contact:   b.Contact,
		Curr:      b.Curr,
		LineItems: items,
	}
}

func (o *Order) Kind() Kind             { return KindOrder }
func (o *Order) ID() string             { return o.OrderID }
func (o *Order) Currency() string       { return o.Curr }
func (o *Order) Items() []LineItem      { return o.LineItems }
func (o *Order) Total() decimal.Decimal { return SumItems(o.LineItems) }
func (o *Order) User() *User            { return o.Owner }
func (o *Order) Email() string          { return o.Contact }

// NewPayment stamps a payment made now.
func NewPayment(amount decimal.Decimal, transactionID, method string) Payment {
	return Payment{
		Amount:        amount,
		TransactionID: transactionID,
		Method:        method,
		CreatedAt:     time.Now().UTC(),
	}
}

// Pay records a payment on the order.
func (o *Order) Pay(amount decimal.Decimal, transactionID, method string) Payment {
	p := NewPayment(amount, transactionID, method)
	o.Payments = append(o.Payments, p)
	return p
}

// Clone returns a copy of the order that shares no slices or user with o.
func (o *Order) Clone() *Order {
	c := *o
	c.LineItems = append([]LineItem(nil), o.LineItems...)
	c.Payments = append([]Payment(nil), o.Payments...)
	if o.Owner != nil {
		owner := *o.Owner
		c.Owner = &owner
	}
	return &c
}

// AmountPaid sums all recorded payments.
func (o *Order) AmountPaid() decimal.Decimal {
	paid := decimal.Zero
	for _, p := range o.Payments {
		paid = paid.Add(p.Amount)
	}
	return paid
}

// FindPayment looks up a payment by its gateway transaction id.
func (o *Order) FindPayment(transactionID string) (Payment, bool) {
	for _, p := range o.Payments {
		if p.TransactionID == transactionID {
			return p, true
		}
	}
	return Payment{}, false
}
