package paypal

// IntentCapture is the only order intent the adapter creates.
const IntentCapture = "CAPTURE"

// OrderStatus is the status of a PayPal order.
type OrderStatus string

const (
	OrderCreated             OrderStatus = "CREATED"
	OrderSaved               OrderStatus = "SAVED"
	OrderApproved            OrderStatus = "APPROVED"
	OrderVoided              OrderStatus = "VOIDED"
	OrderCompleted           OrderStatus = "COMPLETED"
	OrderPayerActionRequired OrderStatus = "PAYER_ACTION_REQUIRED"
)

// Capture and refund states.
const (
	CaptureCompleted = "COMPLETED"
	CapturePending   = "PENDING"

	RefundCompleted = "COMPLETED"
	RefundPending   = "PENDING"
	RefundCancelled = "CANCELLED"
	RefundFailed    = "FAILED"
)

// Money is a currency amount, value formatted as a decimal string.
type Money struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type Breakdown struct {
	ItemTotal *Money `json:"item_total,omitempty"`
}

type Amount struct {
	CurrencyCode string     `json:"currency_code"`
	Value        string     `json:"value"`
	Breakdown    *Breakdown `json:"breakdown,omitempty"`
}

type Item struct {
	Name        string `json:"name"`
	UnitAmount  *Money `json:"unit_amount"`
	Quantity    string `json:"quantity"`
	Description string `json:"description,omitempty"`
	SKU         string `json:"sku,omitempty"`
}

type Name struct {
	GivenName string `json:"given_name,omitempty"`
	Surname   string `json:"surname,omitempty"`
	FullName  string `json:"full_name,omitempty"`
}

type Payer struct {
	EmailAddress string `json:"email_address,omitempty"`
	Name         *Name  `json:"name,omitempty"`
	PayerID      string `json:"payer_id,omitempty"`
}

type Shipping struct {
	Name *Name `json:"name,omitempty"`
}

type PurchaseUnitRequest struct {
	ReferenceID string    `json:"reference_id,omitempty"`
	CustomID    string    `json:"custom_id,omitempty"`
	Description string    `json:"description,omitempty"`
	Amount      *Amount   `json:"amount"`
	Items       []Item    `json:"items,omitempty"`
	Shipping    *Shipping `json:"shipping,omitempty"`
}

type ApplicationContext struct {
	BrandName  string `json:"brand_name,omitempty"`
	UserAction string `json:"user_action,omitempty"`
	ReturnURL  string `json:"return_url,omitempty"`
	CancelURL  string `json:"cancel_url,omitempty"`
}

// OrderRequest is the body of POST /v2/checkout/orders.
type OrderRequest struct {
	Intent             string                `json:"intent"`
	Payer              *Payer                `json:"payer,omitempty"`
	PurchaseUnits      []PurchaseUnitRequest `json:"purchase_units"`
	ApplicationContext *ApplicationContext   `json:"application_context,omitempty"`
}

type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method,omitempty"`
}

type Capture struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	Amount       *Money `json:"amount,omitempty"`
	CustomID     string `json:"custom_id,omitempty"`
	FinalCapture bool   `json:"final_capture,omitempty"`
	CreateTime   string `json:"create_time,omitempty"`
}

type Payments struct {
	Captures []Capture `json:"captures,omitempty"`
	Refunds  []Refund  `json:"refunds,omitempty"`
}

type PurchaseUnit struct {
	ReferenceID string    `json:"reference_id,omitempty"`
	CustomID    string    `json:"custom_id,omitempty"`
	Amount      *Amount   `json:"amount,omitempty"`
	Items       []Item    `json:"items,omitempty"`
	Shipping    *Shipping `json:"shipping,omitempty"`
	Payments    *Payments `json:"payments,omitempty"`
}

// Order is a PayPal order as returned by create and capture.
type Order struct {
	ID            string         `json:"id"`
	Status        OrderStatus    `json:"status"`
	Intent        string         `json:"intent,omitempty"`
	Payer         *Payer         `json:"payer,omitempty"`
	PurchaseUnits []PurchaseUnit `json:"purchase_units,omitempty"`
	Links         []Link         `json:"links,omitempty"`
	CreateTime    string         `json:"create_time,omitempty"`
	UpdateTime    string         `json:"update_time,omitempty"`
}

// Link returns the href of the link with the given rel, or "".
func (o *Order) Link(rel string) string {
	for _, l := range o.Links {
		if l.Rel == rel {
			return l.Href
		}
	}
	return ""
}

// FirstCapture returns the first capture of the first purchase unit.
func (o *Order) FirstCapture() (*Capture, bool) {
	if len(o.PurchaseUnits) == 0 || o.PurchaseUnits[0].Payments == nil {
		return nil, false
	}
	captures := o.PurchaseUnits[0].Payments.Captures
	if len(captures) == 0 {
		return nil, false
	}
	return &captures[0], true
}

// Refund is a refund of a captured payment.
type Refund struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount *Money `json:"amount,omitempty"`
	Links  []Link `json:"links,omitempty"`
}

type refundRequest struct {
	Amount *Money `json:"amount,omitempty"`
}
