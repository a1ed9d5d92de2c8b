package payment

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yourorg/salesman-paypal/internal/payable"
	"github.com/yourorg/salesman-paypal/internal/paypal"
)

// Request is what the payment method sees of the incoming web request.
type Request struct {
	// User is the authenticated customer, nil for anonymous checkout.
	User *payable.User
	// BaseURL is scheme://host of the request, used for absolute callback URLs.
	BaseURL string
	// Currency overrides the configured default when set.
	Currency string
}

// RequestFromHTTP derives a Request from an inbound HTTP request. The
// currency override is read from the "currency" query parameter.
func RequestFromHTTP(r *http.Request, user *payable.User) Request {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	return Request{
		User:     user,
		BaseURL:  scheme + "://" + r.Host,
		Currency: r.URL.Query().Get("currency"),
	}
}

func money(amount decimal.Decimal, currency string) *paypal.Money {
	return &paypal.Money{CurrencyCode: currency, Value: amount.StringFixed(decimals(currency))}
}

// checkPrecision rejects amounts with more decimals than the currency allows.
func checkPrecision(field string, amount decimal.Decimal, currency string) error {
	places := decimals(currency)
	if !amount.Equal(amount.Round(places)) {
		return invalid(field, "%s allows %d decimal places, got %s", currency, places, amount.String())
	}
	return nil
}

func decimals(currency string) int32 {
	places, _ := paypal.CurrencyDecimals(currency)
	return places
}
