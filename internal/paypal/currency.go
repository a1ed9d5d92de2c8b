package paypal

import "strings"

// currencyDecimals lists the currencies PayPal accepts and how many decimal
// places each allows.
// https://developer.paypal.com/reference/currency-codes/
var currencyDecimals = map[string]int32{
	"AUD": 2, "BRL": 2, "CAD": 2, "CNY": 2, "CZK": 2, "DKK": 2, "EUR": 2,
	"HKD": 2, "HUF": 0, "ILS": 2, "JPY": 0, "MYR": 2, "MXN": 2, "TWD": 0,
	"NZD": 2, "NOK": 2, "PHP": 2, "PLN": 2, "GBP": 2, "SGD": 2, "SEK": 2,
	"CHF": 2, "THB": 2, "USD": 2,
}

// SupportedCurrency reports whether PayPal accepts the ISO 4217 code.
func SupportedCurrency(code string) bool {
	_, ok := currencyDecimals[strings.ToUpper(code)]
	return ok
}

// CurrencyDecimals returns the decimal places PayPal allows for code.
func CurrencyDecimals(code string) (int32, bool) {
	places, ok := currencyDecimals[strings.ToUpper(code)]
	return places, ok
}
