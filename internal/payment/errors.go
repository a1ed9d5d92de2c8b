package payment

import "fmt"

// ValidationError rejects a payable before anything is sent to PayPal.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "payment validation failed: " + e.Message
	}
	return fmt.Sprintf("payment validation failed: %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// PaymentError is the checkout-facing failure of a payment attempt. The
// gateway cause stays reachable through errors.As.
type PaymentError struct {
	Op  string
	Err error
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment: %s: %v", e.Op, e.Err)
}

func (e *PaymentError) Unwrap() error { return e.Err }
