package paypal

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrorDetail is one entry of a PayPal error "details" array.
type ErrorDetail struct {
	Field       string `json:"field,omitempty"`
	Value       string `json:"value,omitempty"`
	Location    string `json:"location,omitempty"`
	Issue       string `json:"issue"`
	Description string `json:"description,omitempty"`
}

// GatewayError is a non-2xx answer from the PayPal API.
type GatewayError struct {
	Operation  string        `json:"-"`
	StatusCode int           `json:"-"`
	Name       string        `json:"name"`
	Message    string        `json:"message"`
	DebugID    string        `json:"debug_id"`
	Details    []ErrorDetail `json:"details,omitempty"`
	// Body is the raw response body, kept for callers that relay it.
	Body []byte `json:"-"`
}

func newGatewayError(operation string, status int, body []byte) *GatewayError {
	e := &GatewayError{Operation: operation, StatusCode: status, Body: body}
	if err := json.Unmarshal(body, e); err != nil || e.Name == "" {
		// token endpoint errors use the OAuth2 shape
		var oauthErr struct {
			Error       string `json:"error"`
			Description string `json:"error_description"`
		}
		if json.Unmarshal(body, &oauthErr) == nil && oauthErr.Error != "" {
			e.Name = oauthErr.Error
			e.Message = oauthErr.Description
		}
	}
	return e
}

func (e *GatewayError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "paypal: %s failed with HTTP %d", e.Operation, e.StatusCode)
	if e.Name != "" {
		fmt.Fprintf(&b, ": %s", e.Name)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	for _, d := range e.Details {
		fmt.Fprintf(&b, " [%s]", d.Issue)
	}
	if e.DebugID != "" {
		fmt.Fprintf(&b, " (debug_id %s)", e.DebugID)
	}
	return b.String()
}

// Issue returns the first detail issue, e.g. "INSTRUMENT_DECLINED".
func (e *GatewayError) Issue() string {
	if len(e.Details) == 0 {
		return ""
	}
	return e.Details[0].Issue
}

// JSON returns the body PayPal sent, or a synthesized one when it was empty
// or not JSON.
func (e *GatewayError) JSON() json.RawMessage {
	if json.Valid(e.Body) && len(e.Body) > 0 {
		return json.RawMessage(e.Body)
	}
	b, _ := json.Marshal(e)
	return b
}
