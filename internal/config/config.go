// Package config loads the PayPal payment method settings from the
// environment, optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/yourorg/salesman-paypal/internal/paypal"
)

const (
	EnvClientID        = "SALESMAN_PAYPAL_CLIENT_ID"
	EnvClientSecret    = "SALESMAN_PAYPAL_CLIENT_SECRET"
	EnvSandboxMode     = "SALESMAN_PAYPAL_SANDBOX_MODE"
	EnvPaymentLabel    = "SALESMAN_PAYPAL_PAYMENT_LABEL"
	EnvDefaultCurrency = "SALESMAN_PAYPAL_DEFAULT_CURRENCY"
	EnvReturnURL       = "SALESMAN_PAYPAL_RETURN_URL"
	EnvCancelURL       = "SALESMAN_PAYPAL_CANCEL_URL"
	EnvPaidStatus      = "SALESMAN_PAYPAL_PAID_STATUS"
	EnvAPIBase         = "SALESMAN_PAYPAL_API_BASE"
	EnvSchemaPath      = "SALESMAN_PAYPAL_SCHEMA_PATH"
	EnvAppEnv          = "APP_ENV"
	EnvAppPort         = "APP_PORT"
)

const (
	DefaultPaymentLabel = "Pay with PayPal"
	DefaultCurrency     = "USD"
	DefaultPaidStatus   = "PROCESSING"
	DefaultAppPort      = ":8080"
)

// ConfigurationError reports a missing or malformed setting.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid `%s` in your settings: %s", e.Setting, e.Reason)
	}
	return fmt.Sprintf("missing `%s` in your settings", e.Setting)
}

// Settings are the PayPal payment method options.
type Settings struct {
	ClientID     string
	ClientSecret string
	SandboxMode  bool
	PaymentLabel string
	// DefaultCurrency is an ISO 4217 code PayPal supports, upper-cased on load.
	DefaultCurrency string
	// ReturnURL and CancelURL are where the shopper is redirected after
	// coming back from PayPal. Empty means answer in place.
	ReturnURL  string
	CancelURL  string
	PaidStatus string
	// APIBase overrides the sandbox/live endpoint. Used by tests.
	APIBase string
	// SchemaPath replaces the built-in basket checkout JSON schema.
	SchemaPath string

	AppEnv  string
	AppPort string
}

// Load reads a .env file if present and then the process environment.
func Load() (*Settings, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds Settings from a lookup function. Client credentials are
// required; everything else falls back to its default.
func FromEnv(getenv func(string) string) (*Settings, error) {
	s := &Settings{
		ClientID:        strings.TrimSpace(getenv(EnvClientID)),
		ClientSecret:    strings.TrimSpace(getenv(EnvClientSecret)),
		PaymentLabel:    withDefault(getenv(EnvPaymentLabel), DefaultPaymentLabel),
		DefaultCurrency: strings.ToUpper(withDefault(getenv(EnvDefaultCurrency), DefaultCurrency)),
		ReturnURL:       getenv(EnvReturnURL),
		CancelURL:       getenv(EnvCancelURL),
		PaidStatus:      withDefault(getenv(EnvPaidStatus), DefaultPaidStatus),
		APIBase:         strings.TrimRight(getenv(EnvAPIBase), "/"),
		SchemaPath:      strings.TrimSpace(getenv(EnvSchemaPath)),
		AppEnv:          getenv(EnvAppEnv),
		AppPort:         withDefault(getenv(EnvAppPort), DefaultAppPort),
	}

	if raw := strings.TrimSpace(getenv(EnvSandboxMode)); raw != "" {
		sandbox, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, &ConfigurationError{Setting: EnvSandboxMode, Reason: err.Error()}
		}
		s.SandboxMode = sandbox
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the required settings. An empty DefaultCurrency is left
// to the payment method's own default.
func (s *Settings) Validate() error {
	if s.ClientID == "" {
		return &ConfigurationError{Setting: EnvClientID}
	}
	if s.ClientSecret == "" {
		return &ConfigurationError{Setting: EnvClientSecret}
	}
	if s.DefaultCurrency != "" && !paypal.SupportedCurrency(s.DefaultCurrency) {
		return &ConfigurationError{
			Setting: EnvDefaultCurrency,
			Reason:  fmt.Sprintf("%q is not a currency PayPal supports", s.DefaultCurrency),
		}
	}
	return nil
}

func withDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
