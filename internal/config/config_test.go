package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	s, err := FromEnv(envMap(map[string]string{
		EnvClientID:     "client",
		EnvClientSecret: "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "client", s.ClientID)
	assert.Equal(t, "secret", s.ClientSecret)
	assert.False(t, s.SandboxMode)
	assert.Equal(t, "Pay with PayPal", s.PaymentLabel)
	assert.Equal(t, "USD", s.DefaultCurrency)
	assert.Equal(t, "PROCESSING", s.PaidStatus)
	assert.Empty(t, s.ReturnURL)
	assert.Empty(t, s.CancelURL)
	assert.Equal(t, ":8080", s.AppPort)
}

func TestFromEnv_Overrides(t *testing.T) {
	s, err := FromEnv(envMap(map[string]string{
		EnvClientID:        "client",
		EnvClientSecret:    "secret",
		EnvSandboxMode:     "true",
		EnvPaymentLabel:    "PayPal",
		EnvDefaultCurrency: "eur",
		EnvReturnURL:       "https://shop.example/thanks",
		EnvCancelURL:       "https://shop.example/basket",
		EnvPaidStatus:      "COMPLETED",
		EnvAPIBase:         "http://localhost:9999/",
		EnvSchemaPath:      " /etc/salesman/basket.json ",
	}))
	require.NoError(t, err)

	assert.True(t, s.SandboxMode)
	assert.Equal(t, "PayPal", s.PaymentLabel)
	assert.Equal(t, "EUR", s.DefaultCurrency)
	assert.Equal(t, "https://shop.example/thanks", s.ReturnURL)
	assert.Equal(t, "https://shop.example/basket", s.CancelURL)
	assert.Equal(t, "COMPLETED", s.PaidStatus)
	assert.Equal(t, "http://localhost:9999", s.APIBase)
	assert.Equal(t, "/etc/salesman/basket.json", s.SchemaPath)
}

func TestFromEnv_MissingCredentials(t *testing.T) {
	t.Run("ClientID", func(t *testing.T) {
		_, err := FromEnv(envMap(map[string]string{EnvClientSecret: "secret"}))
		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, EnvClientID, cfgErr.Setting)
		assert.Equal(t, "missing `SALESMAN_PAYPAL_CLIENT_ID` in your settings", err.Error())
	})

	t.Run("ClientSecret", func(t *testing.T) {
		_, err := FromEnv(envMap(map[string]string{EnvClientID: "client"}))
		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, EnvClientSecret, cfgErr.Setting)
	})
}

func TestFromEnv_InvalidSandboxFlag(t *testing.T) {
	_, err := FromEnv(envMap(map[string]string{
		EnvClientID:     "client",
		EnvClientSecret: "secret",
		EnvSandboxMode:  "sometimes",
	}))
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, EnvSandboxMode, cfgErr.Setting)
	assert.Contains(t, err.Error(), "invalid `SALESMAN_PAYPAL_SANDBOX_MODE`")
}

func TestFromEnv_UnsupportedDefaultCurrency(t *testing.T) {
	_, err := FromEnv(envMap(map[string]string{
		EnvClientID:        "client",
		EnvClientSecret:    "secret",
		EnvDefaultCurrency: "xyz",
	}))
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, EnvDefaultCurrency, cfgErr.Setting)
	assert.Contains(t, err.Error(), `"XYZ" is not a currency PayPal supports`)
}

func TestSettings_Validate_EmptyCurrencyAllowed(t *testing.T) {
	s := &Settings{ClientID: "client", ClientSecret: "secret"}
	assert.NoError(t, s.Validate())

	s.DefaultCurrency = "ABC"
	var cfgErr *ConfigurationError
	require.True(t, errors.As(s.Validate(), &cfgErr))
}

func TestLoad_ReadsProcessEnv(t *testing.T) {
	t.Setenv(EnvClientID, "env-client")
	t.Setenv(EnvClientSecret, "env-secret")
	t.Setenv(EnvDefaultCurrency, "gbp")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "env-client", s.ClientID)
	assert.Equal(t, "GBP", s.DefaultCurrency)
}
