package storefront_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-storefront"
)

func validEnviron() map[string]string {
	return map[string]string{
		"STOREFRONT_JWT_SIGNING_KEY":        "super-secret-signing-key",
		"STOREFRONT_PAYMENT_SECRET_KEY":     "sk_test_1234567890",
		"STOREFRONT_PAYMENT_WEBHOOK_SECRET": "whsec_abcdef",
	}
}

func TestLoadConfigFromDefaults(t *testing.T) {
	cfg, err := storefront.LoadConfigFrom(validEnviron())
	require.NoError(t, err)

	assert.Equal(t, ":8572", cfg.Addr)
	assert.Equal(t, "HS256", cfg.JWT.SigningMethod)
	assert.Equal(t, "user", cfg.JWT.ContextKey)
	assert.Equal(t, "usd", cfg.Payment.Currency)
	assert.Equal(t, "card", cfg.Payment.PaymentMethod)
	assert.Equal(t, int64(2), cfg.Payment.MaxNetworkRetries)
	assert.Equal(t, "https://localhost:7067/order-success", cfg.Payment.SuccessURL)
	assert.Equal(t, "https://localhost:7067/cart", cfg.Payment.CancelURL)
	assert.Equal(t, "authToken", cfg.Client.TokenKey)
	assert.Equal(t, "storefront:", cfg.Client.RedisPrefix)

	require.NoError(t, cfg.Validate())
	require.NoError(t, cfg.Client.Validate())
}

func TestLoadConfigFromOverrides(t *testing.T) {
	environ := validEnviron()
	environ["STOREFRONT_ADDR"] = ":9000"
	environ["STOREFRONT_JWT_AUDIENCE"] = "api,admin"
	environ["STOREFRONT_PAYMENT_CURRENCY"] = "eur"
	environ["STOREFRONT_CLIENT_REDIS_ADDR"] = "localhost:6379"

	cfg, err := storefront.LoadConfigFrom(environ)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, []string{"api", "admin"}, cfg.JWT.Audience)
	assert.Equal(t, "eur", cfg.Payment.Currency)
	assert.Equal(t, "localhost:6379", cfg.Client.RedisAddr)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFromBadNumber(t *testing.T) {
	environ := validEnviron()
	environ["STOREFRONT_PAYMENT_MAX_NETWORK_RETRIES"] = "many"

	_, err := storefront.LoadConfigFrom(environ)
	require.Error(t, err)
	assert.True(t, storefront.HasTextCode(err, storefront.TextCodeInvalidConfig))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]string)
	}{
		{
			name:   "no signing key nor jwks",
			mutate: func(e map[string]string) { delete(e, "STOREFRONT_JWT_SIGNING_KEY") },
		},
		{
			name:   "unsupported signing method",
			mutate: func(e map[string]string) { e["STOREFRONT_JWT_SIGNING_METHOD"] = "none" },
		},
		{
			name:   "bad jwks url",
			mutate: func(e map[string]string) { e["STOREFRONT_JWT_JWKS_URLS"] = "not a url" },
		},
		{
			name:   "no payment secret",
			mutate: func(e map[string]string) { delete(e, "STOREFRONT_PAYMENT_SECRET_KEY") },
		},
		{
			name:   "bad currency",
			mutate: func(e map[string]string) { e["STOREFRONT_PAYMENT_CURRENCY"] = "USD" },
		},
		{
			name:   "negative retries",
			mutate: func(e map[string]string) { e["STOREFRONT_PAYMENT_MAX_NETWORK_RETRIES"] = "-1" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			environ := validEnviron()
			tt.mutate(environ)

			cfg, err := storefront.LoadConfigFrom(environ)
			require.NoError(t, err)

			err = cfg.Validate()
			require.Error(t, err)
			assert.True(t, storefront.HasTextCode(err, storefront.TextCodeInvalidConfig))
		})
	}
}

func TestConfigJWKSReplacesSigningKey(t *testing.T) {
	environ := validEnviron()
	delete(environ, "STOREFRONT_JWT_SIGNING_KEY")
	environ["STOREFRONT_JWT_JWKS_URLS"] = "https://auth.example.com/.well-known/jwks.json"

	cfg, err := storefront.LoadConfigFrom(environ)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
}

func TestConfigRedacted(t *testing.T) {
	cfg, err := storefront.LoadConfigFrom(validEnviron())
	require.NoError(t, err)

	redacted := cfg.Redacted()
	assert.Equal(t, "supe****************-key", redacted.JWT.SigningKey)
	assert.Equal(t, "sk_t**********7890", redacted.Payment.SecretKey)
	assert.Equal(t, "whse****cdef", redacted.Payment.WebhookSecret)

	assert.Equal(t, "super-secret-signing-key", cfg.JWT.SigningKey)
}
