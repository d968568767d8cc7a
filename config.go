package storefront

import (
	stderrors "errors"
	"strings"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// EnvPrefix is prepended to every configuration variable.
const EnvPrefix = "STOREFRONT_"

// Config holds the server configuration.
type Config struct {
	Addr        string        `env:"ADDR" envDefault:":8572" json:"addr"`
	DatabaseDSN string        `env:"DATABASE_DSN" envDefault:"file:storefront.db?cache=shared" json:"database_dsn"`
	JWT         JWTConfig     `envPrefix:"JWT_" json:"jwt"`
	Payment     PaymentConfig `envPrefix:"PAYMENT_" json:"payment"`
	Client      ClientConfig  `envPrefix:"CLIENT_" json:"client"`
}

// JWTConfig configures bearer token validation on the API.
type JWTConfig struct {
	SigningKey    string   `env:"SIGNING_KEY" json:"signing_key"`
	SigningMethod string   `env:"SIGNING_METHOD" envDefault:"HS256" json:"signing_method"`
	JWKSetURLs    []string `env:"JWKS_URLS" envSeparator:"," json:"jwks_urls,omitempty"`
	Issuer        string   `env:"ISSUER" json:"issuer,omitempty"`
	Audience      []string `env:"AUDIENCE" envSeparator:"," json:"audience,omitempty"`
	ContextKey    string   `env:"CONTEXT_KEY" envDefault:"user" json:"context_key"`
}

// PaymentConfig configures the hosted checkout flow.
type PaymentConfig struct {
	SecretKey         string `env:"SECRET_KEY" json:"secret_key"`
	WebhookSecret     string `env:"WEBHOOK_SECRET" json:"webhook_secret"`
	APIURL            string `env:"API_URL" json:"api_url,omitempty"`
	MaxNetworkRetries int64  `env:"MAX_NETWORK_RETRIES" envDefault:"2" json:"max_network_retries"`
	Currency          string `env:"CURRENCY" envDefault:"usd" json:"currency"`
	PaymentMethod     string `env:"PAYMENT_METHOD" envDefault:"card" json:"payment_method"`
	SuccessURL        string `env:"SUCCESS_URL" envDefault:"https://localhost:7067/order-success" json:"success_url"`
	CancelURL         string `env:"CANCEL_URL" envDefault:"https://localhost:7067/cart" json:"cancel_url"`
}

// ClientConfig configures the client side token store.
type ClientConfig struct {
	TokenKey    string `env:"TOKEN_KEY" envDefault:"authToken" json:"token_key"`
	StoreDSN    string `env:"STORE_DSN" envDefault:"file:storefront-client.db?cache=shared" json:"store_dsn"`
	RedisAddr   string `env:"REDIS_ADDR" json:"redis_addr,omitempty"`
	RedisPrefix string `env:"REDIS_PREFIX" envDefault:"storefront:" json:"redis_prefix"`
}

// LoadConfig reads the configuration from the process environment.
func LoadConfig() (*Config, error) {
	return loadConfig(env.Options{Prefix: EnvPrefix})
}

// LoadConfigFrom reads the configuration from environ instead of the process
// environment. Keys must include EnvPrefix.
func LoadConfigFrom(environ map[string]string) (*Config, error) {
	return loadConfig(env.Options{Prefix: EnvPrefix, Environment: environ})
}

func loadConfig(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, WrapWith(ErrInvalidConfig, err, nil)
	}
	return cfg, nil
}

// Validate checks the settings the API server needs.
func (c Config) Validate() error {
	if err := validation.ValidateStruct(&c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.DatabaseDSN, validation.Required),
	); err != nil {
		return WrapWith(ErrInvalidConfig, err, map[string]any{"section": "server"})
	}
	if err := c.JWT.Validate(); err != nil {
		return WrapWith(ErrInvalidConfig, err, map[string]any{"section": "jwt"})
	}
	if err := c.Payment.Validate(); err != nil {
		return WrapWith(ErrInvalidConfig, err, map[string]any{"section": "payment"})
	}
	return nil
}

// Validate implements validation.Validatable.
func (c JWTConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.SigningKey, validation.By(func(any) error {
			if c.SigningKey == "" && len(c.JWKSetURLs) == 0 {
				return stderrors.New("a signing key or a JWKS URL is required")
			}
			return nil
		})),
		validation.Field(&c.SigningMethod, validation.Required, validation.In("HS256", "HS384", "HS512", "RS256", "ES256")),
		validation.Field(&c.JWKSetURLs, validation.By(func(any) error {
			for _, u := range c.JWKSetURLs {
				if err := is.URL.Validate(u); err != nil {
					return err
				}
			}
			return nil
		})),
	)
}

// Validate implements validation.Validatable.
func (c PaymentConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.SecretKey, validation.Required),
		validation.Field(&c.APIURL, is.URL),
		validation.Field(&c.MaxNetworkRetries, validation.Min(0)),
		validation.Field(&c.Currency, validation.Required, validation.Length(3, 3), is.LowerCase),
		validation.Field(&c.PaymentMethod, validation.Required),
		validation.Field(&c.SuccessURL, validation.Required, is.URL),
		validation.Field(&c.CancelURL, validation.Required, is.URL),
	)
}

// Validate implements validation.Validatable.
func (c ClientConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.TokenKey, validation.Required),
		validation.Field(&c.StoreDSN, validation.Required),
	)
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	c.JWT.SigningKey = mask(c.JWT.SigningKey)
	c.Payment.SecretKey = mask(c.Payment.SecretKey)
	c.Payment.WebhookSecret = mask(c.Payment.WebhookSecret)
	return c
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] + strings.Repeat("*", len(secret)-8) + secret[len(secret)-4:]
}
