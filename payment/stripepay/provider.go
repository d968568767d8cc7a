// Package stripepay implements the checkout payment provider on top of
// Stripe hosted checkout sessions.
package stripepay

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/goliatone/go-errors"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/goliatone/go-storefront"
	"github.com/goliatone/go-storefront/checkout"
)

// Config holds the Stripe credentials. Keys are always injected, never read
// from process wide state.
type Config struct {
	SecretKey     string
	WebhookSecret string
	// APIURL overrides the Stripe API base URL, used against stripe-mock
	// or test servers.
	APIURL            string
	MaxNetworkRetries int64
	HTTPClient        *http.Client
}

// ConfigFromPayment maps the payment section of the server configuration.
func ConfigFromPayment(cfg storefront.PaymentConfig) Config {
	return Config{
		SecretKey:         cfg.SecretKey,
		WebhookSecret:     cfg.WebhookSecret,
		APIURL:            cfg.APIURL,
		MaxNetworkRetries: cfg.MaxNetworkRetries,
	}
}

// Provider creates checkout sessions and verifies webhooks.
type Provider struct {
	client        *stripe.Client
	webhookSecret string
	logger        storefront.Logger
}

var (
	_ checkout.PaymentProvider = (*Provider)(nil)
	_ checkout.WebhookVerifier = (*Provider)(nil)
)

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the logger.
func WithLogger(l storefront.Logger) Option {
	return func(p *Provider) {
		_, p.logger = storefront.ResolveLogger("stripepay", nil, l)
	}
}

// NewProvider creates a Provider from cfg.
func NewProvider(cfg Config, opts ...Option) (*Provider, error) {
	if cfg.SecretKey == "" {
		return nil, storefront.WrapWith(storefront.ErrInvalidConfig, nil, map[string]any{
			"field": "secret_key",
		})
	}

	backendConfig := &stripe.BackendConfig{
		HTTPClient:        tracedClient(cfg.HTTPClient),
		MaxNetworkRetries: stripe.Int64(cfg.MaxNetworkRetries),
	}
	if cfg.APIURL != "" {
		backendConfig.URL = stripe.String(cfg.APIURL)
	}

	backends := &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendConfig),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendConfig),
	}

	p := &Provider{
		client:        stripe.NewClient(cfg.SecretKey, stripe.WithBackends(backends)),
		webhookSecret: cfg.WebhookSecret,
	}
	_, p.logger = storefront.ResolveLogger("stripepay", nil, storefront.NopLogger{})

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// CreateSession implements checkout.PaymentProvider.
func (p *Provider) CreateSession(ctx context.Context, req checkout.SessionRequest) (*checkout.Session, error) {
	params := sessionParams(req)

	cs, err := p.client.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		return nil, wrapStripeError(err)
	}

	p.logger.Debug("stripe checkout session created", "session_id", cs.ID)
	return toSession(cs), nil
}

func sessionParams(req checkout.SessionRequest) *stripe.CheckoutSessionCreateParams {
	items := make([]*stripe.CheckoutSessionCreateLineItemParams, 0, len(req.LineItems))
	for _, item := range req.LineItems {
		items = append(items, &stripe.CheckoutSessionCreateLineItemParams{
			PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
				Currency:   stripe.String(item.Currency),
				UnitAmount: stripe.Int64(item.UnitAmount),
				ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
					Name:   stripe.String(item.Name),
					Images: stripe.StringSlice(item.Images),
				},
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	params := &stripe.CheckoutSessionCreateParams{
		PaymentMethodTypes: stripe.StringSlice(req.PaymentMethodTypes),
		LineItems:          items,
		Mode:               stripe.String(req.Mode),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	if req.ClientReferenceID != "" {
		params.ClientReferenceID = stripe.String(req.ClientReferenceID)
	}
	return params
}

// VerifyEvent implements checkout.WebhookVerifier.
func (p *Provider) VerifyEvent(payload []byte, signature string) (checkout.Event, error) {
	if p.webhookSecret == "" {
		return checkout.Event{}, storefront.WrapWith(storefront.ErrInvalidConfig, nil, map[string]any{
			"field": "webhook_secret",
		})
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return checkout.Event{}, storefront.WrapWith(storefront.ErrWebhookSignature, err, nil)
	}

	out := checkout.Event{
		ID:   event.ID,
		Type: string(event.Type),
	}

	if event.Data == nil || len(event.Data.Raw) == 0 {
		return out, nil
	}

	if event.Data.Object["object"] != "checkout.session" {
		return out, nil
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return checkout.Event{}, storefront.WrapWith(storefront.ErrWebhookPayload, err, map[string]any{
			"event_id": event.ID,
		})
	}
	out.Session = toSession(&cs)
	return out, nil
}

func toSession(cs *stripe.CheckoutSession) *checkout.Session {
	if cs == nil {
		return nil
	}
	return &checkout.Session{
		ID:                cs.ID,
		URL:               cs.URL,
		Status:            string(cs.Status),
		PaymentStatus:     string(cs.PaymentStatus),
		CustomerEmail:     cs.CustomerEmail,
		ClientReferenceID: cs.ClientReferenceID,
		Currency:          string(cs.Currency),
		AmountTotal:       cs.AmountTotal,
	}
}

func wrapStripeError(err error) error {
	meta := map[string]any{}

	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		meta["stripe_type"] = string(stripeErr.Type)
		meta["stripe_code"] = string(stripeErr.Code)
		meta["stripe_status"] = stripeErr.HTTPStatusCode
		meta["request_id"] = stripeErr.RequestID
		if stripeErr.Msg != "" {
			meta["cause"] = stripeErr.Msg
		}
	}

	return storefront.WrapWith(storefront.ErrUpstreamPayment, err, meta)
}
