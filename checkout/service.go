// Package checkout turns the current cart into a hosted payment session and
// fulfills orders once the provider reports the payment.
package checkout

import (
	"context"

	"github.com/goliatone/go-storefront"
)

// Config holds the fixed parts of every session request.
type Config struct {
	Currency      string
	PaymentMethod string
	SuccessURL    string
	CancelURL     string
}

// DefaultConfig returns the storefront defaults.
func DefaultConfig() Config {
	return Config{
		Currency:      "usd",
		PaymentMethod: "card",
		SuccessURL:    "https://localhost:7067/order-success",
		CancelURL:     "https://localhost:7067/cart",
	}
}

// ConfigFromPayment maps the payment section of the server configuration.
func ConfigFromPayment(cfg storefront.PaymentConfig) Config {
	out := DefaultConfig()
	if cfg.Currency != "" {
		out.Currency = cfg.Currency
	}
	if cfg.PaymentMethod != "" {
		out.PaymentMethod = cfg.PaymentMethod
	}
	if cfg.SuccessURL != "" {
		out.SuccessURL = cfg.SuccessURL
	}
	if cfg.CancelURL != "" {
		out.CancelURL = cfg.CancelURL
	}
	return out
}

// Service builds checkout sessions for the current customer.
type Service struct {
	cart     CartProvider
	customer storefront.CustomerResolver
	payments PaymentProvider
	verifier WebhookVerifier
	orders   OrderPlacer
	config   Config

	logger   storefront.Logger
	provider storefront.LoggerProvider
}

// Option configures a Service.
type Option func(*Service)

// WithConfig overrides DefaultConfig.
func WithConfig(cfg Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithFulfillment enables FulfillOrder.
func WithFulfillment(verifier WebhookVerifier, orders OrderPlacer) Option {
	return func(s *Service) {
		s.verifier = verifier
		s.orders = orders
	}
}

// WithLogger sets the logger.
func WithLogger(l storefront.Logger) Option {
	return func(s *Service) {
		s.provider, s.logger = storefront.ResolveLogger("checkout", nil, l)
	}
}

// WithLoggerProvider sets the logger provider.
func WithLoggerProvider(lp storefront.LoggerProvider) Option {
	return func(s *Service) {
		s.provider, s.logger = storefront.ResolveLogger("checkout", lp, s.logger)
	}
}

// NewService creates a Service.
func NewService(cart CartProvider, customer storefront.CustomerResolver, payments PaymentProvider, opts ...Option) *Service {
	s := &Service{
		cart:     cart,
		customer: customer,
		payments: payments,
		config:   DefaultConfig(),
	}
	s.provider, s.logger = storefront.ResolveLogger("checkout", nil, storefront.NopLogger{})

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateCheckoutSession reads the cart of the current customer and submits
// it to the payment provider as a single "payment" mode session. Cart
// failures return storefront.ErrCollaborator and the provider is not
// contacted, except a missing customer which is returned as is so it
// answers 401. Provider failures return storefront.ErrUpstreamPayment.
func (s *Service) CreateCheckoutSession(ctx context.Context) (*Session, error) {
	products, err := s.cart.GetCartProducts(ctx)
	if err != nil {
		if storefront.HasTextCode(err, storefront.TextCodeIdentityMissing) {
			s.logger.Warn("checkout without customer", "error", err)
			return nil, err
		}
		s.logger.Error("cart lookup failed", "error", err)
		return nil, storefront.WrapWith(storefront.ErrCollaborator, err, map[string]any{
			"operation": "get_cart_products",
		})
	}

	req := s.buildRequest(ctx, products)

	session, err := s.payments.CreateSession(ctx, req)
	if err != nil {
		s.logger.Error("checkout session creation failed",
			"items", len(req.LineItems),
			"client_reference_id", req.ClientReferenceID,
			"error", err,
		)
		return nil, storefront.WrapWith(storefront.ErrUpstreamPayment, err, map[string]any{
			"operation": "create_session",
		})
	}
	if session == nil {
		s.logger.Error("payment provider returned no session",
			"client_reference_id", req.ClientReferenceID,
		)
		return nil, storefront.WrapWith(storefront.ErrUpstreamPayment, nil, map[string]any{
			"operation": "create_session",
			"reason":    "empty session",
		})
	}

	s.logger.Info("checkout session created",
		"session_id", session.ID,
		"items", len(req.LineItems),
		"client_reference_id", req.ClientReferenceID,
	)
	return session, nil
}

func (s *Service) buildRequest(ctx context.Context, products []CartProduct) SessionRequest {
	items := make([]LineItem, 0, len(products))
	for _, p := range products {
		items = append(items, LineItem{
			UnitAmount: UnitAmount(p.Price),
			Currency:   s.config.Currency,
			Name:       p.Title,
			Images:     []string{p.ImageURL},
			Quantity:   p.Quantity,
		})
	}

	req := SessionRequest{
		PaymentMethodTypes: []string{s.config.PaymentMethod},
		LineItems:          items,
		Mode:               ModePayment,
		SuccessURL:         s.config.SuccessURL,
		CancelURL:          s.config.CancelURL,
	}
	if s.customer != nil {
		req.CustomerEmail = s.customer.GetUserEmail(ctx)
		req.ClientReferenceID = s.customer.GetUserID(ctx)
	}
	return req
}
