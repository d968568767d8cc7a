package checkout

import (
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"

	"github.com/goliatone/go-storefront"
)

// SignatureHeader carries the provider webhook signature.
const SignatureHeader = "Stripe-Signature"

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// HTTPConfig configures the HTTP controller.
type HTTPConfig struct {
	// CheckoutPath for session creation (default: "/checkout")
	CheckoutPath string

	// WebhookPath for provider webhooks (default: "/webhook")
	WebhookPath string

	// ErrorHandler handles errors (optional)
	ErrorHandler func(ctx router.Context, err error) error
}

// HTTPController exposes the checkout service over HTTP.
type HTTPController struct {
	service *Service
	config  HTTPConfig
}

// NewHTTPController creates a new checkout HTTP controller.
func NewHTTPController(service *Service, cfg HTTPConfig) *HTTPController {
	if cfg.CheckoutPath == "" {
		cfg.CheckoutPath = "/checkout"
	}
	if cfg.WebhookPath == "" {
		cfg.WebhookPath = "/webhook"
	}
	return &HTTPController{
		service: service,
		config:  cfg,
	}
}

// RegisterRoutes registers the checkout routes. Session creation runs behind
// the given middleware, the webhook never does: the provider authenticates
// with its signature.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar, mw ...router.MiddlewareFunc) {
	group.Post(c.config.CheckoutPath, c.CreateCheckoutSession, mw...)
	group.Post(c.config.WebhookPath, c.Webhook)
}

// CreateCheckoutSession answers with the session id and the hosted page URL.
func (c *HTTPController) CreateCheckoutSession(ctx router.Context) error {
	session, err := c.service.CreateCheckoutSession(ctx.Context())
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"session_id": session.ID,
		"url":        session.URL,
	})
}

// Webhook fulfills orders from provider events.
func (c *HTTPController) Webhook(ctx router.Context) error {
	signature := ctx.Header(SignatureHeader)
	if signature == "" {
		return c.handleError(ctx, storefront.WrapWith(storefront.ErrWebhookSignature, nil, map[string]any{
			"reason": "missing signature header",
		}))
	}

	if err := c.service.FulfillOrder(ctx.Context(), ctx.Body(), signature); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]bool{
		"received": true,
	})
}

func (c *HTTPController) handleError(ctx router.Context, err error) error {
	if c.config.ErrorHandler != nil {
		return c.config.ErrorHandler(ctx, err)
	}

	body := map[string]string{"error": err.Error()}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		body["error"] = richErr.Message
		body["code"] = richErr.TextCode
	}
	return ctx.JSON(storefront.HTTPStatus(err), body)
}
