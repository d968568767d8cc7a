package checkout

import (
	"context"

	"github.com/shopspring/decimal"
)

// ModePayment is the only session mode the service creates.
const ModePayment = "payment"

// EventCheckoutSessionCompleted is the provider event fired once a hosted
// checkout is paid.
const EventCheckoutSessionCompleted = "checkout.session.completed"

// CartProduct is one line of the current user's cart. Price is in major
// currency units.
type CartProduct struct {
	ProductID string          `json:"product_id"`
	Title     string          `json:"title"`
	ImageURL  string          `json:"image_url"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
}

// LineItem is a cart line translated for the payment provider. UnitAmount is
// in minor currency units.
type LineItem struct {
	UnitAmount int64    `json:"unit_amount"`
	Currency   string   `json:"currency"`
	Name       string   `json:"name"`
	Images     []string `json:"images"`
	Quantity   int64    `json:"quantity"`
}

// SessionRequest is what the payment provider receives to open a hosted
// checkout.
type SessionRequest struct {
	CustomerEmail      string     `json:"customer_email"`
	PaymentMethodTypes []string   `json:"payment_method_types"`
	LineItems          []LineItem `json:"line_items"`
	Mode               string     `json:"mode"`
	SuccessURL         string     `json:"success_url"`
	CancelURL          string     `json:"cancel_url"`
	ClientReferenceID  string     `json:"client_reference_id,omitempty"`
}

// Session is the provider's hosted checkout session.
type Session struct {
	ID                string `json:"id"`
	URL               string `json:"url"`
	Status            string `json:"status,omitempty"`
	PaymentStatus     string `json:"payment_status,omitempty"`
	CustomerEmail     string `json:"customer_email,omitempty"`
	ClientReferenceID string `json:"client_reference_id,omitempty"`
	Currency          string `json:"currency,omitempty"`
	AmountTotal       int64  `json:"amount_total,omitempty"`
}

// Event is a verified provider webhook. Session is set for checkout events.
type Event struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Session *Session `json:"session,omitempty"`
}

// CartProvider returns the cart of the user bound to ctx.
type CartProvider interface {
	GetCartProducts(ctx context.Context) ([]CartProduct, error)
}

// PaymentProvider opens hosted checkout sessions.
type PaymentProvider interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
}

// WebhookVerifier authenticates and decodes provider webhooks.
type WebhookVerifier interface {
	VerifyEvent(payload []byte, signature string) (Event, error)
}

// OrderPlacer turns the cart of userID into an order.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, userID string) error
}

// CartProviderFunc adapts a function into a CartProvider.
type CartProviderFunc func(ctx context.Context) ([]CartProduct, error)

// GetCartProducts implements CartProvider.
func (f CartProviderFunc) GetCartProducts(ctx context.Context) ([]CartProduct, error) {
	return f(ctx)
}

// OrderPlacerFunc adapts a function into an OrderPlacer.
type OrderPlacerFunc func(ctx context.Context, userID string) error

// PlaceOrder implements OrderPlacer.
func (f OrderPlacerFunc) PlaceOrder(ctx context.Context, userID string) error {
	return f(ctx, userID)
}

// UnitAmount converts a major unit price to minor units, rounding half away
// from zero.
func UnitAmount(price decimal.Decimal) int64 {
	return price.Shift(2).Round(0).IntPart()
}
