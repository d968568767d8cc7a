package checkout_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/goliatone/go-storefront/checkout"
)

// MockCartProvider implements checkout.CartProvider
type MockCartProvider struct {
	mock.Mock
}

func (m *MockCartProvider) GetCartProducts(ctx context.Context) ([]checkout.CartProduct, error) {
	args := m.Called(ctx)
	products, _ := args.Get(0).([]checkout.CartProduct)
	return products, args.Error(1)
}

// MockPaymentProvider implements checkout.PaymentProvider
type MockPaymentProvider struct {
	mock.Mock
}

func (m *MockPaymentProvider) CreateSession(ctx context.Context, req checkout.SessionRequest) (*checkout.Session, error) {
	args := m.Called(ctx, req)
	session, _ := args.Get(0).(*checkout.Session)
	return session, args.Error(1)
}

// MockWebhookVerifier implements checkout.WebhookVerifier
type MockWebhookVerifier struct {
	mock.Mock
}

func (m *MockWebhookVerifier) VerifyEvent(payload []byte, signature string) (checkout.Event, error) {
	args := m.Called(payload, signature)
	return args.Get(0).(checkout.Event), args.Error(1)
}

// MockOrderPlacer implements checkout.OrderPlacer
type MockOrderPlacer struct {
	mock.Mock
}

func (m *MockOrderPlacer) PlaceOrder(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type staticCustomer struct {
	email string
	id    string
}

func (c staticCustomer) GetUserEmail(context.Context) string { return c.email }
func (c staticCustomer) GetUserID(context.Context) string    { return c.id }
