package checkout_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-storefront"
	"github.com/goliatone/go-storefront/checkout"
)

func newFiberServer(t *testing.T, controller *checkout.HTTPController) router.Server[*fiber.App] {
	t.Helper()
	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return fiber.New(fiber.Config{DisableStartupMessage: true})
	})
	controller.RegisterRoutes(srv.Router().Group("/payment"))
	return srv
}

func TestFiberWebhookReadsSignatureHeader(t *testing.T) {
	body := []byte(`{"id":"evt_1"}`)

	verifier := &MockWebhookVerifier{}
	verifier.On("VerifyEvent", body, "t=1,v1=abc").Return(checkout.Event{
		ID:      "evt_1",
		Type:    checkout.EventCheckoutSessionCompleted,
		Session: &checkout.Session{ID: "cs_1", ClientReferenceID: "user-7"},
	}, nil)
	orders := &MockOrderPlacer{}
	orders.On("PlaceOrder", mock.Anything, "user-7").Return(nil)

	srv := newFiberServer(t, checkout.NewHTTPController(newFulfillmentService(verifier, orders), checkout.HTTPConfig{}))

	req := httptest.NewRequest(http.MethodPost, "/payment/webhook", bytes.NewReader(body))
	req.Header.Set(checkout.SignatureHeader, "t=1,v1=abc")

	res, err := srv.WrappedRouter().Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	verifier.AssertExpectations(t)
	orders.AssertExpectations(t)
}

func TestFiberWebhookWithoutSignatureHeader(t *testing.T) {
	verifier := &MockWebhookVerifier{}
	srv := newFiberServer(t, checkout.NewHTTPController(newFulfillmentService(verifier, &MockOrderPlacer{}), checkout.HTTPConfig{}))

	req := httptest.NewRequest(http.MethodPost, "/payment/webhook", bytes.NewReader([]byte(`{}`)))

	res, err := srv.WrappedRouter().Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	var payload map[string]string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	assert.Equal(t, storefront.TextCodeWebhookSignature, payload["code"])
	verifier.AssertNotCalled(t, "VerifyEvent", mock.Anything, mock.Anything)
}

func TestFiberCreateCheckoutSession(t *testing.T) {
	cart := &MockCartProvider{}
	cart.On("GetCartProducts", mock.Anything).Return([]checkout.CartProduct{shirt()}, nil)
	payments := &MockPaymentProvider{}
	payments.On("CreateSession", mock.Anything, mock.Anything).
		Return(&checkout.Session{ID: "cs_1", URL: "https://checkout.example/cs_1"}, nil)

	srv := newFiberServer(t, checkout.NewHTTPController(checkout.NewService(cart, staticCustomer{}, payments), checkout.HTTPConfig{}))

	res, err := srv.WrappedRouter().Test(httptest.NewRequest(http.MethodPost, "/payment/checkout", nil), -1)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)

	var payload map[string]string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	assert.Equal(t, "cs_1", payload["session_id"])
}
