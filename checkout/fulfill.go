package checkout

import (
	"context"
	"strings"

	"github.com/goliatone/go-storefront"
)

// FulfillOrder verifies a provider webhook and places the order of the
// customer referenced by a completed checkout session. Other event types are
// acknowledged and ignored.
func (s *Service) FulfillOrder(ctx context.Context, payload []byte, signature string) error {
	if s.verifier == nil || s.orders == nil {
		return storefront.WrapWith(storefront.ErrInvalidConfig, nil, map[string]any{
			"reason": "fulfillment not configured",
		})
	}

	event, err := s.verifier.VerifyEvent(payload, signature)
	if err != nil {
		s.logger.Warn("webhook rejected", "error", err)
		if storefront.HasTextCode(err, storefront.TextCodeWebhookPayload) {
			return err
		}
		return storefront.WrapWith(storefront.ErrWebhookSignature, err, nil)
	}

	if event.Type != EventCheckoutSessionCompleted {
		s.logger.Debug("webhook ignored", "event_id", event.ID, "type", event.Type)
		return nil
	}

	if event.Session == nil || strings.TrimSpace(event.Session.ClientReferenceID) == "" {
		return storefront.WrapWith(storefront.ErrWebhookPayload, nil, map[string]any{
			"event_id": event.ID,
			"reason":   "missing client reference",
		})
	}

	userID := event.Session.ClientReferenceID
	if err := s.orders.PlaceOrder(ctx, userID); err != nil {
		// redelivered webhook, the cart was already turned into an order
		if storefront.HasTextCode(err, storefront.TextCodeEmptyCart) {
			s.logger.Warn("order already placed", "event_id", event.ID, "user_id", userID)
			return nil
		}
		s.logger.Error("order placement failed", "event_id", event.ID, "user_id", userID, "error", err)
		return storefront.WrapWith(storefront.ErrCollaborator, err, map[string]any{
			"operation": "place_order",
			"event_id":  event.ID,
		})
	}

	s.logger.Info("order placed", "event_id", event.ID, "session_id", event.Session.ID, "user_id", userID)
	return nil
}
