package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"m3allem/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

func (s *DefaultPaymentService) HandleStripeEvent(ctx context.Context, payload []byte, signature string) error {
	if s.WebhookSecret == "" {
		return models.NewValidationError("webhook", "stripe webhooks are not configured")
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return models.NewValidationError("Stripe-Signature", err.Error())
	}

	switch string(event.Type) {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
	default:
		s.Logger.Debug("HandleStripeEvent: ignoring event", zap.String("type", string(event.Type)))
		return nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return models.NewValidationError("data", fmt.Sprintf("invalid payment intent: %v", err))
	}
	p, err := s.Repo.GetByGatewayRef(ctx, pi.ID)
	if errors.Is(err, models.ErrNotFound) {
		// Not one of ours, or created outside checkout: acknowledge so Stripe stops retrying.
		s.Logger.Warn("HandleStripeEvent: unknown payment intent", zap.String("paymentIntent", pi.ID))
		return nil
	}
	if err != nil {
		return err
	}

	if event.Type == "payment_intent.succeeded" {
		txID := pi.ID
		if pi.LatestCharge != nil && pi.LatestCharge.ID != "" {
			txID = pi.LatestCharge.ID
		}
		_, err = s.Confirm(ctx, p.ID, txID)
		return err
	}

	reason := "payment failed"
	if pi.LastPaymentError != nil && pi.LastPaymentError.Msg != "" {
		reason = pi.LastPaymentError.Msg
	}
	if _, err := s.Fail(ctx, p.ID, reason); err != nil && !errors.Is(err, models.ErrConflict) {
		return err
	}
	return nil
}
