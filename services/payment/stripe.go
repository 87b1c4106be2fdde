package payment

import (
	"context"
	"fmt"
	"math"
	"strings"

	"m3allem/models"
	"m3allem/utils"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"
)

// StripeGateway takes card payments with PaymentIntents. The API key is the
// package-level stripe.Key set at startup.
type StripeGateway struct{}

func NewStripeGateway() *StripeGateway {
	return &StripeGateway{}
}

func (g *StripeGateway) Method() models.PaymentMethod { return models.MethodCard }

func (g *StripeGateway) Charge(ctx context.Context, req models.ChargeRequest) (models.ChargeResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(toMinorUnits(req.Amount)),
		Currency:    stripe.String(strings.ToLower(req.Currency)),
		Description: stripe.String(req.Description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("paymentId", req.PaymentID)
	params.AddMetadata("bookingId", req.BookingID)
	params.SetIdempotencyKey("checkout-" + req.PaymentID)

	pi, err := paymentintent.New(params)
	if err != nil {
		return models.ChargeResult{}, fmt.Errorf("%w: stripe payment intent: %v", utils.ErrGateway, err)
	}

	status := models.PaymentProcessing
	if pi.Status == stripe.PaymentIntentStatusSucceeded {
		status = models.PaymentCompleted
	}
	return models.ChargeResult{
		Status:       status,
		GatewayRef:   pi.ID,
		ClientSecret: pi.ClientSecret,
	}, nil
}

func (g *StripeGateway) Refund(ctx context.Context, p models.Payment) error {
	params := &stripe.RefundParams{PaymentIntent: stripe.String(p.GatewayRef)}
	params.Context = ctx
	params.SetIdempotencyKey("refund-" + p.ID)
	if _, err := refund.New(params); err != nil {
		return fmt.Errorf("%w: stripe refund: %v", utils.ErrGateway, err)
	}
	return nil
}

// toMinorUnits converts dirhams to centimes.
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
