package payment

import (
	"context"

	"m3allem/models"
)

// PaymentService runs the payment lifecycle of bookings.
type PaymentService interface {
	// Checkout starts collecting the amount due on a booking with the chosen method.
	Checkout(ctx context.Context, req models.CheckoutRequest, clientID string) (*models.Payment, error)
	Get(ctx context.Context, id string) (*models.Payment, error)
	ListForBooking(ctx context.Context, bookingID string) ([]models.Payment, error)
	// Confirm marks the payment completed. Confirming a completed payment is a no-op.
	Confirm(ctx context.Context, id, transactionID string) (*models.Payment, error)
	Fail(ctx context.Context, id, reason string) (*models.Payment, error)
	Cancel(ctx context.Context, id string) (*models.Payment, error)
	Refund(ctx context.Context, id string) (*models.Payment, error)
	// HandleStripeEvent verifies and applies a Stripe webhook delivery.
	HandleStripeEvent(ctx context.Context, payload []byte, signature string) error
}

// Gateway collects payments for one method.
type Gateway interface {
	Method() models.PaymentMethod
	Charge(ctx context.Context, req models.ChargeRequest) (models.ChargeResult, error)
	Refund(ctx context.Context, p models.Payment) error
}

// Bookings is the part of the booking lifecycle payments drive.
type Bookings interface {
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	AcceptBooking(ctx context.Context, id string) (*models.Booking, error)
}
