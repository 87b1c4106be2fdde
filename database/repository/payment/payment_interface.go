package paymentRepo

import (
	"context"

	"m3allem/models"
)

// PaymentRepository defines methods for payment data access.
type PaymentRepository interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByID(ctx context.Context, id string) (*models.Payment, error)
	// GetByGatewayRef finds the payment a gateway callback refers to.
	GetByGatewayRef(ctx context.Context, ref string) (*models.Payment, error)
	Update(ctx context.Context, p *models.Payment) error
	// ListByBooking returns the payments for a booking, oldest first.
	ListByBooking(ctx context.Context, bookingID string) ([]models.Payment, error)
}
