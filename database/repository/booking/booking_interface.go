package bookingRepo

import (
	"context"

	"m3allem/models"
)

// BookingRepository defines methods for booking data access.
type BookingRepository interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	Update(ctx context.Context, b *models.Booking) error
	// List returns bookings matching filter, oldest first.
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	// StatsFor aggregates booking history per technician. Technicians without
	// bookings are absent from the result.
	StatsFor(ctx context.Context, technicianIDs []string) (map[string]models.TechnicianStats, error)
}

// IsActive reports whether a booking still occupies the technician.
func IsActive(s models.BookingStatus) bool {
	return s == models.BookingPending || s == models.BookingAccepted || s == models.BookingInProgress
}
