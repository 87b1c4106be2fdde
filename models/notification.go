package models

import "time"

// Notification types.
const (
	NotifyBookingCreated   = "booking_created"
	NotifyBookingAccepted  = "booking_accepted"
	NotifyBookingStarted   = "booking_started"
	NotifyBookingCompleted = "booking_completed"
	NotifyBookingCancelled = "booking_cancelled"
	NotifyPaymentCompleted = "payment_completed"
	NotifyPaymentFailed    = "payment_failed"
	NotifyReminder         = "booking_reminder"
	NotifyNewReview        = "new_review"
)

type Notification struct {
	ID        string    `bson:"id" json:"id"`
	UserID    string    `bson:"userId" json:"userId"`
	Type      string    `bson:"type" json:"type"`
	Title     string    `bson:"title" json:"title"`
	Message   string    `bson:"message" json:"message"`
	BookingID string    `bson:"bookingId,omitempty" json:"bookingId,omitempty"`
	Read      bool      `bson:"read" json:"read"`
	Pushed    bool      `bson:"pushed" json:"pushed"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
