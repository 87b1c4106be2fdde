package booking

import (
	"context"

	"m3allem/database/repository"
	"m3allem/models"
	"m3allem/services/intelligence"
	"m3allem/services/matching"
	"m3allem/services/notification"
	"m3allem/utils"

	"go.uber.org/zap"
)

// BookingService owns the job and booking lifecycles.
type BookingService interface {
	CreateJob(ctx context.Context, req models.JobRequest) (*models.JobCreation, error)
	GetJob(ctx context.Context, id string) (*models.Job, error)
	ListJobs(ctx context.Context, filter models.JobFilter) ([]models.Job, error)
	MatchesForJob(ctx context.Context, id string) ([]models.MatchResult, error)
	CancelJob(ctx context.Context, id, reason string) (*models.Job, error)

	CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	AcceptBooking(ctx context.Context, id string) (*models.Booking, error)
	StartBooking(ctx context.Context, id string) (*models.Booking, error)
	// CompleteBooking closes the booking; a positive finalCost replaces the estimate.
	CompleteBooking(ctx context.Context, id string, finalCost float64) (*models.Booking, error)
	CancelBooking(ctx context.Context, id, reason string) (*models.Booking, error)
	MarkNoShow(ctx context.Context, id string) (*models.Booking, error)
}

// PriceEstimator is the dynamic pricing engine used when a booking is created.
type PriceEstimator interface {
	EstimatePrice(ctx context.Context, p models.PricingParams) models.PricingResult
}

// DefaultBookingService implements BookingService. Notifier and Reminders are optional.
type DefaultBookingService struct {
	Jobs        repository.JobRepository
	Bookings    repository.BookingRepository
	Technicians repository.TechnicianRepository
	Estimator   PriceEstimator
	Matching    matching.MatchingService
	Analyzer    intelligence.Analyzer
	Notifier    notification.NotificationService
	Reminders   ReminderScheduler
	Clock       utils.Clock
	NewID       utils.IDGenerator
	Logger      *zap.Logger

	locks *keyedMutex
}

func NewDefaultBookingService(
	store *repository.Store,
	estimator PriceEstimator,
	matchingSvc matching.MatchingService,
	analyzer intelligence.Analyzer,
	notifier notification.NotificationService,
	reminders ReminderScheduler,
	clock utils.Clock,
	newID utils.IDGenerator,
	logger *zap.Logger,
) *DefaultBookingService {
	if analyzer == nil {
		analyzer = intelligence.NewRuleAnalyzer()
	}
	if clock == nil {
		clock = utils.SystemClock{}
	}
	if newID == nil {
		newID = utils.NewID
	}
	return &DefaultBookingService{
		Jobs:        store.Jobs,
		Bookings:    store.Bookings,
		Technicians: store.Technicians,
		Estimator:   estimator,
		Matching:    matchingSvc,
		Analyzer:    analyzer,
		Notifier:    notifier,
		Reminders:   reminders,
		Clock:       clock,
		NewID:       newID,
		Logger:      utils.LoggerOr(logger),
		locks:       newKeyedMutex(),
	}
}

// lockJob serializes every status change touching a job and its bookings.
func (s *DefaultBookingService) lockJob(jobID string) func() {
	return s.locks.Lock("job:" + jobID)
}
