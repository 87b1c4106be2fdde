package review

import (
	"context"

	"m3allem/database/repository"
	"m3allem/models"
	"m3allem/services/notification"
	"m3allem/utils"

	"go.uber.org/zap"
)

// ReviewService manages client reviews and keeps technician ratings in sync.
type ReviewService interface {
	CreateReview(ctx context.Context, in models.ReviewInput) (*models.Review, error)
	// UpdateReview edits a review of clientID. An empty clientID skips the ownership check.
	UpdateReview(ctx context.Context, id, clientID string, upd models.ReviewUpdate) (*models.Review, error)
	// Respond stores the technician's reply. An empty userID skips the ownership check.
	Respond(ctx context.Context, id, userID, text string) (*models.Review, error)
	ListForTechnician(ctx context.Context, technicianID string) ([]models.Review, error)
}

type DefaultReviewService struct {
	Reviews     repository.ReviewRepository
	Bookings    repository.BookingRepository
	Technicians repository.TechnicianRepository
	Notifier    notification.NotificationService
	Clock       utils.Clock
	NewID       utils.IDGenerator
	Logger      *zap.Logger
}

func NewDefaultReviewService(
	store *repository.Store,
	notifier notification.NotificationService,
	clock utils.Clock,
	newID utils.IDGenerator,
	logger *zap.Logger,
) *DefaultReviewService {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	if newID == nil {
		newID = utils.NewID
	}
	return &DefaultReviewService{
		Reviews:     store.Reviews,
		Bookings:    store.Bookings,
		Technicians: store.Technicians,
		Notifier:    notifier,
		Clock:       clock,
		NewID:       newID,
		Logger:      utils.LoggerOr(logger),
	}
}
