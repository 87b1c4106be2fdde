package reviewRepo

import (
	"context"
	"math"

	"m3allem/models"
)

// ReviewRepository defines methods for review data access. Writes that change a
// rating also recompute the technician's rating and review count in the same
// atomic operation.
type ReviewRepository interface {
	CreateAndRecompute(ctx context.Context, review *models.Review) (models.RatingSummary, error)
	UpdateAndRecompute(ctx context.Context, review *models.Review) (models.RatingSummary, error)
	// SetResponse stores the technician's reply without touching the rating.
	SetResponse(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id string) (*models.Review, error)
	ListByTechnician(ctx context.Context, technicianID string) ([]models.Review, error)
	// ExistsForBooking reports whether the booking already has a review.
	ExistsForBooking(ctx context.Context, bookingID string) (bool, error)
}

// Summarize computes the derived rating of a technician from all its reviews.
func Summarize(reviews []models.Review) models.RatingSummary {
	if len(reviews) == 0 {
		return models.RatingSummary{}
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return models.RatingSummary{
		Rating:      roundRating(float64(sum) / float64(len(reviews))),
		ReviewCount: len(reviews),
	}
}

func roundRating(v float64) float64 {
	return math.Round(v*100) / 100
}
