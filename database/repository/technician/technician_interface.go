package technicianRepo

import (
	"context"

	"m3allem/models"
)

// TechnicianRepository defines methods for technician data access.
//
// Update never writes rating, reviewCount or completedJobs: those are derived
// and change only through SetRating and IncrementCompletedJobs.
type TechnicianRepository interface {
	Create(ctx context.Context, t *models.Technician) error
	GetByID(ctx context.Context, id string) (*models.Technician, error)
	GetByUserID(ctx context.Context, userID string) (*models.Technician, error)
	Update(ctx context.Context, t *models.Technician) error
	Delete(ctx context.Context, id string) error
	// Search returns technicians matching the criteria, best rated first.
	Search(ctx context.Context, criteria models.TechnicianSearch) ([]models.Technician, error)
	SetRating(ctx context.Context, id string, summary models.RatingSummary) error
	IncrementCompletedJobs(ctx context.Context, id string) error
}
