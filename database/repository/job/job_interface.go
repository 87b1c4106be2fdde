package jobRepo

import (
	"context"

	"m3allem/models"
)

// JobRepository defines methods for job data access.
type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id string) (*models.Job, error)
	// Update replaces the stored job with the same ID.
	Update(ctx context.Context, job *models.Job) error
	// List returns jobs matching filter, oldest first.
	List(ctx context.Context, filter models.JobFilter) ([]models.Job, error)
	// CountPending counts pending jobs of a service in a city, excluding excludeID.
	CountPending(ctx context.Context, service, city, excludeID string) (int, error)
}
