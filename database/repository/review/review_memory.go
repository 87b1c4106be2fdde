package reviewRepo

import (
	"context"
	"fmt"
	"sync"

	technicianRepo "m3allem/database/repository/technician"
	"m3allem/models"
)

// MemoryReviewRepo keeps reviews in process. A single write lock covers the review
// insert, the recompute and the technician rating write.
type MemoryReviewRepo struct {
	mu          sync.Mutex
	reviews     map[string]models.Review
	order       []string
	technicians technicianRepo.TechnicianRepository
}

func NewMemoryReviewRepo(technicians technicianRepo.TechnicianRepository) *MemoryReviewRepo {
	return &MemoryReviewRepo{
		reviews:     make(map[string]models.Review),
		technicians: technicians,
	}
}

func (r *MemoryReviewRepo) CreateAndRecompute(ctx context.Context, review *models.Review) (models.RatingSummary, error) {
	if err := ctx.Err(); err != nil {
		return models.RatingSummary{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.technicians.GetByID(ctx, review.TechnicianID); err != nil {
		return models.RatingSummary{}, err
	}
	if _, exists := r.reviews[review.ID]; exists {
		return models.RatingSummary{}, fmt.Errorf("review %s already exists: %w", review.ID, models.ErrConflict)
	}
	if review.BookingID != "" && r.bookingReviewedLocked(review.BookingID) {
		return models.RatingSummary{}, fmt.Errorf("booking %s already reviewed: %w", review.BookingID, models.ErrConflict)
	}

	r.reviews[review.ID] = *review
	r.order = append(r.order, review.ID)

	summary := Summarize(r.forTechnicianLocked(review.TechnicianID))
	if err := r.technicians.SetRating(ctx, review.TechnicianID, summary); err != nil {
		delete(r.reviews, review.ID)
		r.order = r.order[:len(r.order)-1]
		return models.RatingSummary{}, err
	}
	return summary, nil
}

func (r *MemoryReviewRepo) UpdateAndRecompute(ctx context.Context, review *models.Review) (models.RatingSummary, error) {
	if err := ctx.Err(); err != nil {
		return models.RatingSummary{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	previous, ok := r.reviews[review.ID]
	if !ok {
		return models.RatingSummary{}, fmt.Errorf("review %s: %w", review.ID, models.ErrNotFound)
	}
	r.reviews[review.ID] = *review

	summary := Summarize(r.forTechnicianLocked(review.TechnicianID))
	if err := r.technicians.SetRating(ctx, review.TechnicianID, summary); err != nil {
		r.reviews[review.ID] = previous
		return models.RatingSummary{}, err
	}
	return summary, nil
}

func (r *MemoryReviewRepo) SetResponse(ctx context.Context, review *models.Review) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.reviews[review.ID]
	if !ok {
		return fmt.Errorf("review %s: %w", review.ID, models.ErrNotFound)
	}
	stored.Response = review.Response
	stored.RespondedAt = review.RespondedAt
	stored.UpdatedAt = review.UpdatedAt
	r.reviews[review.ID] = stored
	return nil
}

func (r *MemoryReviewRepo) GetByID(ctx context.Context, id string) (*models.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	review, ok := r.reviews[id]
	if !ok {
		return nil, fmt.Errorf("review %s: %w", id, models.ErrNotFound)
	}
	return &review, nil
}

// ListByTechnician returns the newest reviews first.
func (r *MemoryReviewRepo) ListByTechnician(ctx context.Context, technicianID string) ([]models.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	reviews := r.forTechnicianLocked(technicianID)
	for i, j := 0, len(reviews)-1; i < j; i, j = i+1, j-1 {
		reviews[i], reviews[j] = reviews[j], reviews[i]
	}
	return reviews, nil
}

func (r *MemoryReviewRepo) ExistsForBooking(ctx context.Context, bookingID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bookingReviewedLocked(bookingID), nil
}

func (r *MemoryReviewRepo) forTechnicianLocked(technicianID string) []models.Review {
	out := []models.Review{}
	for _, id := range r.order {
		if rv := r.reviews[id]; rv.TechnicianID == technicianID {
			out = append(out, rv)
		}
	}
	return out
}

func (r *MemoryReviewRepo) bookingReviewedLocked(bookingID string) bool {
	for _, rv := range r.reviews {
		if rv.BookingID == bookingID {
			return true
		}
	}
	return false
}
