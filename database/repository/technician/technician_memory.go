package technicianRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"m3allem/models"
)

// MemoryTechnicianRepo keeps technicians in process. Safe for concurrent use.
type MemoryTechnicianRepo struct {
	mu          sync.RWMutex
	technicians map[string]models.Technician
	byUser      map[string]string
	order       []string
}

func NewMemoryTechnicianRepo() *MemoryTechnicianRepo {
	return &MemoryTechnicianRepo{
		technicians: make(map[string]models.Technician),
		byUser:      make(map[string]string),
	}
}

func (r *MemoryTechnicianRepo) Create(ctx context.Context, t *models.Technician) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.technicians[t.ID]; exists {
		return fmt.Errorf("technician %s already exists: %w", t.ID, models.ErrConflict)
	}
	if t.UserID != "" {
		if _, taken := r.byUser[t.UserID]; taken {
			return fmt.Errorf("technician profile for user %s already exists: %w", t.UserID, models.ErrConflict)
		}
		r.byUser[t.UserID] = t.ID
	}
	r.technicians[t.ID] = *t
	r.order = append(r.order, t.ID)
	return nil
}

func (r *MemoryTechnicianRepo) GetByID(ctx context.Context, id string) (*models.Technician, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.technicians[id]
	if !ok {
		return nil, fmt.Errorf("technician %s: %w", id, models.ErrNotFound)
	}
	return &t, nil
}

func (r *MemoryTechnicianRepo) GetByUserID(ctx context.Context, userID string) (*models.Technician, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUser[userID]
	if !ok {
		return nil, fmt.Errorf("technician of user %s: %w", userID, models.ErrNotFound)
	}
	t := r.technicians[id]
	return &t, nil
}

func (r *MemoryTechnicianRepo) Update(ctx context.Context, t *models.Technician) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.technicians[t.ID]
	if !ok {
		return fmt.Errorf("technician %s: %w", t.ID, models.ErrNotFound)
	}
	next := *t
	next.UserID = stored.UserID
	next.Rating = stored.Rating
	next.ReviewCount = stored.ReviewCount
	next.CompletedJobs = stored.CompletedJobs
	next.CreatedAt = stored.CreatedAt
	r.technicians[t.ID] = next
	return nil
}

func (r *MemoryTechnicianRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.technicians[id]
	if !ok {
		return fmt.Errorf("technician %s: %w", id, models.ErrNotFound)
	}
	delete(r.technicians, id)
	delete(r.byUser, t.UserID)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryTechnicianRepo) Search(ctx context.Context, c models.TechnicianSearch) ([]models.Technician, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := []models.Technician{}
	for _, id := range r.order {
		t := r.technicians[id]
		if c.Service != "" && !t.OffersService(c.Service) {
			continue
		}
		if c.City != "" && !models.SameCity(t.City, c.City) {
			continue
		}
		if c.AvailableOnly && !t.IsAvailable {
			continue
		}
		if c.MinRating > 0 && t.Rating < c.MinRating {
			continue
		}
		out = append(out, t)
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].ID < out[j].ID
	})
	if c.Limit > 0 && len(out) > c.Limit {
		out = out[:c.Limit]
	}
	return out, nil
}

func (r *MemoryTechnicianRepo) SetRating(ctx context.Context, id string, s models.RatingSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.technicians[id]
	if !ok {
		return fmt.Errorf("technician %s: %w", id, models.ErrNotFound)
	}
	t.Rating = s.Rating
	t.ReviewCount = s.ReviewCount
	r.technicians[id] = t
	return nil
}

func (r *MemoryTechnicianRepo) IncrementCompletedJobs(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.technicians[id]
	if !ok {
		return fmt.Errorf("technician %s: %w", id, models.ErrNotFound)
	}
	t.CompletedJobs++
	r.technicians[id] = t
	return nil
}
