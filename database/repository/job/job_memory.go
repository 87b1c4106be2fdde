package jobRepo

import (
	"context"
	"fmt"
	"sync"

	"m3allem/models"
)

// MemoryJobRepo keeps jobs in process. Safe for concurrent use.
type MemoryJobRepo struct {
	mu    sync.RWMutex
	jobs  map[string]models.Job
	order []string
}

func NewMemoryJobRepo() *MemoryJobRepo {
	return &MemoryJobRepo{jobs: make(map[string]models.Job)}
}

func (r *MemoryJobRepo) Create(ctx context.Context, job *models.Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobs[job.ID]; exists {
		return fmt.Errorf("job %s already exists: %w", job.ID, models.ErrConflict)
	}
	r.jobs[job.ID] = *job
	r.order = append(r.order, job.ID)
	return nil
}

func (r *MemoryJobRepo) GetByID(ctx context.Context, id string) (*models.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", id, models.ErrNotFound)
	}
	return &job, nil
}

func (r *MemoryJobRepo) Update(ctx context.Context, job *models.Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[job.ID]; !ok {
		return fmt.Errorf("job %s: %w", job.ID, models.ErrNotFound)
	}
	r.jobs[job.ID] = *job
	return nil
}

func (r *MemoryJobRepo) List(ctx context.Context, f models.JobFilter) ([]models.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Job{}
	for _, id := range r.order {
		j := r.jobs[id]
		if f.ClientID != "" && j.ClientID != f.ClientID {
			continue
		}
		if f.Status != "" && j.Status != f.Status {
			continue
		}
		if f.Service != "" && j.Service != models.CanonicalService(f.Service) {
			continue
		}
		if f.City != "" && !models.SameCity(j.City, f.City) {
			continue
		}
		out = append(out, j)
	}
	return out, nil
}

func (r *MemoryJobRepo) CountPending(ctx context.Context, service, city, excludeID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	want := models.CanonicalService(service)
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for id, j := range r.jobs {
		if id == excludeID || j.Status != models.JobPending {
			continue
		}
		if j.Service == want && models.SameCity(j.City, city) {
			n++
		}
	}
	return n, nil
}
