package bookingRepo

import (
	"context"
	"fmt"
	"sync"

	"m3allem/models"
)

// MemoryBookingRepo keeps bookings in process. Safe for concurrent use.
type MemoryBookingRepo struct {
	mu       sync.RWMutex
	bookings map[string]models.Booking
	order    []string
}

func NewMemoryBookingRepo() *MemoryBookingRepo {
	return &MemoryBookingRepo{bookings: make(map[string]models.Booking)}
}

func (r *MemoryBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.bookings[b.ID]; exists {
		return fmt.Errorf("booking %s already exists: %w", b.ID, models.ErrConflict)
	}
	r.bookings[b.ID] = *b
	r.order = append(r.order, b.ID)
	return nil
}

func (r *MemoryBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", id, models.ErrNotFound)
	}
	return &b, nil
}

func (r *MemoryBookingRepo) Update(ctx context.Context, b *models.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.bookings[b.ID]
	if !ok {
		return fmt.Errorf("booking %s: %w", b.ID, models.ErrNotFound)
	}
	next := *b
	next.JobID = stored.JobID
	next.TechnicianID = stored.TechnicianID
	next.MatchScore = stored.MatchScore
	next.MatchExplanation = stored.MatchExplanation
	next.CreatedAt = stored.CreatedAt
	r.bookings[b.ID] = next
	return nil
}

func (r *MemoryBookingRepo) List(ctx context.Context, f models.BookingFilter) ([]models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Booking{}
	for _, id := range r.order {
		b := r.bookings[id]
		if f.JobID != "" && b.JobID != f.JobID {
			continue
		}
		if f.ClientID != "" && b.ClientID != f.ClientID {
			continue
		}
		if f.TechnicianID != "" && b.TechnicianID != f.TechnicianID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *MemoryBookingRepo) StatsFor(ctx context.Context, technicianIDs []string) (map[string]models.TechnicianStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(technicianIDs))
	for _, id := range technicianIDs {
		want[id] = true
	}
	stats := make(map[string]models.TechnicianStats, len(technicianIDs))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.bookings {
		if !want[b.TechnicianID] {
			continue
		}
		s := stats[b.TechnicianID]
		s.Total++
		if b.Status == models.BookingCompleted {
			s.Completed++
		}
		if IsActive(b.Status) {
			s.Active++
		}
		stats[b.TechnicianID] = s
	}
	return stats, nil
}
