package paymentRepo

import (
	"context"
	"fmt"
	"sync"

	"m3allem/models"
)

type MemoryPaymentRepo struct {
	mu       sync.RWMutex
	payments map[string]models.Payment
	order    []string
}

func NewMemoryPaymentRepo() *MemoryPaymentRepo {
	return &MemoryPaymentRepo{payments: make(map[string]models.Payment)}
}

func (r *MemoryPaymentRepo) Create(ctx context.Context, p *models.Payment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.payments[p.ID]; exists {
		return fmt.Errorf("payment %s already exists: %w", p.ID, models.ErrConflict)
	}
	stored := *p
	stored.ClientSecret = ""
	r.payments[p.ID] = stored
	r.order = append(r.order, p.ID)
	return nil
}

func (r *MemoryPaymentRepo) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, fmt.Errorf("payment %s: %w", id, models.ErrNotFound)
	}
	return &p, nil
}

func (r *MemoryPaymentRepo) GetByGatewayRef(ctx context.Context, ref string) (*models.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ref != "" {
		for _, id := range r.order {
			if p := r.payments[id]; p.GatewayRef == ref {
				return &p, nil
			}
		}
	}
	return nil, fmt.Errorf("payment with gateway ref %s: %w", ref, models.ErrNotFound)
}

func (r *MemoryPaymentRepo) Update(ctx context.Context, p *models.Payment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.payments[p.ID]; !ok {
		return fmt.Errorf("payment %s: %w", p.ID, models.ErrNotFound)
	}
	stored := *p
	stored.ClientSecret = ""
	r.payments[p.ID] = stored
	return nil
}

func (r *MemoryPaymentRepo) ListByBooking(ctx context.Context, bookingID string) ([]models.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Payment{}
	for _, id := range r.order {
		if p := r.payments[id]; p.BookingID == bookingID {
			out = append(out, p)
		}
	}
	return out, nil
}
