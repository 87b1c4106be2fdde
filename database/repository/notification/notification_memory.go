package notificationRepo

import (
	"context"
	"fmt"
	"sync"

	"m3allem/models"
)

type MemoryNotificationRepo struct {
	mu    sync.RWMutex
	items []models.Notification
}

func NewMemoryNotificationRepo() *MemoryNotificationRepo {
	return &MemoryNotificationRepo{}
}

func (r *MemoryNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, *n)
	return nil
}

func (r *MemoryNotificationRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Notification{}
	for i := len(r.items) - 1; i >= 0; i-- {
		n := r.items[i]
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, n)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *MemoryNotificationRepo) MarkRead(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].UserID == userID {
			r.items[i].Read = true
			return nil
		}
	}
	return fmt.Errorf("notification %s: %w", id, models.ErrNotFound)
}

func (r *MemoryNotificationRepo) DeleteByUser(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.items[:0]
	for _, n := range r.items {
		if n.UserID != userID {
			kept = append(kept, n)
		}
	}
	r.items = kept
	return nil
}
