package userRepo

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"m3allem/models"
)

type MemoryUserRepo struct {
	mu      sync.RWMutex
	users   map[string]models.User
	byEmail map[string]string
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		users:   make(map[string]models.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryUserRepo) Create(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.ID]; exists {
		return fmt.Errorf("user %s already exists: %w", user.ID, models.ErrConflict)
	}
	if _, taken := r.byEmail[user.Email]; taken {
		return fmt.Errorf("email %s already registered: %w", user.Email, models.ErrConflict)
	}
	r.users[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	return &user, nil
}

func (r *MemoryUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("user with email %s: %w", email, models.ErrNotFound)
	}
	user := r.users[id]
	return &user, nil
}

func (r *MemoryUserRepo) Update(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.users[user.ID]
	if !ok {
		return fmt.Errorf("user %s: %w", user.ID, models.ErrNotFound)
	}
	if owner, taken := r.byEmail[user.Email]; taken && owner != user.ID {
		return fmt.Errorf("email %s already registered: %w", user.Email, models.ErrConflict)
	}
	delete(r.byEmail, current.Email)
	r.byEmail[user.Email] = user.ID
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	delete(r.byEmail, user.Email)
	delete(r.users, id)
	return nil
}

func (r *MemoryUserRepo) CountByRole(ctx context.Context) (map[models.Role]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[models.Role]int)
	for _, u := range r.users {
		counts[u.Role]++
	}
	return counts, nil
}
