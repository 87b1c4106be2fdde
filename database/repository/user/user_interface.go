package userRepo

import (
	"context"

	"m3allem/models"
)

// UserRepository defines methods for user data access.
type UserRepository interface {
	// Create inserts a new user. A duplicate email yields models.ErrConflict.
	Create(ctx context.Context, user *models.User) error
	// GetByID retrieves a user by its unique ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail retrieves a user by its email address, case-insensitively.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Update modifies an existing user record.
	Update(ctx context.Context, user *models.User) error
	// Delete removes a user record by its ID.
	Delete(ctx context.Context, id string) error
	// CountByRole returns the number of registered accounts per role.
	CountByRole(ctx context.Context) (map[models.Role]int, error)
}
