package user

import (
	"context"
	"time"

	"m3allem/database/repository"
	"m3allem/models"
	"m3allem/utils"

	"go.uber.org/zap"
)

// UserService handles accounts and authentication.
type UserService interface {
	Register(ctx context.Context, reg models.UserRegistration) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Get(ctx context.Context, id string) (*models.User, error)
	UpdateFCMToken(ctx context.Context, id, token string) error
	UpdatePassword(ctx context.Context, id, current, next string) error
	// Delete removes the account with its technician profile and inbox.
	Delete(ctx context.Context, id string) error
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo          repository.UserRepository
	Technicians   repository.TechnicianRepository
	Notifications repository.NotificationRepository
	TokenTTL      time.Duration
	Clock         utils.Clock
	NewID         utils.IDGenerator
	Logger        *zap.Logger
}

func NewDefaultUserService(
	store *repository.Store,
	tokenTTL time.Duration,
	clock utils.Clock,
	newID utils.IDGenerator,
	logger *zap.Logger,
) *DefaultUserService {
	if tokenTTL <= 0 {
		tokenTTL = 72 * time.Hour
	}
	if clock == nil {
		clock = utils.SystemClock{}
	}
	if newID == nil {
		newID = utils.NewID
	}
	return &DefaultUserService{
		Repo:          store.Users,
		Technicians:   store.Technicians,
		Notifications: store.Notifications,
		TokenTTL:      tokenTTL,
		Clock:         clock,
		NewID:         newID,
		Logger:        utils.LoggerOr(logger),
	}
}
