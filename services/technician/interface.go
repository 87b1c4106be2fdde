package technician

import (
	"context"

	"m3allem/database/repository"
	"m3allem/models"
	"m3allem/utils"

	"go.uber.org/zap"
)

// TechnicianService manages technician profiles and the public listings.
type TechnicianService interface {
	CreateProfile(ctx context.Context, userID string, p models.TechnicianProfile) (*models.Technician, error)
	UpdateProfile(ctx context.Context, id, userID string, upd models.TechnicianUpdate) (*models.Technician, error)
	SetAvailability(ctx context.Context, id, userID string, available bool) (*models.Technician, error)
	UpdateLocation(ctx context.Context, id, userID string, loc models.LocationUpdate) (*models.Technician, error)
	Get(ctx context.Context, id string) (*models.Technician, error)
	Search(ctx context.Context, criteria models.TechnicianSearch) ([]models.Technician, error)
	// Nearby ranks technicians for a prospective job with the light listing score.
	Nearby(ctx context.Context, q models.NearbyQuery) ([]models.MatchResult, error)
}

type DefaultTechnicianService struct {
	Technicians repository.TechnicianRepository
	Users       repository.UserRepository
	Clock       utils.Clock
	NewID       utils.IDGenerator
	Logger      *zap.Logger
}

func NewDefaultTechnicianService(
	technicians repository.TechnicianRepository,
	users repository.UserRepository,
	clock utils.Clock,
	newID utils.IDGenerator,
	logger *zap.Logger,
) *DefaultTechnicianService {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	if newID == nil {
		newID = utils.NewID
	}
	return &DefaultTechnicianService{
		Technicians: technicians,
		Users:       users,
		Clock:       clock,
		NewID:       newID,
		Logger:      utils.LoggerOr(logger),
	}
}
