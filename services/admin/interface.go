package admin

import (
	"context"

	"m3allem/database/repository"
	"m3allem/models"
	"m3allem/utils"

	"go.uber.org/zap"
)

type AdminService interface {
	LegalSections() []models.LegalSection
	// LegalSectionsFor keeps the documents addressed to role plus the shared ones.
	LegalSectionsFor(role models.Role) []models.LegalSection
	Overview(ctx context.Context) (*models.PlatformOverview, error)
}

// DefaultAdminService is the production implementation.
type DefaultAdminService struct {
	Jobs        repository.JobRepository
	Bookings    repository.BookingRepository
	Technicians repository.TechnicianRepository
	Users       repository.UserRepository
	Logger      *zap.Logger
}

func NewDefaultAdminService(store *repository.Store, logger *zap.Logger) *DefaultAdminService {
	return &DefaultAdminService{
		Jobs:        store.Jobs,
		Bookings:    store.Bookings,
		Technicians: store.Technicians,
		Users:       store.Users,
		Logger:      utils.LoggerOr(logger),
	}
}
