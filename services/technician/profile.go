package technician

import (
	"context"
	"fmt"
	"strings"

	"m3allem/models"

	"go.uber.org/zap"
)

const maxHourlyRate = 2000

func (s *DefaultTechnicianService) CreateProfile(ctx context.Context, userID string, p models.TechnicianProfile) (*models.Technician, error) {
	// 1. The owner must be a technician account without a profile
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Role != models.RoleTechnician {
		return nil, fmt.Errorf("user %s is a %s account: %w", userID, u.Role, models.ErrConflict)
	}

	// 2. Validate
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = u.Name
	}
	if name == "" {
		return nil, models.NewValidationError("name", "name is required")
	}
	city := strings.TrimSpace(p.City)
	if city == "" {
		city = u.City
	}
	if city == "" {
		return nil, models.NewValidationError("city", "city is required")
	}
	services, err := canonicalServices(p.Services)
	if err != nil {
		return nil, err
	}
	if len(services) == 0 {
		return nil, models.NewValidationError("services", "at least one service is required")
	}
	if err := validateRate(p.HourlyRate); err != nil {
		return nil, err
	}
	if p.YearsExperience < 0 {
		return nil, models.NewValidationError("yearsExperience", "must not be negative")
	}
	phone := strings.TrimSpace(p.Phone)
	if phone == "" {
		phone = u.Phone
	}

	// 3. Persist
	now := s.Clock.Now()
	t := models.Technician{
		ID:              s.NewID(),
		UserID:          userID,
		Name:            name,
		Phone:           phone,
		Services:        services,
		Skills:          p.Skills,
		City:            city,
		Languages:       p.Languages,
		YearsExperience: p.YearsExperience,
		HourlyRate:      p.HourlyRate,
		IsPro:           p.IsPro,
		IsAvailable:     true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if p.Lat != nil && p.Lng != nil {
		if err := validateCoordinates(*p.Lat, *p.Lng); err != nil {
			return nil, err
		}
		t.Location = models.NewGeoPoint(*p.Lat, *p.Lng)
	}
	if err := s.Technicians.Create(ctx, &t); err != nil {
		return nil, err
	}
	s.Logger.Info("CreateProfile: technician registered",
		zap.String("technicianID", t.ID), zap.String("userID", userID), zap.Strings("services", services))
	return &t, nil
}

func (s *DefaultTechnicianService) UpdateProfile(ctx context.Context, id, userID string, upd models.TechnicianUpdate) (*models.Technician, error) {
	t, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, models.NewValidationError("name", "name must not be empty")
		}
		t.Name = name
	}
	if upd.Phone != nil {
		t.Phone = strings.TrimSpace(*upd.Phone)
	}
	if upd.Services != nil {
		services, err := canonicalServices(upd.Services)
		if err != nil {
			return nil, err
		}
		if len(services) == 0 {
			return nil, models.NewValidationError("services", "at least one service is required")
		}
		t.Services = services
	}
	if upd.Skills != nil {
		t.Skills = upd.Skills
	}
	if upd.City != nil {
		city := strings.TrimSpace(*upd.City)
		if city == "" {
			return nil, models.NewValidationError("city", "city must not be empty")
		}
		t.City = city
	}
	if upd.Languages != nil {
		t.Languages = upd.Languages
	}
	if upd.YearsExperience != nil {
		if *upd.YearsExperience < 0 {
			return nil, models.NewValidationError("yearsExperience", "must not be negative")
		}
		t.YearsExperience = *upd.YearsExperience
	}
	if upd.HourlyRate != nil {
		if err := validateRate(*upd.HourlyRate); err != nil {
			return nil, err
		}
		t.HourlyRate = *upd.HourlyRate
	}
	if upd.IsPro != nil {
		t.IsPro = *upd.IsPro
	}
	if upd.IsPromo != nil {
		t.IsPromo = *upd.IsPromo
	}
	return s.save(ctx, t)
}

func (s *DefaultTechnicianService) SetAvailability(ctx context.Context, id, userID string, available bool) (*models.Technician, error) {
	t, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	t.IsAvailable = available
	return s.save(ctx, t)
}

func (s *DefaultTechnicianService) UpdateLocation(ctx context.Context, id, userID string, loc models.LocationUpdate) (*models.Technician, error) {
	if err := validateCoordinates(loc.Lat, loc.Lng); err != nil {
		return nil, err
	}
	t, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	t.Location = models.NewGeoPoint(loc.Lat, loc.Lng)
	if city := strings.TrimSpace(loc.City); city != "" {
		t.City = city
	}
	return s.save(ctx, t)
}

func (s *DefaultTechnicianService) Get(ctx context.Context, id string) (*models.Technician, error) {
	return s.Technicians.GetByID(ctx, id)
}

// owned loads the profile and checks it belongs to userID. An empty userID skips the check.
func (s *DefaultTechnicianService) owned(ctx context.Context, id, userID string) (*models.Technician, error) {
	t, err := s.Technicians.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if userID != "" && t.UserID != userID {
		return nil, fmt.Errorf("technician %s belongs to another user: %w", id, models.ErrConflict)
	}
	return t, nil
}

func (s *DefaultTechnicianService) save(ctx context.Context, t *models.Technician) (*models.Technician, error) {
	t.UpdatedAt = s.Clock.Now()
	if err := s.Technicians.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to update technician %s: %w", t.ID, err)
	}
	// Derived fields are never written by Update; return what is stored.
	return s.Technicians.GetByID(ctx, t.ID)
}

// canonicalServices maps names to taxonomy ids, dropping duplicates.
func canonicalServices(names []string) ([]string, error) {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		svc, ok := models.LookupService(name)
		if !ok {
			return nil, models.NewValidationError("services", fmt.Sprintf("unknown service %q", name))
		}
		if !seen[svc.ID] {
			seen[svc.ID] = true
			out = append(out, svc.ID)
		}
	}
	return out, nil
}

func validateRate(rate float64) error {
	if rate < 0 || rate > maxHourlyRate {
		return models.NewValidationError("hourlyRate", fmt.Sprintf("must be between 0 and %d MAD", maxHourlyRate))
	}
	return nil
}

func validateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return models.NewValidationError("lat", "must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		return models.NewValidationError("lng", "must be between -180 and 180")
	}
	return nil
}
