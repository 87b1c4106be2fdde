package technician

import (
	"context"
	"strings"

	"m3allem/models"
	"m3allem/services/matching"
)

const (
	defaultListingLimit = 20
	maxListingLimit     = 100
)

func (s *DefaultTechnicianService) Search(ctx context.Context, criteria models.TechnicianSearch) ([]models.Technician, error) {
	if criteria.Service != "" {
		if _, ok := models.LookupService(criteria.Service); !ok {
			return nil, models.NewValidationError("service", "unknown service")
		}
		criteria.Service = models.CanonicalService(criteria.Service)
	}
	if criteria.MinRating < 0 || criteria.MinRating > 5 {
		return nil, models.NewValidationError("minRating", "must be between 0 and 5")
	}
	criteria.Limit = listingLimit(criteria.Limit)
	return s.Technicians.Search(ctx, criteria)
}

// Nearby lists technicians of the service around the query location. Cities with no
// technician widen to the whole country.
func (s *DefaultTechnicianService) Nearby(ctx context.Context, q models.NearbyQuery) ([]models.MatchResult, error) {
	svc, ok := models.LookupService(q.Service)
	if !ok {
		return nil, models.NewValidationError("service", "unknown service")
	}
	city := strings.TrimSpace(q.City)
	if city == "" {
		return nil, models.NewValidationError("city", "city is required")
	}
	limit := listingLimit(q.Limit)

	pool, err := s.Technicians.Search(ctx, models.TechnicianSearch{Service: svc.ID, City: city, AvailableOnly: true})
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		pool, err = s.Technicians.Search(ctx, models.TechnicianSearch{Service: svc.ID, AvailableOnly: true})
		if err != nil {
			return nil, err
		}
	}

	job := models.Job{Service: svc.ID, City: city}
	if q.Lat != nil && q.Lng != nil {
		if err := validateCoordinates(*q.Lat, *q.Lng); err != nil {
			return nil, err
		}
		job.Location = models.NewGeoPoint(*q.Lat, *q.Lng)
	}
	results := matching.SimpleMatch(job, pool)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func listingLimit(n int) int {
	switch {
	case n <= 0:
		return defaultListingLimit
	case n > maxListingLimit:
		return maxListingLimit
	default:
		return n
	}
}
