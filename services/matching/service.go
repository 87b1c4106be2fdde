package matching

import (
	"context"
	"fmt"
	"strings"
	"time"

	"m3allem/database/repository"
	"m3allem/models"
	"m3allem/utils"

	"go.uber.org/zap"
)

const poolLimit = 50

// MatchingService ranks technicians for stored jobs.
type MatchingService interface {
	MatchForJob(ctx context.Context, job models.Job) ([]models.MatchResult, error)
	// ScoreTechnician scores a single chosen technician the same way MatchForJob does.
	ScoreTechnician(ctx context.Context, job models.Job, technician models.Technician) (models.MatchResult, error)
}

// DefaultMatchingService pulls the pool and booking history from the store and runs
// the Matcher. Cache is optional.
type DefaultMatchingService struct {
	Technicians repository.TechnicianRepository
	Bookings    repository.BookingRepository
	Matcher     *Matcher
	Cache       MatchCache
	CacheTTL    time.Duration
	Logger      *zap.Logger
}

func NewMatchingService(
	technicians repository.TechnicianRepository,
	bookings repository.BookingRepository,
	cache MatchCache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *DefaultMatchingService {
	return &DefaultMatchingService{
		Technicians: technicians,
		Bookings:    bookings,
		Matcher:     NewMatcher(),
		Cache:       cache,
		CacheTTL:    cacheTTL,
		Logger:      utils.LoggerOr(logger),
	}
}

// MatchForJob ranks available technicians offering the job's service in its city.
// When the city has none, the pool widens to the whole country.
func (s *DefaultMatchingService) MatchForJob(ctx context.Context, job models.Job) ([]models.MatchResult, error) {
	logger := utils.LoggerOr(s.Logger)

	pool, err := s.pool(ctx, job)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		logger.Info("MatchForJob: no technician available",
			zap.String("jobID", job.ID), zap.String("service", job.Service), zap.String("city", job.City))
		return []models.MatchResult{}, nil
	}

	history := s.history(ctx, job.ClientID)
	stats := s.stats(ctx, pool)

	var key string
	if s.Cache != nil {
		if key, err = cacheKey(job, pool, history, stats); err != nil {
			logger.Warn("MatchForJob: cannot build cache key", zap.Error(err))
		} else if cached, ok, err := s.Cache.Get(ctx, key); err != nil {
			logger.Warn("MatchForJob: cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	results := s.Matcher.Match(job, pool, history, stats)

	if s.Cache != nil && key != "" {
		if err := s.Cache.Set(ctx, key, results, s.CacheTTL); err != nil {
			logger.Warn("MatchForJob: cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return results, nil
}

func (s *DefaultMatchingService) ScoreTechnician(ctx context.Context, job models.Job, technician models.Technician) (models.MatchResult, error) {
	if err := ctx.Err(); err != nil {
		return models.MatchResult{}, err
	}
	pool := []models.Technician{technician}
	results := s.Matcher.Match(job, pool, s.history(ctx, job.ClientID), s.stats(ctx, pool))
	return results[0], nil
}

func (s *DefaultMatchingService) pool(ctx context.Context, job models.Job) ([]models.Technician, error) {
	criteria := models.TechnicianSearch{
		Service:       job.Service,
		City:          job.City,
		AvailableOnly: true,
		Limit:         poolLimit,
	}
	pool, err := s.Technicians.Search(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("technician search failed: %w", err)
	}
	if len(pool) > 0 || job.City == "" {
		return pool, nil
	}

	criteria.City = ""
	pool, err = s.Technicians.Search(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("nationwide technician search failed: %w", err)
	}
	return pool, nil
}

// history and stats degrade to neutral defaults when the store cannot answer.
func (s *DefaultMatchingService) history(ctx context.Context, clientID string) []models.Booking {
	if clientID == "" || s.Bookings == nil {
		return nil
	}
	history, err := s.Bookings.List(ctx, models.BookingFilter{ClientID: clientID})
	if err != nil {
		utils.LoggerOr(s.Logger).Warn("matching: client history unavailable",
			zap.String("clientID", clientID), zap.Error(err))
		return nil
	}
	return history
}

func (s *DefaultMatchingService) stats(ctx context.Context, pool []models.Technician) map[string]models.TechnicianStats {
	if s.Bookings == nil {
		return nil
	}
	ids := make([]string, len(pool))
	for i, t := range pool {
		ids[i] = t.ID
	}
	stats, err := s.Bookings.StatsFor(ctx, ids)
	if err != nil {
		utils.LoggerOr(s.Logger).Warn("matching: technician stats unavailable", zap.Error(err))
		return nil
	}
	return stats
}

// Explain summarizes a match as the sentence stored on a booking.
func Explain(r models.MatchResult) string {
	var reasons []string
	for _, f := range r.MatchFactors {
		if f.Points > 0 {
			reasons = append(reasons, f.Description)
		}
	}
	return fmt.Sprintf("Compatibilité %d%% (score %.2f) : %s", r.MatchPercentage, r.MatchScore, strings.Join(reasons, ", "))
}
