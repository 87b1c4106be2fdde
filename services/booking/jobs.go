package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"m3allem/models"
	"m3allem/services/pricing"

	"go.uber.org/zap"
)

// CreateJob stores a pending job with its cost range and returns the ranked
// technicians for it. Missing service, urgency or complexity are inferred from
// the description.
func (s *DefaultBookingService) CreateJob(ctx context.Context, req models.JobRequest) (*models.JobCreation, error) {
	logger := s.Logger

	// 1. Validate
	req.Description = strings.TrimSpace(req.Description)
	req.City = strings.TrimSpace(req.City)
	if req.City == "" {
		return nil, models.NewValidationError("city", "city is required")
	}
	if req.Description == "" && strings.TrimSpace(req.Service) == "" {
		return nil, models.NewValidationError("description", "describe the problem or choose a service")
	}
	if err := validateSchedule(req.ScheduledDate, req.ScheduledTime); err != nil {
		return nil, err
	}

	service := ""
	if strings.TrimSpace(req.Service) != "" {
		service = models.CanonicalService(req.Service)
	}
	complexity, explicit := models.ParseComplexity(req.Complexity)
	urgency := models.ParseUrgency(req.Urgency)

	// 2. Fill the gaps from the description
	var signal *models.AnalysisSignal
	if req.Description != "" && (service == "" || req.Urgency == "" || !explicit) {
		got, err := s.Analyzer.Analyze(ctx, models.AnalysisInput{Text: req.Description})
		if err != nil {
			logger.Warn("CreateJob: description analysis failed", zap.Error(err))
		} else {
			signal = &got
			if service == "" {
				service = got.Service
			}
			if req.Urgency == "" {
				urgency = got.Urgency
			}
			if !explicit && got.Explicit {
				complexity, explicit = got.Complexity, true
			}
		}
	}
	if service == "" {
		return nil, models.NewValidationError("service", "could not infer the service from the description, choose one")
	}

	// 3. Cost range
	analyzerConfidence := 0.0
	if signal != nil {
		analyzerConfidence = signal.Confidence
	}
	estimate := pricing.QuickEstimate(models.QuickEstimateParams{
		Service:            service,
		City:               req.City,
		Urgency:            urgency,
		Complexity:         complexity,
		ComplexityExplicit: explicit,
		ScheduledDate:      req.ScheduledDate,
		ScheduledTime:      req.ScheduledTime,
		Description:        req.Description,
		AnalyzerConfidence: analyzerConfidence,
	})

	// 4. Persist
	now := s.Clock.Now()
	job := models.Job{
		ID:            s.NewID(),
		ClientID:      req.ClientID,
		Description:   req.Description,
		Service:       service,
		SubServices:   req.SubServices,
		City:          req.City,
		Urgency:       urgency,
		Complexity:    complexity,
		ScheduledDate: req.ScheduledDate,
		ScheduledTime: req.ScheduledTime,
		PhotoURL:      req.PhotoURL,
		CostMin:       estimate.MinCost,
		CostLikely:    estimate.LikelyCost,
		CostMax:       estimate.MaxCost,
		Confidence:    estimate.Confidence,
		Status:        models.JobPending,
		Analysis:      signal,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.Latitude != 0 || req.Longitude != 0 {
		job.Location = models.NewGeoPoint(req.Latitude, req.Longitude)
	}
	if err := s.Jobs.Create(ctx, &job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	logger.Info("CreateJob: job created",
		zap.String("jobID", job.ID), zap.String("service", job.Service), zap.String("city", job.City))

	// 5. Rank candidates
	return &models.JobCreation{Job: job, Matches: s.matchesOrEmpty(ctx, job)}, nil
}

// matchesOrEmpty never fails: the job exists even when nobody can be ranked yet.
func (s *DefaultBookingService) matchesOrEmpty(ctx context.Context, job models.Job) []models.MatchResult {
	if s.Matching == nil {
		return []models.MatchResult{}
	}
	matches, err := s.Matching.MatchForJob(ctx, job)
	if err != nil {
		s.Logger.Warn("CreateJob: matching failed", zap.String("jobID", job.ID), zap.Error(err))
		return []models.MatchResult{}
	}
	return matches
}

func (s *DefaultBookingService) GetJob(ctx context.Context, id string) (*models.Job, error) {
	return s.Jobs.GetByID(ctx, id)
}

func (s *DefaultBookingService) ListJobs(ctx context.Context, filter models.JobFilter) ([]models.Job, error) {
	if filter.Service != "" {
		filter.Service = models.CanonicalService(filter.Service)
	}
	return s.Jobs.List(ctx, filter)
}

func (s *DefaultBookingService) MatchesForJob(ctx context.Context, id string) ([]models.MatchResult, error) {
	job, err := s.Jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Matching == nil {
		return []models.MatchResult{}, nil
	}
	return s.Matching.MatchForJob(ctx, *job)
}

// CancelJob cancels a pending or accepted job. When a booking is active on it, the
// booking is cancelled and the job follows.
func (s *DefaultBookingService) CancelJob(ctx context.Context, id, reason string) (*models.Job, error) {
	if _, err := s.Jobs.GetByID(ctx, id); err != nil {
		return nil, err
	}

	unlock := s.lockJob(id)
	job, err := s.Jobs.GetByID(ctx, id)
	if err != nil {
		unlock()
		return nil, err
	}
	if !CanTransitionJob(job.Status, models.JobCancelled) {
		unlock()
		return nil, jobTransitionError(job.Status, models.JobCancelled)
	}
	active, err := s.activeBooking(ctx, id)
	if err != nil {
		unlock()
		return nil, err
	}
	if active != nil {
		unlock()
		// CancelBooking takes the job lock again and re-checks the job status.
		if _, err := s.CancelBooking(ctx, active.ID, reason); err != nil {
			return nil, err
		}
		return s.Jobs.GetByID(ctx, id)
	}
	defer unlock()

	job.Status = models.JobCancelled
	job.UpdatedAt = s.Clock.Now()
	if err := s.Jobs.Update(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to cancel job %s: %w", id, err)
	}
	return job, nil
}

func (s *DefaultBookingService) activeBooking(ctx context.Context, jobID string) (*models.Booking, error) {
	bookings, err := s.Bookings.List(ctx, models.BookingFilter{JobID: jobID})
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings of job %s: %w", jobID, err)
	}
	for i := range bookings {
		if !bookings[i].Status.Terminal() {
			return &bookings[i], nil
		}
	}
	return nil, nil
}

func validateSchedule(date, clock string) error {
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return models.NewValidationError("scheduledDate", "expected YYYY-MM-DD")
		}
	}
	if clock != "" {
		if _, err := time.Parse("15:04", clock); err != nil {
			return models.NewValidationError("scheduledTime", "expected HH:MM")
		}
	}
	return nil
}
