package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"m3allem/models"
	"m3allem/services/matching"
	"m3allem/services/pricing"
	"m3allem/utils"

	"go.uber.org/zap"
)

// CreateBooking books the chosen technician on a pending job. The job moves to
// accepted in the same step.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error) {
	// 1. Validate
	if strings.TrimSpace(req.JobID) == "" {
		return nil, models.NewValidationError("jobId", "job is required")
	}
	if strings.TrimSpace(req.TechnicianID) == "" {
		return nil, models.NewValidationError("technicianId", "technician is required")
	}
	if req.DistanceKm < 0 {
		return nil, models.NewValidationError("distanceKm", "distance cannot be negative")
	}
	if err := validateSchedule(req.ScheduledDate, req.ScheduledTime); err != nil {
		return nil, err
	}

	// 2. Fetch both parties
	if _, err := s.Jobs.GetByID(ctx, req.JobID); err != nil {
		return nil, err
	}
	tech, err := s.Technicians.GetByID(ctx, req.TechnicianID)
	if err != nil {
		return nil, err
	}

	unlock := s.lockJob(req.JobID)
	defer unlock()

	job, err := s.Jobs.GetByID(ctx, req.JobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobPending {
		return nil, jobTransitionError(job.Status, models.JobAccepted)
	}
	if job.ClientID != "" && req.ClientID != "" && job.ClientID != req.ClientID {
		return nil, fmt.Errorf("job %s belongs to another client: %w", job.ID, models.ErrConflict)
	}
	if !tech.OffersService(job.Service) {
		return nil, models.NewValidationError("technicianId", fmt.Sprintf("technician does not offer %s", job.Service))
	}
	if !tech.IsAvailable {
		return nil, fmt.Errorf("technician %s is not available: %w", tech.ID, models.ErrConflict)
	}

	// 3. Score and price
	var (
		score       models.MatchResult
		explanation string
	)
	if s.Matching != nil {
		if score, err = s.Matching.ScoreTechnician(ctx, *job, *tech); err != nil {
			return nil, fmt.Errorf("failed to score technician %s: %w", tech.ID, err)
		}
		explanation = matching.Explain(score)
	}

	date, clock := req.ScheduledDate, req.ScheduledTime
	if date == "" {
		date, clock = job.ScheduledDate, job.ScheduledTime
	}
	distance := req.DistanceKm
	if distance == 0 && job.Location.Valid() && tech.Location.Valid() {
		distance = utils.Round2(utils.Haversine(job.Location.Lat(), job.Location.Lng(), tech.Location.Lat(), tech.Location.Lng()))
	}

	var quote models.PricingResult
	if s.Estimator != nil {
		quote = s.Estimator.EstimatePrice(ctx, models.PricingParams{
			ServiceType:   job.Service,
			City:          job.City,
			Urgency:       job.Urgency.PricingTier(),
			ScheduledDate: date,
			ScheduledTime: clock,
			TechnicianID:  tech.ID,
			DistanceKm:    distance,
			Complexity:    string(job.Complexity),
			JobID:         job.ID,
		})
	} else {
		quote = models.PricingResult{FinalPrice: job.CostLikely, BasePrice: job.CostLikely, Currency: models.CurrencyMAD}
	}

	estimated, discount := quote.FinalPrice, 0.0
	code := strings.TrimSpace(req.DiscountCode)
	if code != "" {
		d := pricing.ApplyDiscountCode(estimated, code)
		if !d.Valid {
			return nil, models.NewValidationError("discountCode", d.Message)
		}
		estimated, discount = d.DiscountedPrice, d.DiscountAmount
	}

	// 4. Persist: job first, reverted if the booking cannot be stored
	now := s.Clock.Now()
	clientID := req.ClientID
	if clientID == "" {
		clientID = job.ClientID
	}
	b := models.Booking{
		ID:               s.NewID(),
		JobID:            job.ID,
		TechnicianID:     tech.ID,
		ClientID:         clientID,
		ClientName:       req.ClientName,
		ClientPhone:      req.ClientPhone,
		Service:          job.Service,
		ScheduledDate:    date,
		ScheduledTime:    clock,
		Status:           models.BookingPending,
		EstimatedCost:    estimated,
		DiscountCode:     strings.ToUpper(code),
		DiscountAmount:   discount,
		Pricing:          &quote,
		MatchScore:       score.MatchScore,
		MatchExplanation: explanation,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	previous := *job
	job.Status = models.JobAccepted
	job.UpdatedAt = now
	if err := s.Jobs.Update(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to accept job %s: %w", job.ID, err)
	}
	if err := s.Bookings.Create(ctx, &b); err != nil {
		if rerr := s.Jobs.Update(ctx, &previous); rerr != nil {
			s.Logger.Error("CreateBooking: failed to revert job status", zap.String("jobID", job.ID), zap.Error(rerr))
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	s.Logger.Info("CreateBooking: booking created",
		zap.String("bookingID", b.ID), zap.String("jobID", job.ID), zap.String("technicianID", tech.ID),
		zap.Float64("estimatedCost", b.EstimatedCost))

	// 5. Side effects
	s.notify(ctx, tech.UserID, models.NotifyBookingCreated, b.ID,
		"Nouvelle demande d'intervention",
		fmt.Sprintf("%s à %s%s. Estimation : %.2f MAD.", serviceLabel(b.Service), job.City, formatWhen(date, clock), b.EstimatedCost))
	if s.Reminders != nil {
		if err := s.Reminders.Schedule(ctx, b, tech.UserID); err != nil {
			s.Logger.Warn("CreateBooking: reminder not scheduled", zap.String("bookingID", b.ID), zap.Error(err))
		}
	}
	return &b, nil
}

func (s *DefaultBookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return s.Bookings.GetByID(ctx, id)
}

func (s *DefaultBookingService) ListBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	return s.Bookings.List(ctx, filter)
}

func (s *DefaultBookingService) AcceptBooking(ctx context.Context, id string) (*models.Booking, error) {
	b, tech, err := s.transition(ctx, id, models.BookingAccepted, func(b *models.Booking, now time.Time) {
		b.AcceptedAt = &now
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, b.ClientID, models.NotifyBookingAccepted, b.ID,
		"Réservation confirmée",
		fmt.Sprintf("%s a accepté votre demande%s.", tech.Name, formatWhen(b.ScheduledDate, b.ScheduledTime)))
	return b, nil
}

func (s *DefaultBookingService) StartBooking(ctx context.Context, id string) (*models.Booking, error) {
	b, tech, err := s.transition(ctx, id, models.BookingInProgress, func(b *models.Booking, now time.Time) {
		b.StartedAt = &now
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, b.ClientID, models.NotifyBookingStarted, b.ID,
		"Intervention en cours",
		fmt.Sprintf("%s a commencé l'intervention.", tech.Name))
	return b, nil
}

func (s *DefaultBookingService) CompleteBooking(ctx context.Context, id string, finalCost float64) (*models.Booking, error) {
	if finalCost < 0 {
		return nil, models.NewValidationError("finalCost", "final cost cannot be negative")
	}
	b, tech, err := s.transition(ctx, id, models.BookingCompleted, func(b *models.Booking, now time.Time) {
		b.CompletedAt = &now
		if finalCost > 0 {
			b.FinalCost = utils.Round2(finalCost)
		}
	})
	if err != nil {
		return nil, err
	}
	if err := s.Technicians.IncrementCompletedJobs(ctx, b.TechnicianID); err != nil {
		s.Logger.Warn("CompleteBooking: completed jobs not incremented", zap.String("technicianID", b.TechnicianID), zap.Error(err))
	}
	s.notify(ctx, b.ClientID, models.NotifyBookingCompleted, b.ID,
		"Intervention terminée",
		fmt.Sprintf("Montant : %.2f MAD. Donnez votre avis sur %s.", b.Cost(), tech.Name))
	return b, nil
}

func (s *DefaultBookingService) CancelBooking(ctx context.Context, id, reason string) (*models.Booking, error) {
	reason = strings.TrimSpace(reason)
	b, tech, err := s.transition(ctx, id, models.BookingCancelled, func(b *models.Booking, now time.Time) {
		b.CancelledAt = &now
		b.CancelReason = reason
	})
	if err != nil {
		return nil, err
	}
	s.closed(ctx, b, tech, "Réservation annulée", cancelMessage(b, reason))
	return b, nil
}

func (s *DefaultBookingService) MarkNoShow(ctx context.Context, id string) (*models.Booking, error) {
	b, tech, err := s.transition(ctx, id, models.BookingNoShow, func(b *models.Booking, now time.Time) {
		b.CancelledAt = &now
	})
	if err != nil {
		return nil, err
	}
	s.closed(ctx, b, tech, "Absence signalée",
		fmt.Sprintf("La réservation %s a été clôturée pour absence.", b.ID))
	return b, nil
}

// closed drops the reminder of a booking that will not happen and tells both parties.
func (s *DefaultBookingService) closed(ctx context.Context, b *models.Booking, tech *models.Technician, title, message string) {
	if s.Reminders != nil {
		if err := s.Reminders.Cancel(ctx, b.ID); err != nil {
			s.Logger.Warn("reminder not cancelled", zap.String("bookingID", b.ID), zap.Error(err))
		}
	}
	s.notify(ctx, b.ClientID, models.NotifyBookingCancelled, b.ID, title, message)
	s.notify(ctx, tech.UserID, models.NotifyBookingCancelled, b.ID, title, message)
}

// transition applies one booking status change and moves the job along when its own
// lifecycle allows it.
func (s *DefaultBookingService) transition(
	ctx context.Context,
	id string,
	to models.BookingStatus,
	apply func(b *models.Booking, now time.Time),
) (*models.Booking, *models.Technician, error) {
	b, err := s.Bookings.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	unlock := s.lockJob(b.JobID)
	defer unlock()

	if b, err = s.Bookings.GetByID(ctx, id); err != nil {
		return nil, nil, err
	}
	if !CanTransitionBooking(b.Status, to) {
		return nil, nil, bookingTransitionError(b.Status, to)
	}
	if err := s.checkJobCanClose(ctx, b.JobID, to); err != nil {
		return nil, nil, err
	}

	now := s.Clock.Now()
	b.Status = to
	b.UpdatedAt = now
	apply(b, now)
	if err := s.Bookings.Update(ctx, b); err != nil {
		return nil, nil, fmt.Errorf("failed to update booking %s: %w", id, err)
	}
	s.Logger.Info("booking status changed", zap.String("bookingID", b.ID), zap.String("status", string(to)))

	s.cascadeJob(ctx, b.JobID, jobStatusFor(to), now)

	tech, err := s.Technicians.GetByID(ctx, b.TechnicianID)
	if err != nil {
		// The profile may have been deleted since; notifications fall back to the id.
		tech = &models.Technician{ID: b.TechnicianID, Name: "Votre technicien"}
	}
	return b, tech, nil
}

// checkJobCanClose refuses to cancel or no-show a booking whose job can no longer be
// cancelled. An intervention that has started ends with CompleteBooking.
func (s *DefaultBookingService) checkJobCanClose(ctx context.Context, jobID string, to models.BookingStatus) error {
	if jobStatusFor(to) != models.JobCancelled {
		return nil
	}
	job, err := s.Jobs.GetByID(ctx, jobID)
	if err != nil {
		// Orphaned booking: nothing to keep consistent.
		return nil
	}
	if job.Status != models.JobCancelled && !CanTransitionJob(job.Status, models.JobCancelled) {
		return jobTransitionError(job.Status, models.JobCancelled)
	}
	return nil
}

// cascadeJob is best effort: the booking is the record of truth once it has moved.
func (s *DefaultBookingService) cascadeJob(ctx context.Context, jobID string, to models.JobStatus, now time.Time) {
	job, err := s.Jobs.GetByID(ctx, jobID)
	if err != nil {
		s.Logger.Error("job cascade: job not found", zap.String("jobID", jobID), zap.Error(err))
		return
	}
	if job.Status == to {
		return
	}
	if !CanTransitionJob(job.Status, to) {
		s.Logger.Info("job cascade: job keeps its status",
			zap.String("jobID", jobID), zap.String("status", string(job.Status)), zap.String("wanted", string(to)))
		return
	}
	job.Status = to
	job.UpdatedAt = now
	if err := s.Jobs.Update(ctx, job); err != nil {
		s.Logger.Error("job cascade: update failed", zap.String("jobID", jobID), zap.Error(err))
	}
}

func (s *DefaultBookingService) notify(ctx context.Context, userID, kind, bookingID, title, message string) {
	if s.Notifier == nil || userID == "" {
		return
	}
	_, err := s.Notifier.Notify(ctx, models.Notification{
		UserID:    userID,
		Type:      kind,
		Title:     title,
		Message:   message,
		BookingID: bookingID,
	})
	if err != nil {
		s.Logger.Warn("notification not sent", zap.String("userID", userID), zap.String("type", kind), zap.Error(err))
	}
}

func serviceLabel(service string) string {
	if st, ok := models.LookupService(service); ok {
		return st.Label
	}
	return service
}

func formatWhen(date, clock string) string {
	switch {
	case date != "" && clock != "":
		return fmt.Sprintf(" le %s à %s", date, clock)
	case date != "":
		return " le " + date
	default:
		return ""
	}
}

func cancelMessage(b *models.Booking, reason string) string {
	msg := fmt.Sprintf("La réservation %s a été annulée.", b.ID)
	if reason != "" {
		msg += " Motif : " + reason
	}
	return msg
}
