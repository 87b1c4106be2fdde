package review

import (
	"context"
	"fmt"
	"strings"

	"m3allem/models"

	"go.uber.org/zap"
)

const maxCommentLength = 2000

func (s *DefaultReviewService) CreateReview(ctx context.Context, in models.ReviewInput) (*models.Review, error) {
	// 1. Validate
	if strings.TrimSpace(in.TechnicianID) == "" {
		return nil, models.NewValidationError("technicianId", "technician is required")
	}
	if strings.TrimSpace(in.ClientID) == "" {
		return nil, models.NewValidationError("clientId", "client is required")
	}
	if err := validateRating("rating", in.Rating, false); err != nil {
		return nil, err
	}
	subRatings := []struct {
		field string
		value int
	}{
		{"qualityRating", in.QualityRating},
		{"punctualityRating", in.PunctualityRating},
		{"professionalismRating", in.ProfessionalismRating},
		{"valueRating", in.ValueRating},
	}
	for _, sub := range subRatings {
		if err := validateRating(sub.field, sub.value, true); err != nil {
			return nil, err
		}
	}
	comment := strings.TrimSpace(in.Comment)
	if len([]rune(comment)) > maxCommentLength {
		return nil, models.NewValidationError("comment", fmt.Sprintf("must be at most %d characters", maxCommentLength))
	}

	// 2. A review tied to a booking must come from that intervention, once it is done
	verified := false
	if in.BookingID != "" {
		b, err := s.Bookings.GetByID(ctx, in.BookingID)
		if err != nil {
			return nil, err
		}
		if b.TechnicianID != in.TechnicianID || b.ClientID != in.ClientID {
			return nil, fmt.Errorf("booking %s is not between this client and technician: %w", b.ID, models.ErrConflict)
		}
		if b.Status != models.BookingCompleted {
			return nil, fmt.Errorf("booking %s is %s, reviews need a completed intervention: %w", b.ID, b.Status, models.ErrConflict)
		}
		verified = true
	}

	// 3. Persist and recompute the rating together
	now := s.Clock.Now()
	r := models.Review{
		ID:                    s.NewID(),
		TechnicianID:          in.TechnicianID,
		ClientID:              in.ClientID,
		BookingID:             in.BookingID,
		Rating:                in.Rating,
		Comment:               comment,
		QualityRating:         in.QualityRating,
		PunctualityRating:     in.PunctualityRating,
		ProfessionalismRating: in.ProfessionalismRating,
		ValueRating:           in.ValueRating,
		IsVerified:            verified,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	summary, err := s.Reviews.CreateAndRecompute(ctx, &r)
	if err != nil {
		return nil, err
	}
	s.Logger.Info("CreateReview: review stored",
		zap.String("reviewID", r.ID), zap.String("technicianID", r.TechnicianID),
		zap.Float64("rating", summary.Rating), zap.Int("reviewCount", summary.ReviewCount))

	s.notifyTechnician(ctx, r)
	return &r, nil
}

func (s *DefaultReviewService) UpdateReview(ctx context.Context, id, clientID string, upd models.ReviewUpdate) (*models.Review, error) {
	r, err := s.Reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if clientID != "" && r.ClientID != clientID {
		return nil, fmt.Errorf("review %s belongs to another client: %w", id, models.ErrConflict)
	}
	if upd.Rating != nil {
		if err := validateRating("rating", *upd.Rating, false); err != nil {
			return nil, err
		}
		r.Rating = *upd.Rating
	}
	if upd.Comment != nil {
		comment := strings.TrimSpace(*upd.Comment)
		if len([]rune(comment)) > maxCommentLength {
			return nil, models.NewValidationError("comment", fmt.Sprintf("must be at most %d characters", maxCommentLength))
		}
		r.Comment = comment
	}
	r.UpdatedAt = s.Clock.Now()
	summary, err := s.Reviews.UpdateAndRecompute(ctx, r)
	if err != nil {
		return nil, err
	}
	s.Logger.Info("UpdateReview: review updated",
		zap.String("reviewID", r.ID), zap.Float64("rating", summary.Rating))
	return r, nil
}

func (s *DefaultReviewService) Respond(ctx context.Context, id, userID, text string) (*models.Review, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, models.NewValidationError("response", "response is required")
	}
	if len([]rune(text)) > maxCommentLength {
		return nil, models.NewValidationError("response", fmt.Sprintf("must be at most %d characters", maxCommentLength))
	}
	r, err := s.Reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if userID != "" {
		t, err := s.Technicians.GetByID(ctx, r.TechnicianID)
		if err != nil {
			return nil, err
		}
		if t.UserID != userID {
			return nil, fmt.Errorf("review %s is about another technician: %w", id, models.ErrConflict)
		}
	}
	now := s.Clock.Now()
	r.Response = text
	r.RespondedAt = &now
	r.UpdatedAt = now
	if err := s.Reviews.SetResponse(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *DefaultReviewService) ListForTechnician(ctx context.Context, technicianID string) ([]models.Review, error) {
	if _, err := s.Technicians.GetByID(ctx, technicianID); err != nil {
		return nil, err
	}
	return s.Reviews.ListByTechnician(ctx, technicianID)
}

// validateRating accepts 1-5, and 0 when the rating is optional.
func validateRating(field string, v int, optional bool) error {
	if optional && v == 0 {
		return nil
	}
	if v < 1 || v > 5 {
		return models.NewValidationError(field, "must be an integer between 1 and 5")
	}
	return nil
}

func (s *DefaultReviewService) notifyTechnician(ctx context.Context, r models.Review) {
	if s.Notifier == nil {
		return
	}
	t, err := s.Technicians.GetByID(ctx, r.TechnicianID)
	if err != nil || t.UserID == "" {
		return
	}
	if _, err := s.Notifier.Notify(ctx, models.Notification{
		UserID:    t.UserID,
		Type:      models.NotifyNewReview,
		Title:     "Nouvel avis",
		Message:   fmt.Sprintf("Un client vous a attribué %d/5.", r.Rating),
		BookingID: r.BookingID,
	}); err != nil {
		s.Logger.Warn("review notification not sent", zap.String("reviewID", r.ID), zap.Error(err))
	}
}
