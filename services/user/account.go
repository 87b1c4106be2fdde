package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"m3allem/models"

	"go.uber.org/zap"
)

func (s *DefaultUserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.Repo.GetByID(ctx, id)
}

// UpdateFCMToken registers the device that receives push notifications. An empty
// token unregisters it.
func (s *DefaultUserService) UpdateFCMToken(ctx context.Context, id, token string) error {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	u.FCMToken = strings.TrimSpace(token)
	u.UpdatedAt = s.Clock.Now()
	return s.Repo.Update(ctx, u)
}

func (s *DefaultUserService) Delete(ctx context.Context, id string) error {
	if _, err := s.Repo.GetByID(ctx, id); err != nil {
		return err
	}

	// The profile leaves the matching pool before it disappears.
	if s.Technicians != nil {
		t, err := s.Technicians.GetByUserID(ctx, id)
		switch {
		case err == nil:
			t.IsAvailable = false
			t.UpdatedAt = s.Clock.Now()
			if err := s.Technicians.Update(ctx, t); err != nil {
				return fmt.Errorf("failed to withdraw technician %s: %w", t.ID, err)
			}
			if err := s.Technicians.Delete(ctx, t.ID); err != nil {
				return fmt.Errorf("failed to delete technician %s: %w", t.ID, err)
			}
		case !errors.Is(err, models.ErrNotFound):
			return err
		}
	}
	if s.Notifications != nil {
		if err := s.Notifications.DeleteByUser(ctx, id); err != nil {
			s.Logger.Warn("Delete: notifications not removed", zap.String("userID", id), zap.Error(err))
		}
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.Logger.Info("Delete: account removed", zap.String("userID", id))
	return nil
}
