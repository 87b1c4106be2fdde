package notification

import (
	"context"
	"fmt"
	"strings"

	"m3allem/database/repository"
	"m3allem/models"
	"m3allem/utils"

	"go.uber.org/zap"
)

// NotificationService records in-app notifications and pushes them to devices.
type NotificationService interface {
	// Notify stores n in the recipient's inbox and pushes it when the recipient has a device token.
	Notify(ctx context.Context, n models.Notification) (*models.Notification, error)
	ListForUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
}

// Pusher delivers one push message to a device token.
type Pusher interface {
	Push(ctx context.Context, token, title, body string, data map[string]string) error
}

// DefaultNotificationService is the production implementation. Pusher and Users are
// optional; without them notifications are only stored.
type DefaultNotificationService struct {
	Repo   repository.NotificationRepository
	Users  repository.UserRepository
	Pusher Pusher
	Clock  utils.Clock
	NewID  utils.IDGenerator
	Logger *zap.Logger
}

func NewDefaultNotificationService(
	repo repository.NotificationRepository,
	users repository.UserRepository,
	pusher Pusher,
	clock utils.Clock,
	newID utils.IDGenerator,
	logger *zap.Logger,
) (*DefaultNotificationService, error) {
	if repo == nil {
		return nil, fmt.Errorf("notification service initialization error: repository is nil")
	}
	if clock == nil {
		clock = utils.SystemClock{}
	}
	if newID == nil {
		newID = utils.NewID
	}
	return &DefaultNotificationService{
		Repo:   repo,
		Users:  users,
		Pusher: pusher,
		Clock:  clock,
		NewID:  newID,
		Logger: utils.LoggerOr(logger),
	}, nil
}

func (s *DefaultNotificationService) Notify(ctx context.Context, n models.Notification) (*models.Notification, error) {
	if strings.TrimSpace(n.UserID) == "" {
		return nil, models.NewValidationError("userId", "recipient is required")
	}
	if strings.TrimSpace(n.Title) == "" {
		return nil, models.NewValidationError("title", "title is required")
	}

	n.ID = s.NewID()
	n.CreatedAt = s.Clock.Now()
	n.Read = false
	n.Pushed = s.push(ctx, n)

	if err := s.Repo.Create(ctx, &n); err != nil {
		return nil, fmt.Errorf("Notify: failed to store notification for %s: %w", n.UserID, err)
	}
	return &n, nil
}

// push is best effort: a missing token or a failed send is logged, never returned.
func (s *DefaultNotificationService) push(ctx context.Context, n models.Notification) bool {
	if s.Pusher == nil || s.Users == nil {
		return false
	}
	logger := utils.LoggerOr(s.Logger)

	u, err := s.Users.GetByID(ctx, n.UserID)
	if err != nil {
		logger.Debug("Notify: recipient lookup failed, skipping push", zap.String("userID", n.UserID), zap.Error(err))
		return false
	}
	if u.FCMToken == "" {
		return false
	}

	data := map[string]string{
		"type":           n.Type,
		"notificationId": n.ID,
		"role":           string(u.Role),
	}
	if n.BookingID != "" {
		data["bookingId"] = n.BookingID
	}
	if err := s.Pusher.Push(ctx, u.FCMToken, n.Title, n.Message, data); err != nil {
		logger.Warn("Notify: push failed", zap.String("userID", n.UserID), zap.String("type", n.Type), zap.Error(err))
		return false
	}
	return true
}

func (s *DefaultNotificationService) ListForUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	if userID == "" {
		return nil, models.NewValidationError("userId", "user is required")
	}
	return s.Repo.ListByUser(ctx, userID, unreadOnly, limit)
}

func (s *DefaultNotificationService) MarkRead(ctx context.Context, userID, id string) error {
	return s.Repo.MarkRead(ctx, userID, id)
}
