package notificationRepo

import (
	"context"

	"m3allem/models"
)

// NotificationRepository stores the in-app notification inbox.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	// ListByUser returns the newest notifications first, at most limit when limit > 0.
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error)
	// MarkRead flags one notification of the user as read.
	MarkRead(ctx context.Context, userID, id string) error
	// DeleteByUser drops the whole inbox of a user.
	DeleteByUser(ctx context.Context, userID string) error
}
