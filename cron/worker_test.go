package cron

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"m3allem/models"
	"m3allem/services/notification/mocks"
	"m3allem/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/mock/gomock"
)

func TestHandleReminderTaskNotifiesBothParties(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotificationService(ctrl)

	var recipients []string
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Times(2).
		DoAndReturn(func(_ context.Context, n models.Notification) (*models.Notification, error) {
			if n.Type != models.NotifyReminder || n.BookingID != "bk-1" {
				t.Errorf("unexpected notification %+v", n)
			}
			recipients = append(recipients, n.UserID)
			return &n, nil
		})

	b, _ := json.Marshal(models.ReminderPayload{BookingID: "bk-1", ClientID: "u-1", TechnicianUserID: "u-2", Title: "Rappel"})
	if err := HandleReminderTask(notifier, nil)(context.Background(), asynq.NewTask(tasks.TypeBookingReminder, b)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recipients) != 2 || recipients[0] != "u-1" || recipients[1] != "u-2" {
		t.Fatalf("recipients = %v", recipients)
	}
}

func TestHandleReminderTaskSkipsMissingRecipient(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotificationService(ctrl)
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil, errors.New("store down"))

	b, _ := json.Marshal(models.ReminderPayload{BookingID: "bk-1", ClientID: "u-1"})
	if err := HandleReminderTask(notifier, nil)(context.Background(), asynq.NewTask(tasks.TypeBookingReminder, b)); err == nil {
		t.Fatal("expected the notification error to be returned for retry")
	}
}

func TestHandleReminderTaskRejectsBadPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotificationService(ctrl)

	err := HandleReminderTask(notifier, nil)(context.Background(), asynq.NewTask(tasks.TypeBookingReminder, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}
