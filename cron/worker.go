package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"m3allem/config"
	"m3allem/models"
	"m3allem/services/notification"
	"m3allem/services/tasks"
	"m3allem/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// RedisOpt returns the asynq connection for the reminder queue.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitReminderWorker runs the async worker in background. The returned server is
// shut down by the caller.
func InitReminderWorker(notifSvc notification.NotificationService, logger *zap.Logger) *asynq.Server {
	logger = utils.LoggerOr(logger)

	srv := asynq.NewServer(
		RedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBookingReminder, HandleReminderTask(notifSvc, logger))

	// Start async worker with retry logic
	go func() {
		logger.Info("ReminderWorker: starting async worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Error("ReminderWorker: failed to start worker",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("ReminderWorker: max retry attempts reached, reminders disabled")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()

	return srv
}

// HandleReminderTask notifies the client and the technician of an upcoming booking.
func HandleReminderTask(notifSvc notification.NotificationService, logger *zap.Logger) asynq.HandlerFunc {
	logger = utils.LoggerOr(logger)
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("ReminderHandler: invalid payload", zap.Error(err))
			return fmt.Errorf("invalid reminder payload: %v: %w", err, asynq.SkipRetry)
		}

		logger.Info("ReminderHandler: triggering reminder",
			zap.String("bookingID", p.BookingID), zap.String("fireDate", p.FireDate))

		var failed error
		for _, userID := range []string{p.ClientID, p.TechnicianUserID} {
			if userID == "" {
				continue
			}
			_, err := notifSvc.Notify(ctx, models.Notification{
				UserID:    userID,
				Type:      models.NotifyReminder,
				Title:     p.Title,
				Message:   p.Body,
				BookingID: p.BookingID,
			})
			if err != nil {
				logger.Error("ReminderHandler: failed to send notification", zap.String("userID", userID), zap.Error(err))
				failed = err
			}
		}
		return failed
	}
}
