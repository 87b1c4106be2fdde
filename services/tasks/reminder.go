package tasks

import (
	"encoding/json"
	"time"

	"m3allem/models"

	"github.com/hibiken/asynq"
)

const TypeBookingReminder = "reminder:booking"

// NewBookingReminderTask builds the task and the options that schedule it at fireAt.
// The booking id doubles as the task id so a booking is reminded at most once.
func NewBookingReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(ReminderTaskID(payload.BookingID)),
		asynq.MaxRetry(3),
	}

	return task, opts, nil
}

// ReminderTaskID is the asynq task id of a booking's reminder.
func ReminderTaskID(bookingID string) string {
	return "reminder-" + bookingID
}
