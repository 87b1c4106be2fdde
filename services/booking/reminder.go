package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"m3allem/models"
	"m3allem/services/tasks"
	"m3allem/utils"

	"github.com/hibiken/asynq"
)

const (
	reminderQueue       = "default"
	defaultReminderHour = "09:00"
)

// ReminderScheduler plans the reminder sent before an appointment.
type ReminderScheduler interface {
	Schedule(ctx context.Context, b models.Booking, technicianUserID string) error
	Cancel(ctx context.Context, bookingID string) error
}

// AsynqReminderScheduler enqueues reminder tasks consumed by the cron worker.
type AsynqReminderScheduler struct {
	Client    *asynq.Client
	Inspector *asynq.Inspector
	Lead      time.Duration
	Location  *time.Location
	Clock     utils.Clock
}

func NewAsynqReminderScheduler(opt asynq.RedisClientOpt, lead time.Duration, clock utils.Clock) *AsynqReminderScheduler {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	return &AsynqReminderScheduler{
		Client:    asynq.NewClient(opt),
		Inspector: asynq.NewInspector(opt),
		Lead:      lead,
		Location:  MoroccoLocation(),
		Clock:     clock,
	}
}

// MoroccoLocation is the zone appointment dates and times are expressed in.
func MoroccoLocation() *time.Location {
	loc, err := time.LoadLocation("Africa/Casablanca")
	if err != nil {
		return time.FixedZone("Africa/Casablanca", 3600)
	}
	return loc
}

func (s *AsynqReminderScheduler) Close() error {
	if err := s.Inspector.Close(); err != nil {
		return err
	}
	return s.Client.Close()
}

// ReminderTime returns when the reminder for an appointment fires. It reports false
// when the appointment has no usable date.
func ReminderTime(date, clock string, lead time.Duration, loc *time.Location) (time.Time, bool) {
	if date == "" {
		return time.Time{}, false
	}
	if clock == "" {
		clock = defaultReminderHour
	}
	start, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, loc)
	if err != nil {
		return time.Time{}, false
	}
	return start.Add(-lead), true
}

func (s *AsynqReminderScheduler) Schedule(ctx context.Context, b models.Booking, technicianUserID string) error {
	fireAt, ok := ReminderTime(b.ScheduledDate, b.ScheduledTime, s.Lead, s.Location)
	if !ok {
		return nil
	}
	now := s.Clock.Now()
	if fireAt.Before(now) {
		// Too late for the lead time: remind right away unless the appointment itself has passed.
		if fireAt.Add(s.Lead).Before(now) {
			return nil
		}
		fireAt = now
	}

	label := b.Service
	if st, ok := models.LookupService(b.Service); ok {
		label = st.Label
	}
	when := b.ScheduledDate
	if b.ScheduledTime != "" {
		when += " à " + b.ScheduledTime
	}
	payload := models.ReminderPayload{
		BookingID:        b.ID,
		ClientID:         b.ClientID,
		TechnicianUserID: technicianUserID,
		Title:            "Rappel d'intervention",
		Body:             fmt.Sprintf("Intervention %s prévue le %s.", label, when),
		FireDate:         fireAt.UTC().Format(time.RFC3339),
	}

	task, opts, err := tasks.NewBookingReminderTask(payload, fireAt)
	if err != nil {
		return fmt.Errorf("failed to build reminder task: %w", err)
	}
	if _, err := s.Client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("failed to enqueue reminder for booking %s: %w", b.ID, err)
	}
	return nil
}

func (s *AsynqReminderScheduler) Cancel(ctx context.Context, bookingID string) error {
	err := s.Inspector.DeleteTask(reminderQueue, tasks.ReminderTaskID(bookingID))
	if err == nil || errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return nil
	}
	return fmt.Errorf("failed to cancel reminder for booking %s: %w", bookingID, err)
}
