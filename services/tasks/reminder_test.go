package tasks

import (
	"encoding/json"
	"testing"
	"time"

	"m3allem/models"
)

func TestNewBookingReminderTask(t *testing.T) {
	payload := models.ReminderPayload{
		BookingID:        "bk-7",
		ClientID:         "u-1",
		TechnicianUserID: "u-2",
		Title:            "Rappel",
		Body:             "Intervention à 14:00",
		FireDate:         "2026-03-11T13:00:00Z",
	}
	task, opts, err := NewBookingReminderTask(payload, time.Date(2026, 3, 11, 13, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Type() != TypeBookingReminder {
		t.Fatalf("type = %q", task.Type())
	}
	if len(opts) != 3 {
		t.Fatalf("expected 3 options, got %d", len(opts))
	}

	var got models.ReminderPayload
	if err := json.Unmarshal(task.Payload(), &got); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if got != payload {
		t.Fatalf("got %+v, want %+v", got, payload)
	}
}
