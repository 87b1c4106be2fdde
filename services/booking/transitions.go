package booking

import "m3allem/models"

var jobTransitions = map[models.JobStatus][]models.JobStatus{
	models.JobPending:    {models.JobAccepted, models.JobCancelled},
	models.JobAccepted:   {models.JobInProgress, models.JobCompleted, models.JobCancelled},
	models.JobInProgress: {models.JobCompleted},
}

// A booking can be cancelled or marked no-show from any open status, but only while
// its job can still be cancelled. Once the job is in progress the booking ends with
// CompleteBooking, so the job always reaches a terminal status.
var bookingTransitions = map[models.BookingStatus][]models.BookingStatus{
	models.BookingPending:    {models.BookingAccepted, models.BookingCancelled, models.BookingNoShow},
	models.BookingAccepted:   {models.BookingInProgress, models.BookingCompleted, models.BookingCancelled, models.BookingNoShow},
	models.BookingInProgress: {models.BookingCompleted, models.BookingCancelled, models.BookingNoShow},
}

func CanTransitionJob(from, to models.JobStatus) bool {
	for _, s := range jobTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func CanTransitionBooking(from, to models.BookingStatus) bool {
	for _, s := range bookingTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func jobTransitionError(from, to models.JobStatus) error {
	return &models.TransitionError{Entity: "job", From: string(from), To: string(to)}
}

func bookingTransitionError(from, to models.BookingStatus) error {
	return &models.TransitionError{Entity: "booking", From: string(from), To: string(to)}
}

// jobStatusFor is the job status that follows a booking transition.
func jobStatusFor(s models.BookingStatus) models.JobStatus {
	switch s {
	case models.BookingInProgress:
		return models.JobInProgress
	case models.BookingCompleted:
		return models.JobCompleted
	case models.BookingCancelled, models.BookingNoShow:
		return models.JobCancelled
	default:
		return models.JobAccepted
	}
}
