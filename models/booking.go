package models

import "time"

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingAccepted   BookingStatus = "accepted"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
	BookingNoShow     BookingStatus = "no_show"
)

// Terminal reports whether no further transition is possible.
func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingCancelled || s == BookingNoShow
}

// Booking links a Job to the Technician the client selected.
type Booking struct {
	ID               string         `bson:"id" json:"id"`
	JobID            string         `bson:"jobId" json:"jobId"`
	TechnicianID     string         `bson:"technicianId" json:"technicianId"`
	ClientID         string         `bson:"clientId,omitempty" json:"clientId,omitempty"`
	ClientName       string         `bson:"clientName,omitempty" json:"clientName,omitempty"`
	ClientPhone      string         `bson:"clientPhone,omitempty" json:"clientPhone,omitempty"`
	Service          string         `bson:"service" json:"service"`
	ScheduledDate    string         `bson:"scheduledDate,omitempty" json:"scheduledDate,omitempty"`
	ScheduledTime    string         `bson:"scheduledTime,omitempty" json:"scheduledTime,omitempty"`
	Status           BookingStatus  `bson:"status" json:"status"`
	EstimatedCost    float64        `bson:"estimatedCost" json:"estimatedCost"`
	FinalCost        float64        `bson:"finalCost,omitempty" json:"finalCost,omitempty"`
	DiscountCode     string         `bson:"discountCode,omitempty" json:"discountCode,omitempty"`
	DiscountAmount   float64        `bson:"discountAmount,omitempty" json:"discountAmount,omitempty"`
	Pricing          *PricingResult `bson:"pricing,omitempty" json:"pricing,omitempty"`
	MatchScore       float64        `bson:"matchScore" json:"matchScore"`
	MatchExplanation string         `bson:"matchExplanation" json:"matchExplanation"` // immutable once created
	CancelReason     string         `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`
	CreatedAt        time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time      `bson:"updatedAt" json:"updatedAt"`
	AcceptedAt       *time.Time     `bson:"acceptedAt,omitempty" json:"acceptedAt,omitempty"`
	StartedAt        *time.Time     `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletedAt      *time.Time     `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CancelledAt      *time.Time     `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
}

// Cost is what the client owes: the final cost once known, otherwise the estimate.
func (b Booking) Cost() float64 {
	if b.FinalCost > 0 {
		return b.FinalCost
	}
	return b.EstimatedCost
}

type BookingFilter struct {
	JobID        string
	ClientID     string
	TechnicianID string
	Status       BookingStatus
}

// BookingRequest is submitted once the client picks a technician.
type BookingRequest struct {
	JobID         string  `json:"jobId"`
	TechnicianID  string  `json:"technicianId"`
	ClientID      string  `json:"clientId"`
	ClientName    string  `json:"clientName"`
	ClientPhone   string  `json:"clientPhone"`
	ScheduledDate string  `json:"scheduledDate"`
	ScheduledTime string  `json:"scheduledTime"`
	DistanceKm    float64 `json:"distanceKm"`
	DiscountCode  string  `json:"discountCode"`
}

// TechnicianStats summarizes a technician's booking history for scoring.
type TechnicianStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Active    int `json:"active"`
}
