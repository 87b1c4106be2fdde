package models

import "time"

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobAccepted   JobStatus = "accepted"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
	JobCancelled  JobStatus = "cancelled"
)

// Job is a client's maintenance request before a technician is assigned.
type Job struct {
	ID            string          `bson:"id" json:"id"`
	ClientID      string          `bson:"clientId,omitempty" json:"clientId,omitempty"`
	Description   string          `bson:"description" json:"description"`
	Service       string          `bson:"service" json:"service"`
	SubServices   []string        `bson:"subServices,omitempty" json:"subServices,omitempty"`
	City          string          `bson:"city" json:"city"`
	Location      *GeoPoint       `bson:"location,omitempty" json:"location,omitempty"`
	Urgency       Urgency         `bson:"urgency" json:"urgency"`
	Complexity    Complexity      `bson:"complexity" json:"complexity"`
	ScheduledDate string          `bson:"scheduledDate,omitempty" json:"scheduledDate,omitempty"` // YYYY-MM-DD
	ScheduledTime string          `bson:"scheduledTime,omitempty" json:"scheduledTime,omitempty"` // HH:MM
	PhotoURL      string          `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	CostMin       float64         `bson:"costMin" json:"costMin"`
	CostLikely    float64         `bson:"costLikely" json:"costLikely"`
	CostMax       float64         `bson:"costMax" json:"costMax"`
	Confidence    float64         `bson:"costConfidence" json:"costConfidence"`
	Status        JobStatus       `bson:"status" json:"status"`
	Analysis      *AnalysisSignal `bson:"analysis,omitempty" json:"analysis,omitempty"`
	CreatedAt     time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// JobFilter narrows job listings. Empty fields match everything.
type JobFilter struct {
	ClientID string
	Status   JobStatus
	City     string
	Service  string
}

// JobRequest is the client-facing input of the job creation flow.
type JobRequest struct {
	ClientID      string   `json:"clientId"`
	Description   string   `json:"description"`
	Service       string   `json:"service"`
	SubServices   []string `json:"subServices"`
	City          string   `json:"city"`
	Urgency       string   `json:"urgency"`
	Complexity    string   `json:"complexity"`
	ScheduledDate string   `json:"scheduledDate"`
	ScheduledTime string   `json:"scheduledTime"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	PhotoURL      string   `json:"photoUrl"`
}

// JobCreation is returned by the creation flow: the stored job and its ranked candidates.
type JobCreation struct {
	Job     Job           `json:"job"`
	Matches []MatchResult `json:"matches"`
}
