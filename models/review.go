package models

import "time"

type Review struct {
	ID                    string     `bson:"id" json:"id"`
	TechnicianID          string     `bson:"technicianId" json:"technicianId"`
	ClientID              string     `bson:"clientId" json:"clientId"`
	BookingID             string     `bson:"bookingId,omitempty" json:"bookingId,omitempty"`
	Rating                int        `bson:"rating" json:"rating"` // 1-5
	Comment               string     `bson:"comment,omitempty" json:"comment,omitempty"`
	QualityRating         int        `bson:"qualityRating,omitempty" json:"qualityRating,omitempty"`
	PunctualityRating     int        `bson:"punctualityRating,omitempty" json:"punctualityRating,omitempty"`
	ProfessionalismRating int        `bson:"professionalismRating,omitempty" json:"professionalismRating,omitempty"`
	ValueRating           int        `bson:"valueRating,omitempty" json:"valueRating,omitempty"`
	IsVerified            bool       `bson:"isVerified" json:"isVerified"`
	Response              string     `bson:"response,omitempty" json:"response,omitempty"`
	RespondedAt           *time.Time `bson:"respondedAt,omitempty" json:"respondedAt,omitempty"`
	CreatedAt             time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time  `bson:"updatedAt" json:"updatedAt"`
}

type ReviewInput struct {
	TechnicianID          string `json:"technicianId"`
	ClientID              string `json:"clientId"`
	BookingID             string `json:"bookingId"`
	Rating                int    `json:"rating"`
	Comment               string `json:"comment"`
	QualityRating         int    `json:"qualityRating"`
	PunctualityRating     int    `json:"punctualityRating"`
	ProfessionalismRating int    `json:"professionalismRating"`
	ValueRating           int    `json:"valueRating"`
}

type ReviewUpdate struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

// RatingSummary is the derived aggregate stored on the technician.
type RatingSummary struct {
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"reviewCount"`
}
