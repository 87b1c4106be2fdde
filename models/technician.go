package models

import "time"

// Technician is a service-provider profile owned by exactly one User.
type Technician struct {
	ID                  string    `bson:"id" json:"id"`
	UserID              string    `bson:"userId" json:"userId"`
	Name                string    `bson:"name" json:"name"`
	Phone               string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Services            []string  `bson:"services" json:"services"` // taxonomy ids
	Skills              []string  `bson:"skills,omitempty" json:"skills,omitempty"`
	City                string    `bson:"city" json:"city"`
	Location            *GeoPoint `bson:"location,omitempty" json:"location,omitempty"`
	Languages           []string  `bson:"languages,omitempty" json:"languages,omitempty"`
	Rating              float64   `bson:"rating" json:"rating"` // derived from reviews
	ReviewCount         int       `bson:"reviewCount" json:"reviewCount"`
	CompletedJobs       int       `bson:"completedJobs" json:"completedJobs"`
	ResponseTimeMinutes float64   `bson:"responseTimeMinutes" json:"responseTimeMinutes"`
	CompletionRate      float64   `bson:"completionRate" json:"completionRate"`
	YearsExperience     int       `bson:"yearsExperience" json:"yearsExperience"`
	HourlyRate          float64   `bson:"hourlyRate" json:"hourlyRate"`
	IsVerified          bool      `bson:"isVerified" json:"isVerified"`
	IsAvailable         bool      `bson:"isAvailable" json:"isAvailable"`
	IsPro               bool      `bson:"isPro" json:"isPro"`
	IsPromo             bool      `bson:"isPromo" json:"isPromo"`
	CreatedAt           time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time `bson:"updatedAt" json:"updatedAt"`
}

// OffersService reports whether the technician lists the given taxonomy id.
func (t Technician) OffersService(service string) bool {
	want := CanonicalService(service)
	for _, s := range t.Services {
		if CanonicalService(s) == want {
			return true
		}
	}
	return false
}

// TechnicianSearch is the pre-filter used before scoring.
type TechnicianSearch struct {
	Service       string
	City          string
	AvailableOnly bool
	MinRating     float64
	Limit         int
}

// TechnicianUpdate carries the profile fields a technician may edit.
// Rating and review count are derived from reviews and cannot be edited.
type TechnicianUpdate struct {
	Name            *string  `json:"name"`
	Phone           *string  `json:"phone"`
	Services        []string `json:"services"`
	Skills          []string `json:"skills"`
	City            *string  `json:"city"`
	Languages       []string `json:"languages"`
	YearsExperience *int     `json:"yearsExperience"`
	HourlyRate      *float64 `json:"hourlyRate"`
	IsPro           *bool    `json:"isPro"`
	IsPromo         *bool    `json:"isPromo"`
}

// TechnicianProfile is what a technician user submits to open a profile.
type TechnicianProfile struct {
	Name            string   `json:"name"`
	Phone           string   `json:"phone"`
	Services        []string `json:"services"`
	Skills          []string `json:"skills"`
	City            string   `json:"city"`
	Lat             *float64 `json:"lat"`
	Lng             *float64 `json:"lng"`
	Languages       []string `json:"languages"`
	YearsExperience int      `json:"yearsExperience"`
	HourlyRate      float64  `json:"hourlyRate"`
	IsPro           bool     `json:"isPro"`
}

type LocationUpdate struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	City string  `json:"city"`
}

// NearbyQuery describes a prospective job for the public technician listing.
type NearbyQuery struct {
	Service string   `form:"service" json:"service"`
	City    string   `form:"city" json:"city"`
	Lat     *float64 `form:"lat" json:"lat"`
	Lng     *float64 `form:"lng" json:"lng"`
	Limit   int      `form:"limit" json:"limit"`
}
