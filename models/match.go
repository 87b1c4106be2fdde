package models

// MatchFactor is one scored component of a match.
type MatchFactor struct {
	Factor      string  `json:"factor"`
	Points      float64 `json:"points"`
	Description string  `json:"description"`
}

// MatchResult is self-contained: callers render it without further lookups.
type MatchResult struct {
	Technician       Technician    `json:"technician"`
	MatchScore       float64       `json:"matchScore"`
	MatchPercentage  int           `json:"matchPercentage"`
	MatchFactors     []MatchFactor `json:"matchFactors"`
	EstimatedArrival string        `json:"estimatedArrival"`
	DistanceKm       float64       `json:"distanceKm,omitempty"`
	EstimatedCost    float64       `json:"estimatedCost"`
	Highlights       []string      `json:"highlights"`
	Warnings         []string      `json:"warnings"`
	IsPreferred      bool          `json:"isPreferred"`
}

// ClientPreferences is derived from a client's booking history.
type ClientPreferences struct {
	PreferredTechnicians map[string]bool `json:"preferredTechnicians"`
	TopServices          []string        `json:"topServices"`
	AverageBookingValue  float64         `json:"averageBookingValue"`
	PreferredHours       []int           `json:"preferredHours"`
}
