package models

import "strings"

// Urgency is the single urgency vocabulary used across jobs, pricing and matching.
type Urgency string

const (
	UrgencyLow       Urgency = "low"
	UrgencyNormal    Urgency = "normal"
	UrgencyHigh      Urgency = "high"
	UrgencyEmergency Urgency = "emergency"
)

// Pricing tiers understood by the dynamic estimator.
const (
	TierUrgent    = "urgent"
	TierScheduled = "scheduled"
	TierFlexible  = "flexible"
)

// ParseUrgency accepts both the job vocabulary and the pricing vocabulary.
// Unknown or empty values map to UrgencyNormal.
func ParseUrgency(s string) Urgency {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", TierFlexible:
		return UrgencyLow
	case "high":
		return UrgencyHigh
	case "emergency", TierUrgent:
		return UrgencyEmergency
	default:
		return UrgencyNormal
	}
}

// PricingTier maps the urgency onto the estimator's three tiers.
func (u Urgency) PricingTier() string {
	switch u {
	case UrgencyEmergency:
		return TierUrgent
	case UrgencyLow:
		return TierFlexible
	default:
		return TierScheduled
	}
}

type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// ParseComplexity returns the complexity and whether the input named one explicitly.
func ParseComplexity(s string) (Complexity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simple":
		return ComplexitySimple, true
	case "moderate":
		return ComplexityModerate, true
	case "complex":
		return ComplexityComplex, true
	default:
		return ComplexityModerate, false
	}
}
