package pricing

import (
	"time"

	"m3allem/models"
)

const (
	urgentMultiplier   = 1.5
	flexibleMultiplier = 0.9
	weekendMultiplier  = 1.2
	nightMultiplier    = 1.3
	premiumMultiplier  = 1.15
	complexMultiplier  = 1.25
	simpleMultiplier   = 0.85

	surgeThreshold = 10
	surgeStep      = 0.05
	surgeCap       = 0.5

	freeDistanceKm = 10.0
	perKmRate      = 10.0

	premiumRating = 4.8

	ruleConfidence   = 0.85
	unitIntervention = "intervention"
)

// Night covers 18:00 to 07:59.
func isNight(hour int) bool {
	return hour >= 18 || hour < 8
}

func isWeekend(d time.Weekday) bool {
	return d == time.Saturday || d == time.Sunday
}

type seasonRule struct {
	service     string
	months      []time.Month
	multiplier  float64
	description string
}

var seasonRules = []seasonRule{
	{
		service:     models.ServiceAC,
		months:      []time.Month{time.June, time.July, time.August},
		multiplier:  1.2,
		description: "Haute saison climatisation (+20%)",
	},
	{
		service:     models.ServicePlumbing,
		months:      []time.Month{time.December, time.January, time.February},
		multiplier:  1.15,
		description: "Saison hivernale plomberie (+15%)",
	},
}

func seasonFor(service string, month time.Month) (seasonRule, bool) {
	for _, r := range seasonRules {
		if r.service != service {
			continue
		}
		for _, m := range r.months {
			if m == month {
				return r, true
			}
		}
	}
	return seasonRule{}, false
}

// cityMultipliers scale the quick-estimate labor base by local cost of living.
var cityMultipliers = map[string]float64{
	"casablanca": 1.2,
	"rabat":      1.15,
	"marrakech":  1.1,
	"tanger":     1.1,
	"agadir":     1.05,
	"fes":        1.0,
	"meknes":     0.95,
	"oujda":      0.95,
	"kenitra":    1.0,
	"tetouan":    1.0,
}

// CityMultiplier returns 1.0 for cities outside the table.
func CityMultiplier(city string) float64 {
	if m, ok := cityMultipliers[models.NormalizeKey(city)]; ok {
		return m
	}
	return 1.0
}

var urgencyFlat = map[models.Urgency]float64{
	models.UrgencyLow:       0,
	models.UrgencyNormal:    0,
	models.UrgencyHigh:      30,
	models.UrgencyEmergency: 80,
}

var complexityFlat = map[models.Complexity]float64{
	models.ComplexitySimple:   0,
	models.ComplexityModerate: 30,
	models.ComplexityComplex:  80,
}

const (
	nightFlat   = 40.0
	weekendFlat = 20.0
)
