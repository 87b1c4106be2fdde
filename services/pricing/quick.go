package pricing

import (
	"math"
	"strings"
	"unicode/utf8"

	"m3allem/models"
)

const (
	baseConfidence          = 0.75
	noDescriptionConfidence = 0.7
	maxConfidence           = 0.95
)

// QuickEstimate computes the min/likely/max range attached to a new job.
func QuickEstimate(p models.QuickEstimateParams) models.QuickEstimate {
	laborBase := models.DefaultBaseRate
	if st, ok := models.LookupService(p.Service); ok {
		laborBase = st.LaborBase
	}
	cityMult := CityMultiplier(p.City)
	adjusted := math.Round(laborBase * cityMult)

	urgency := models.ParseUrgency(string(p.Urgency))
	complexity, _ := models.ParseComplexity(string(p.Complexity))

	timePremium := 0.0
	if hour, ok := parseHour(p.ScheduledTime); ok && isNight(hour) {
		timePremium += nightFlat
	}
	if date, ok := parseDate(p.ScheduledDate); ok && isWeekend(date.Weekday()) {
		timePremium += weekendFlat
	}

	likely := adjusted + urgencyFlat[urgency] + complexityFlat[complexity] + timePremium
	return models.QuickEstimate{
		BasePrice:      laborBase,
		CityMultiplier: cityMult,
		AdjustedBase:   adjusted,
		UrgencyFee:     urgencyFlat[urgency],
		ComplexityFee:  complexityFlat[complexity],
		TimePremium:    timePremium,
		MinCost:        math.Round(likely * 0.8),
		LikelyCost:     likely,
		MaxCost:        math.Round(likely * 1.3),
		Confidence:     EstimateConfidence(p.Description, p.ComplexityExplicit, p.AnalyzerConfidence),
		Currency:       models.CurrencyMAD,
	}
}

// EstimateConfidence rates how much the quick estimate can be trusted given the
// description the client wrote and what the analyzer reported. Result is in [0, 0.95].
func EstimateConfidence(description string, complexityExplicit bool, analyzerConfidence float64) float64 {
	description = strings.TrimSpace(description)
	conf := baseConfidence
	switch n := utf8.RuneCountInString(description); {
	case n == 0:
		conf = noDescriptionConfidence
	case n < 20:
		conf -= 0.15
	case n >= 100:
		conf += 0.1
	}
	if complexityExplicit {
		conf += 0.05
	}
	if analyzerConfidence > 0 {
		conf = (conf + math.Min(analyzerConfidence, 1)) / 2
	}
	return math.Round(math.Max(0, math.Min(conf, maxConfidence))*100) / 100
}
