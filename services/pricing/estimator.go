package pricing

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"m3allem/models"
	"m3allem/utils"

	"go.uber.org/zap"
)

// DemandCounter counts pending jobs competing for the same service in a city.
type DemandCounter interface {
	CountPending(ctx context.Context, service, city, excludeID string) (int, error)
}

// TechnicianLookup fetches the technician named in a quote.
type TechnicianLookup interface {
	GetByID(ctx context.Context, id string) (*models.Technician, error)
}

// Estimator produces itemized quotes. Both collaborators are optional; a nil or
// failing collaborator only skips the step that needs it.
type Estimator struct {
	Demand      DemandCounter
	Technicians TechnicianLookup
	Logger      *zap.Logger
}

func NewEstimator(demand DemandCounter, technicians TechnicianLookup, logger *zap.Logger) *Estimator {
	return &Estimator{
		Demand:      demand,
		Technicians: technicians,
		Logger:      utils.LoggerOr(logger),
	}
}

// quote accumulates the running price and its itemization.
type quote struct {
	price     float64
	base      float64
	savings   float64
	transport float64
	surge     float64
	premium   float64
	steps     []models.PriceAdjustment
}

func (q *quote) multiply(factor string, m float64, description string) float64 {
	before := q.price
	q.price *= m
	q.steps = append(q.steps, models.PriceAdjustment{Factor: factor, Multiplier: m, Description: description})
	return q.price - before
}

func (q *quote) add(factor string, amount float64, description string) {
	q.price += amount
	q.steps = append(q.steps, models.PriceAdjustment{Factor: factor, Addition: amount, Description: description})
}

// EstimatePrice runs the seven pricing steps in order. It never fails: unknown
// services use the default base rate and unparsable dates skip the steps that need them.
func (e *Estimator) EstimatePrice(ctx context.Context, p models.PricingParams) models.PricingResult {
	logger := utils.LoggerOr(e.Logger)

	service := models.CanonicalService(p.ServiceType)
	base := models.DefaultBaseRate
	label := p.ServiceType
	if st, ok := models.LookupService(p.ServiceType); ok {
		base = st.BaseRate
		label = st.Label
	}
	q := &quote{price: base, base: base}

	date, hasDate := parseDate(p.ScheduledDate)
	hour, hasTime := parseHour(p.ScheduledTime)

	// 1. Urgency
	switch models.ParseUrgency(p.Urgency).PricingTier() {
	case models.TierUrgent:
		q.multiply("urgency", urgentMultiplier, "Intervention urgente (+50%)")
	case models.TierFlexible:
		q.multiply("urgency", flexibleMultiplier, "Date flexible (-10%)")
		q.savings += base * (1 - flexibleMultiplier)
	}

	// 2. Weekend and night
	if hasDate && isWeekend(date.Weekday()) {
		q.multiply("weekend", weekendMultiplier, "Intervention le week-end (+20%)")
	}
	if hasTime && isNight(hour) {
		q.multiply("night", nightMultiplier, "Intervention de nuit (+30%)")
	}

	// 3. Demand surge
	if e.Demand != nil && p.City != "" {
		count, err := e.Demand.CountPending(ctx, service, p.City, p.JobID)
		if err != nil {
			logger.Warn("EstimatePrice: demand count unavailable, skipping surge",
				zap.String("service", service), zap.String("city", p.City), zap.Error(err))
		} else if count > surgeThreshold {
			extra := math.Min(float64(count-surgeThreshold)*surgeStep, surgeCap)
			desc := fmt.Sprintf("Forte demande : %d demandes en attente (+%.0f%%)", count, extra*100)
			q.surge = q.multiply("surge", 1+extra, desc)
		}
	}

	// 4. Distance
	if p.DistanceKm > freeDistanceKm {
		extraKm := p.DistanceKm - freeDistanceKm
		q.transport = extraKm * perKmRate
		q.add("distance", q.transport, fmt.Sprintf("Déplacement de %.1f km au-delà de %.0f km", extraKm, freeDistanceKm))
	}

	// 5. Technician premium
	if p.TechnicianID != "" && e.Technicians != nil {
		tech, err := e.Technicians.GetByID(ctx, p.TechnicianID)
		if err != nil {
			logger.Warn("EstimatePrice: technician lookup failed, skipping premium",
				zap.String("technicianID", p.TechnicianID), zap.Error(err))
		} else if tech.Rating >= premiumRating {
			q.premium = q.multiply("premium", premiumMultiplier, "Technicien premium, note 4.8 ou plus (+15%)")
		}
	}

	// 6. Complexity
	if c, ok := models.ParseComplexity(p.Complexity); ok {
		switch c {
		case models.ComplexityComplex:
			q.multiply("complexity", complexMultiplier, "Intervention complexe (+25%)")
		case models.ComplexitySimple:
			q.multiply("complexity", simpleMultiplier, "Intervention simple (-15%)")
			q.savings += base * (1 - simpleMultiplier)
		}
	}

	// 7. Season
	if hasDate {
		if rule, ok := seasonFor(service, date.Month()); ok {
			q.multiply("season", rule.multiplier, rule.description)
		}
	}

	return q.result(label)
}

func (q *quote) result(label string) models.PricingResult {
	final := math.Round(q.price)
	transport := utils.Round2(q.transport)
	surge := utils.Round2(q.surge)
	premium := utils.Round2(q.premium)
	steps := q.steps
	if steps == nil {
		steps = []models.PriceAdjustment{}
	}
	return models.PricingResult{
		BasePrice:   q.base,
		FinalPrice:  final,
		Currency:    models.CurrencyMAD,
		Unit:        unitIntervention,
		Multipliers: steps,
		Savings:     utils.Round2(q.savings),
		Explanation: explain(label, q.base, final, steps),
		Breakdown: models.PriceBreakdown{
			Labor:     utils.Round2(final - transport - surge - premium),
			Transport: transport,
			Surge:     surge,
			Premium:   premium,
			Discount:  utils.Round2(q.savings),
		},
		Confidence: ruleConfidence,
	}
}

func explain(label string, base, final float64, steps []models.PriceAdjustment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tarif de base %s : %.0f MAD", label, base)
	for _, s := range steps {
		b.WriteString(". ")
		b.WriteString(s.Description)
	}
	fmt.Fprintf(&b, ". Prix final : %.0f MAD.", final)
	return b.String()
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	d, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func parseHour(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return t.Hour(), true
}
