package matching

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"m3allem/models"
	"m3allem/utils"
)

const (
	// AvgMarketRate is the reference hourly rate (MAD) for price competitiveness.
	AvgMarketRate = 280.0
	// maxScore is the sum of the bounded factors used to express a percentage.
	maxScore = 140.0

	defaultSuccessRate     = 0.5
	defaultCompletionRate  = 0.8
	defaultResponseMinutes = 30.0
)

// Matcher ranks a technician pool for a job with a nine-factor point system.
type Matcher struct {
	MarketRate float64
}

func NewMatcher() *Matcher {
	return &Matcher{MarketRate: AvgMarketRate}
}

// scored pairs a result with its pool position so the final sort is deterministic.
type scored struct {
	result models.MatchResult
	index  int
}

// Match scores every technician of pool against job. The client's booking history
// feeds the preference factor and stats carries each technician's booking record.
// An empty pool yields an empty, non-nil slice.
func (m *Matcher) Match(
	job models.Job,
	pool []models.Technician,
	history []models.Booking,
	stats map[string]models.TechnicianStats,
) []models.MatchResult {
	if len(pool) == 0 {
		return []models.MatchResult{}
	}
	prefs := DeriveClientPreferences(history)

	results := make([]scored, len(pool))
	var wg sync.WaitGroup
	for i := range pool {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = scored{result: m.score(job, pool[i], prefs, stats[pool[i].ID]), index: i}
		}(i)
	}
	wg.Wait()

	return rank(results)
}

func (m *Matcher) score(job models.Job, t models.Technician, prefs models.ClientPreferences, st models.TechnicianStats) models.MatchResult {
	var factors []models.MatchFactor
	addFactor := func(name string, points float64, description string) {
		factors = append(factors, models.MatchFactor{Factor: name, Points: utils.Round2(points), Description: description})
	}
	hasHistory := st.Total > 0

	// 1. Rating
	rating := clamp(t.Rating, 0, 5)
	addFactor("rating", rating*10, fmt.Sprintf("Note de %.1f/5", rating))

	// 2. Success rate on past bookings
	success := defaultSuccessRate
	if hasHistory {
		success = float64(st.Completed) / float64(st.Total)
	}
	addFactor("success_rate", success*20, fmt.Sprintf("Taux de réussite de %.0f%%", success*100))

	// 3. Client preference
	preferred := prefs.PreferredTechnicians[t.ID]
	switch {
	case preferred:
		addFactor("preference", 15, "Technicien que vous avez déjà choisi plusieurs fois")
	case offersTopService(t, prefs.TopServices):
		addFactor("preference", 5, "Spécialiste de vos services habituels")
	default:
		addFactor("preference", 0, "Aucune préférence enregistrée")
	}

	// 4. Response time
	response := math.Max(t.ResponseTimeMinutes, 0)
	// Zero is also the unset value, so a newcomer without history is scored as neutral.
	if response == 0 && !hasHistory {
		response = defaultResponseMinutes
	}
	addFactor("response_time", math.Max(0, 10-response/6), fmt.Sprintf("Répond en %.0f minutes en moyenne", response))

	// 5. Completion rate
	completion := clamp(t.CompletionRate, 0, 1)
	if completion == 0 && !hasHistory {
		completion = defaultCompletionRate
	}
	addFactor("completion_rate", completion*10, fmt.Sprintf("Taux d'achèvement de %.0f%%", completion*100))

	// 6. Workload
	if penalty := math.Min(float64(st.Active)*2, 10); penalty > 0 {
		addFactor("workload", -penalty, fmt.Sprintf("%d interventions en cours", st.Active))
	}

	// 7. Proximity
	sameCity := models.SameCity(t.City, job.City)
	if sameCity {
		addFactor("proximity", 10, "Dans votre ville")
	} else {
		addFactor("proximity", 5, fmt.Sprintf("Basé à %s", t.City))
	}

	// 8. Price competitiveness
	price := 5.0
	if t.HourlyRate > 0 {
		price = math.Min(m.marketRate()/t.HourlyRate*5, 10)
	}
	addFactor("price", price, fmt.Sprintf("Tarif horaire de %.0f MAD", t.HourlyRate))

	// 9. Availability
	if t.IsAvailable {
		addFactor("availability", 5, "Disponible maintenant")
	} else {
		addFactor("availability", 0, "Indisponible pour le moment")
	}

	total := 0.0
	for _, f := range factors {
		total += f.Points
	}
	total = utils.Round2(total)

	distance, known := distanceBetween(job.Location, t.Location)
	return models.MatchResult{
		Technician:       t,
		MatchScore:       total,
		MatchPercentage:  Percentage(total),
		MatchFactors:     factors,
		EstimatedArrival: EstimateArrival(sameCity, distance, known),
		DistanceKm:       distance,
		EstimatedCost:    t.HourlyRate,
		Highlights:       highlights(t, preferred, response),
		Warnings:         warnings(t, st, sameCity),
		IsPreferred:      preferred,
	}
}

func (m *Matcher) marketRate() float64 {
	if m == nil || m.MarketRate <= 0 {
		return AvgMarketRate
	}
	return m.MarketRate
}

// Percentage expresses a score against the 140-point scale, clamped to [0, 100].
func Percentage(score float64) int {
	return int(clamp(math.Round(score/maxScore*100), 0, 100))
}

func distanceBetween(a, b *models.GeoPoint) (float64, bool) {
	if !a.Valid() || !b.Valid() {
		return 0, false
	}
	return utils.Round2(utils.Haversine(a.Lat(), a.Lng(), b.Lat(), b.Lng())), true
}

// rank orders by score, then rating, then review count, then pool position.
func rank(results []scored) []models.MatchResult {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i].result, results[j].result
		if a.MatchScore != b.MatchScore {
			return a.MatchScore > b.MatchScore
		}
		if a.Technician.Rating != b.Technician.Rating {
			return a.Technician.Rating > b.Technician.Rating
		}
		if a.Technician.ReviewCount != b.Technician.ReviewCount {
			return a.Technician.ReviewCount > b.Technician.ReviewCount
		}
		return results[i].index < results[j].index
	})
	out := make([]models.MatchResult, len(results))
	for i, r := range results {
		out[i] = r.result
	}
	return out
}

func highlights(t models.Technician, preferred bool, responseMinutes float64) []string {
	out := []string{}
	if t.Rating >= 4.8 {
		out = append(out, "Excellente note")
	}
	if t.IsVerified {
		out = append(out, "Profil vérifié")
	}
	if t.IsPro {
		out = append(out, "Technicien Pro")
	}
	if preferred {
		out = append(out, "Vous l'avez déjà choisi")
	}
	if responseMinutes <= 15 {
		out = append(out, "Répond rapidement")
	}
	if t.CompletedJobs >= 100 {
		out = append(out, "Plus de 100 interventions")
	}
	if t.IsPromo {
		out = append(out, "Offre promotionnelle")
	}
	return out
}

func warnings(t models.Technician, st models.TechnicianStats, sameCity bool) []string {
	out := []string{}
	if st.Active >= 3 {
		out = append(out, fmt.Sprintf("Déjà %d interventions en cours", st.Active))
	}
	if !t.IsAvailable {
		out = append(out, "Actuellement indisponible")
	}
	if !sameCity {
		out = append(out, "Ne se trouve pas dans votre ville")
	}
	if t.ReviewCount > 0 && t.Rating < 3.5 {
		out = append(out, "Note inférieure à 3.5")
	}
	return out
}
