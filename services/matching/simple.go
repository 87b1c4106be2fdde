package matching

import (
	"fmt"

	"m3allem/models"
)

// SimpleMatch is the light ranking used for public listings: rating, proximity and
// availability only, ordered like Match.
func SimpleMatch(job models.Job, pool []models.Technician) []models.MatchResult {
	results := make([]scored, len(pool))
	for i, t := range pool {
		rating := clamp(t.Rating, 0, 5)
		sameCity := models.SameCity(t.City, job.City)
		factors := []models.MatchFactor{
			{Factor: "rating", Points: rating * 10, Description: fmt.Sprintf("Note de %.1f/5", rating)},
		}
		if sameCity {
			factors = append(factors, models.MatchFactor{Factor: "proximity", Points: 10, Description: "Dans votre ville"})
		} else {
			factors = append(factors, models.MatchFactor{Factor: "proximity", Points: 5, Description: fmt.Sprintf("Basé à %s", t.City)})
		}
		if t.IsAvailable {
			factors = append(factors, models.MatchFactor{Factor: "availability", Points: 5, Description: "Disponible maintenant"})
		}

		total := 0.0
		for _, f := range factors {
			total += f.Points
		}
		distance, known := distanceBetween(job.Location, t.Location)
		results[i] = scored{index: i, result: models.MatchResult{
			Technician:       t,
			MatchScore:       total,
			MatchPercentage:  Percentage(total),
			MatchFactors:     factors,
			EstimatedArrival: EstimateArrival(sameCity, distance, known),
			DistanceKm:       distance,
			EstimatedCost:    t.HourlyRate,
			Highlights:       []string{},
			Warnings:         []string{},
		}}
	}
	return rank(results)
}
