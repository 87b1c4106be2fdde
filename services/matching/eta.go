package matching

import (
	"fmt"
	"math"
)

// EstimateArrival renders a travel-time estimate from the distance between the job and
// the technician. known is false when either side has no coordinates.
func EstimateArrival(sameCity bool, distanceKm float64, known bool) string {
	if sameCity {
		minutes := 20
		if known {
			minutes = int(math.Round(clamp(10+2*distanceKm, 10, 30)))
		}
		return fmt.Sprintf("%d minutes", minutes)
	}

	hours := 2
	if known {
		hours = int(clamp(math.Ceil(distanceKm/80), 1, 3))
	}
	if hours == 1 {
		return "1 heure"
	}
	return fmt.Sprintf("%d heures", hours)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
