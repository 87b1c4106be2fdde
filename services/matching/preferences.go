package matching

import (
	"sort"
	"time"

	"m3allem/models"
)

const (
	topServicesCount = 3
	topHoursCount    = 2
)

// DeriveClientPreferences aggregates a client's booking history: technicians booked
// more than once, the most booked services, the average spend and the usual hours.
func DeriveClientPreferences(history []models.Booking) models.ClientPreferences {
	prefs := models.ClientPreferences{
		PreferredTechnicians: map[string]bool{},
		TopServices:          []string{},
		PreferredHours:       []int{},
	}
	if len(history) == 0 {
		return prefs
	}

	perTechnician := map[string]int{}
	perService := map[string]int{}
	perHour := map[int]int{}
	total := 0.0
	for _, b := range history {
		perTechnician[b.TechnicianID]++
		if b.Service != "" {
			perService[models.CanonicalService(b.Service)]++
		}
		if t, err := time.Parse("15:04", b.ScheduledTime); err == nil {
			perHour[t.Hour()]++
		}
		total += b.Cost()
	}

	for id, n := range perTechnician {
		if n > 1 && id != "" {
			prefs.PreferredTechnicians[id] = true
		}
	}

	services := make([]string, 0, len(perService))
	for s := range perService {
		services = append(services, s)
	}
	sort.Slice(services, func(i, j int) bool {
		if perService[services[i]] != perService[services[j]] {
			return perService[services[i]] > perService[services[j]]
		}
		return services[i] < services[j]
	})
	if len(services) > topServicesCount {
		services = services[:topServicesCount]
	}
	prefs.TopServices = services

	hours := make([]int, 0, len(perHour))
	for h := range perHour {
		hours = append(hours, h)
	}
	sort.Slice(hours, func(i, j int) bool {
		if perHour[hours[i]] != perHour[hours[j]] {
			return perHour[hours[i]] > perHour[hours[j]]
		}
		return hours[i] < hours[j]
	})
	if len(hours) > topHoursCount {
		hours = hours[:topHoursCount]
	}
	prefs.PreferredHours = hours

	prefs.AverageBookingValue = total / float64(len(history))
	return prefs
}

func offersTopService(t models.Technician, top []string) bool {
	for _, s := range top {
		if t.OffersService(s) {
			return true
		}
	}
	return false
}
