package admin

import (
	"context"
	"fmt"

	"m3allem/models"
	"m3allem/utils"
)

// Overview counts jobs and bookings by status, accounts by role, and sums the value of
// completed bookings.
func (a *DefaultAdminService) Overview(ctx context.Context) (*models.PlatformOverview, error) {
	jobs, err := a.Jobs.List(ctx, models.JobFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	bookings, err := a.Bookings.List(ctx, models.BookingFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	technicians, err := a.Technicians.Search(ctx, models.TechnicianSearch{})
	if err != nil {
		return nil, fmt.Errorf("failed to list technicians: %w", err)
	}
	users, err := a.Users.CountByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	o := &models.PlatformOverview{
		Jobs:          make(map[models.JobStatus]int),
		Bookings:      make(map[models.BookingStatus]int),
		JobsByService: make(map[string]int),
		Users:         users,
		Technicians:   len(technicians),
		Currency:      models.CurrencyMAD,
	}
	for _, j := range jobs {
		o.Jobs[j.Status]++
		o.JobsByService[j.Service]++
	}
	for _, b := range bookings {
		o.Bookings[b.Status]++
		if b.Status == models.BookingCompleted {
			o.CompletedRevenue += b.Cost()
		}
	}
	o.CompletedRevenue = utils.Round2(o.CompletedRevenue)
	for _, t := range technicians {
		if t.IsAvailable {
			o.AvailableTechnicians++
		}
	}
	return o, nil
}
