package admin

import (
	"context"
	"testing"

	"m3allem/database/repository"
	"m3allem/models"
)

func TestLegalSectionsFor(t *testing.T) {
	a := &DefaultAdminService{}
	tests := []struct {
		role models.Role
		want []string
	}{
		{models.RoleClient, []string{"cgu", "privacy", "payments"}},
		{models.RoleTechnician, []string{"cgu", "privacy", "charter"}},
		{models.RoleAdmin, []string{"cgu", "privacy", "charter", "payments"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			got := a.LegalSectionsFor(tt.role)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d sections, want %d", len(got), len(tt.want))
			}
			for i, s := range got {
				if s.ID != tt.want[i] {
					t.Errorf("section %d = %s, want %s", i, s.ID, tt.want[i])
				}
			}
		})
	}
}

func TestOverview(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	for _, j := range []models.Job{
		{ID: "job-1", Service: models.ServicePlumbing, Status: models.JobPending},
		{ID: "job-2", Service: models.ServicePlumbing, Status: models.JobCompleted},
		{ID: "job-3", Service: models.ServiceElectrical, Status: models.JobCancelled},
	} {
		j := j
		if err := store.Jobs.Create(ctx, &j); err != nil {
			t.Fatalf("seed job: %v", err)
		}
	}
	for _, b := range []models.Booking{
		{ID: "bk-1", JobID: "job-2", Status: models.BookingCompleted, EstimatedCost: 300, FinalCost: 350.5},
		{ID: "bk-2", JobID: "job-3", Status: models.BookingCancelled, EstimatedCost: 200},
	} {
		b := b
		if err := store.Bookings.Create(ctx, &b); err != nil {
			t.Fatalf("seed booking: %v", err)
		}
	}
	for _, tech := range []models.Technician{
		{ID: "tech-1", UserID: "u-1", Services: []string{models.ServicePlumbing}, IsAvailable: true},
		{ID: "tech-2", UserID: "u-2", Services: []string{models.ServiceElectrical}},
	} {
		tech := tech
		if err := store.Technicians.Create(ctx, &tech); err != nil {
			t.Fatalf("seed technician: %v", err)
		}
	}

	for _, u := range []models.User{
		{ID: "u-1", Email: "youssef@example.ma", Role: models.RoleTechnician},
		{ID: "u-2", Email: "karim@example.ma", Role: models.RoleTechnician},
		{ID: "u-3", Email: "salma@example.ma", Role: models.RoleClient},
	} {
		u := u
		if err := store.Users.Create(ctx, &u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	o, err := NewDefaultAdminService(store, nil).Overview(ctx)
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if o.Jobs[models.JobPending] != 1 || o.Jobs[models.JobCompleted] != 1 || o.JobsByService[models.ServicePlumbing] != 2 {
		t.Errorf("unexpected job counts %v / %v", o.Jobs, o.JobsByService)
	}
	if o.Bookings[models.BookingCompleted] != 1 || o.CompletedRevenue != 350.5 {
		t.Errorf("unexpected bookings %v revenue %v", o.Bookings, o.CompletedRevenue)
	}
	if o.Technicians != 2 || o.AvailableTechnicians != 1 || o.Currency != models.CurrencyMAD {
		t.Errorf("unexpected technician counts %+v", o)
	}
	if o.Users[models.RoleTechnician] != 2 || o.Users[models.RoleClient] != 1 || o.Users[models.RoleAdmin] != 0 {
		t.Errorf("unexpected user counts %v", o.Users)
	}
}
