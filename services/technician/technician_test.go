package technician

import (
	"context"
	"errors"
	"testing"
	"time"

	technicianRepo "m3allem/database/repository/technician"
	userRepo "m3allem/database/repository/user"
	"m3allem/models"
	"m3allem/utils"
)

func newTestService(t *testing.T) *DefaultTechnicianService {
	t.Helper()
	ctx := context.Background()
	users := userRepo.NewMemoryUserRepo()
	for _, u := range []models.User{
		{ID: "u-tech", Name: "Youssef Alami", Email: "youssef@example.ma", Role: models.RoleTechnician, City: "Casablanca", Phone: "0612345678"},
		{ID: "u-client", Name: "Salma", Email: "salma@example.ma", Role: models.RoleClient},
	} {
		u := u
		if err := users.Create(ctx, &u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	return NewDefaultTechnicianService(
		technicianRepo.NewMemoryTechnicianRepo(),
		users,
		utils.NewFixedClock(time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)),
		utils.SequentialIDs("tech"),
		nil,
	)
}

func TestCreateProfile(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tech, err := svc.CreateProfile(ctx, "u-tech", models.TechnicianProfile{
		Services:   []string{"Plomberie", "plomberie", "ÉLECTRICITÉ"},
		HourlyRate: 150,
	})
	if err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	if tech.Name != "Youssef Alami" || tech.City != "Casablanca" || tech.Phone != "0612345678" {
		t.Errorf("profile should default to the account details, got %+v", tech)
	}
	if len(tech.Services) != 2 || tech.Services[0] != models.ServicePlumbing || tech.Services[1] != models.ServiceElectrical {
		t.Errorf("got services %v", tech.Services)
	}
	if !tech.IsAvailable || tech.Rating != 0 {
		t.Errorf("new profile should be available and unrated, got %+v", tech)
	}

	if _, err := svc.CreateProfile(ctx, "u-tech", models.TechnicianProfile{Services: []string{"peinture"}}); !errors.Is(err, models.ErrConflict) {
		t.Errorf("second profile: got %v, want conflict", err)
	}
}

func TestCreateProfileRejections(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		p      models.TechnicianProfile
		want   error
	}{
		{"unknown user", "u-9", models.TechnicianProfile{Services: []string{"peinture"}}, models.ErrNotFound},
		{"client account", "u-client", models.TechnicianProfile{Services: []string{"peinture"}}, models.ErrConflict},
		{"no service", "u-tech", models.TechnicianProfile{}, models.ErrValidation},
		{"unknown service", "u-tech", models.TechnicianProfile{Services: []string{"astrologie"}}, models.ErrValidation},
		{"negative rate", "u-tech", models.TechnicianProfile{Services: []string{"peinture"}, HourlyRate: -1}, models.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t)
			if _, err := svc.CreateProfile(context.Background(), tt.userID, tt.p); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUpdateProfileKeepsDerivedFields(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	tech, err := svc.CreateProfile(ctx, "u-tech", models.TechnicianProfile{Services: []string{"plomberie"}})
	if err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	if err := svc.Technicians.SetRating(ctx, tech.ID, models.RatingSummary{Rating: 4.5, ReviewCount: 2}); err != nil {
		t.Fatalf("SetRating: %v", err)
	}

	rate := 220.0
	city := "Rabat"
	updated, err := svc.UpdateProfile(ctx, tech.ID, "u-tech", models.TechnicianUpdate{HourlyRate: &rate, City: &city})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.HourlyRate != 220 || updated.City != "Rabat" {
		t.Errorf("update not applied: %+v", updated)
	}
	if updated.Rating != 4.5 || updated.ReviewCount != 2 {
		t.Errorf("derived rating changed: %.2f (%d)", updated.Rating, updated.ReviewCount)
	}

	if _, err := svc.UpdateProfile(ctx, tech.ID, "u-client", models.TechnicianUpdate{City: &city}); !errors.Is(err, models.ErrConflict) {
		t.Errorf("update by another user: got %v, want conflict", err)
	}
	empty := " "
	if _, err := svc.UpdateProfile(ctx, tech.ID, "u-tech", models.TechnicianUpdate{Name: &empty}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("blank name: got %v, want validation", err)
	}
}

func TestAvailabilityAndLocation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	tech, err := svc.CreateProfile(ctx, "u-tech", models.TechnicianProfile{Services: []string{"plomberie"}})
	if err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}

	off, err := svc.SetAvailability(ctx, tech.ID, "u-tech", false)
	if err != nil {
		t.Fatalf("SetAvailability: %v", err)
	}
	if off.IsAvailable {
		t.Errorf("technician still available")
	}

	moved, err := svc.UpdateLocation(ctx, tech.ID, "u-tech", models.LocationUpdate{Lat: 33.5731, Lng: -7.5898})
	if err != nil {
		t.Fatalf("UpdateLocation: %v", err)
	}
	if !moved.Location.Valid() || moved.Location.Lat() != 33.5731 || moved.Location.Lng() != -7.5898 {
		t.Errorf("unexpected location %+v", moved.Location)
	}
	if _, err := svc.UpdateLocation(ctx, tech.ID, "u-tech", models.LocationUpdate{Lat: 120, Lng: 0}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("latitude 120: got %v, want validation", err)
	}
}

func TestSearchAndNearby(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	for _, tech := range []models.Technician{
		{ID: "t-casa-1", Name: "A", Services: []string{models.ServicePlumbing}, City: "Casablanca", Rating: 4.2, IsAvailable: true},
		{ID: "t-casa-2", Name: "B", Services: []string{models.ServicePlumbing}, City: "Casablanca", Rating: 4.8, IsAvailable: true},
		{ID: "t-casa-3", Name: "C", Services: []string{models.ServicePlumbing}, City: "Casablanca", Rating: 5, IsAvailable: false},
		{ID: "t-rabat", Name: "D", Services: []string{models.ServiceElectrical}, City: "Rabat", Rating: 3.9, IsAvailable: true},
	} {
		tech := tech
		if err := svc.Technicians.Create(ctx, &tech); err != nil {
			t.Fatalf("seed technician: %v", err)
		}
		if err := svc.Technicians.SetRating(ctx, tech.ID, models.RatingSummary{Rating: tech.Rating, ReviewCount: 1}); err != nil {
			t.Fatalf("SetRating: %v", err)
		}
	}

	found, err := svc.Search(ctx, models.TechnicianSearch{Service: "Plomberie", City: "casablanca", AvailableOnly: true})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(found) != 2 || found[0].ID != "t-casa-2" {
		t.Errorf("got %+v", found)
	}
	if _, err := svc.Search(ctx, models.TechnicianSearch{MinRating: 7}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("min rating 7: got %v, want validation", err)
	}

	near, err := svc.Nearby(ctx, models.NearbyQuery{Service: "plomberie", City: "Casablanca"})
	if err != nil {
		t.Fatalf("Nearby: %v", err)
	}
	if len(near) != 2 || near[0].Technician.ID != "t-casa-2" {
		t.Errorf("unexpected ranking %+v", near)
	}

	// No electrician in Casablanca: the listing widens to the country.
	wide, err := svc.Nearby(ctx, models.NearbyQuery{Service: "electricite", City: "Casablanca"})
	if err != nil {
		t.Fatalf("Nearby: %v", err)
	}
	if len(wide) != 1 || wide[0].Technician.ID != "t-rabat" {
		t.Errorf("unexpected widened listing %+v", wide)
	}

	if _, err := svc.Nearby(ctx, models.NearbyQuery{Service: "astrologie", City: "Casablanca"}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("unknown service: got %v, want validation", err)
	}
}
