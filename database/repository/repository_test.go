package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"m3allem/models"
)

func seedTechnician(t *testing.T, s *Store, id string) {
	t.Helper()
	err := s.Technicians.Create(context.Background(), &models.Technician{
		ID:       id,
		UserID:   "user-" + id,
		Name:     "Tech " + id,
		City:     "Casablanca",
		Services: []string{models.ServicePlumbing},
	})
	if err != nil {
		t.Fatalf("seed technician: %v", err)
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.Jobs.GetByID(ctx, "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("jobs: expected ErrNotFound, got %v", err)
	}
	if _, err := s.Bookings.GetByID(ctx, "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("bookings: expected ErrNotFound, got %v", err)
	}
	if _, err := s.Payments.GetByGatewayRef(ctx, ""); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("payments: expected ErrNotFound, got %v", err)
	}
	if err := s.Notifications.MarkRead(ctx, "u1", "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("notifications: expected ErrNotFound, got %v", err)
	}
}

func TestMemoryUserEmailUniqueness(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Users.Create(ctx, &models.User{ID: "u1", Email: "Amine@Example.ma"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := s.Users.Create(ctx, &models.User{ID: "u2", Email: " amine@example.ma"})
	if !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate email, got %v", err)
	}
	u, err := s.Users.GetByEmail(ctx, "AMINE@example.ma")
	if err != nil || u.ID != "u1" {
		t.Fatalf("GetByEmail = %v, %v", u, err)
	}
}

func TestMemoryUserCountByRole(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for _, u := range []models.User{
		{ID: "u1", Email: "a@example.ma", Role: models.RoleClient},
		{ID: "u2", Email: "b@example.ma", Role: models.RoleClient},
		{ID: "u3", Email: "c@example.ma", Role: models.RoleTechnician},
	} {
		u := u
		if err := s.Users.Create(ctx, &u); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := s.Users.Delete(ctx, "u2"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	counts, err := s.Users.CountByRole(ctx)
	if err != nil {
		t.Fatalf("CountByRole: %v", err)
	}
	if counts[models.RoleClient] != 1 || counts[models.RoleTechnician] != 1 || len(counts) != 2 {
		t.Fatalf("unexpected counts %v", counts)
	}
}

func TestTechnicianUpdateKeepsDerivedFields(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	seedTechnician(t, s, "t1")

	if err := s.Technicians.SetRating(ctx, "t1", models.RatingSummary{Rating: 4.5, ReviewCount: 2}); err != nil {
		t.Fatalf("SetRating: %v", err)
	}
	if err := s.Technicians.IncrementCompletedJobs(ctx, "t1"); err != nil {
		t.Fatalf("IncrementCompletedJobs: %v", err)
	}

	tech, _ := s.Technicians.GetByID(ctx, "t1")
	tech.Rating = 1
	tech.ReviewCount = 99
	tech.CompletedJobs = 0
	tech.Phone = "0600000000"
	if err := s.Technicians.Update(ctx, tech); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, _ := s.Technicians.GetByID(ctx, "t1")
	if got.Rating != 4.5 || got.ReviewCount != 2 || got.CompletedJobs != 1 {
		t.Errorf("derived fields overwritten: %+v", got)
	}
	if got.Phone != "0600000000" {
		t.Errorf("expected phone to change, got %q", got.Phone)
	}
}

func TestBookingUpdateKeepsMatchFields(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	b := &models.Booking{ID: "b1", JobID: "j1", TechnicianID: "t1", MatchScore: 82, Status: models.BookingPending}
	if err := s.Bookings.Create(ctx, b); err != nil {
		t.Fatalf("create: %v", err)
	}

	changed := *b
	changed.Status = models.BookingAccepted
	changed.MatchScore = 10
	changed.TechnicianID = "t2"
	if err := s.Bookings.Update(ctx, &changed); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := s.Bookings.GetByID(ctx, "b1")
	if got.Status != models.BookingAccepted {
		t.Errorf("status = %s", got.Status)
	}
	if got.MatchScore != 82 || got.TechnicianID != "t1" {
		t.Errorf("match fields changed: %+v", got)
	}
}

func TestReviewRecomputeUnderConcurrency(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	seedTechnician(t, s, "t1")

	ratings := []int{5, 4, 3, 5, 4, 2, 5, 5, 4, 3}
	var wg sync.WaitGroup
	for i, r := range ratings {
		wg.Add(1)
		go func(i, r int) {
			defer wg.Done()
			review := &models.Review{
				ID:           "r" + string(rune('a'+i)),
				TechnicianID: "t1",
				Rating:       r,
				CreatedAt:    time.Unix(int64(i), 0),
			}
			if _, err := s.Reviews.CreateAndRecompute(ctx, review); err != nil {
				t.Errorf("create review: %v", err)
			}
		}(i, r)
	}
	wg.Wait()

	tech, _ := s.Technicians.GetByID(ctx, "t1")
	if tech.ReviewCount != len(ratings) {
		t.Errorf("reviewCount = %d, want %d", tech.ReviewCount, len(ratings))
	}
	if tech.Rating != 4 {
		t.Errorf("rating = %v, want 4", tech.Rating)
	}
}

func TestReviewForUnknownTechnician(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Reviews.CreateAndRecompute(context.Background(), &models.Review{ID: "r1", TechnicianID: "ghost", Rating: 5})
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	reviews, _ := s.Reviews.ListByTechnician(context.Background(), "ghost")
	if len(reviews) != 0 {
		t.Errorf("review stored despite failure: %v", reviews)
	}
}

func TestBookingStats(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for i, st := range []models.BookingStatus{models.BookingCompleted, models.BookingCompleted, models.BookingPending, models.BookingCancelled} {
		b := &models.Booking{ID: string(rune('a' + i)), TechnicianID: "t1", Status: st}
		if err := s.Bookings.Create(ctx, b); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	stats, err := s.Bookings.StatsFor(ctx, []string{"t1", "t2"})
	if err != nil {
		t.Fatalf("StatsFor: %v", err)
	}
	got := stats["t1"]
	if got.Total != 4 || got.Completed != 2 || got.Active != 1 {
		t.Errorf("stats = %+v", got)
	}
	if _, ok := stats["t2"]; ok {
		t.Errorf("expected no entry for technician without bookings")
	}
}
