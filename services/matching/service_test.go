package matching

import (
	"context"
	"testing"
	"time"

	"m3allem/database/repository"
	"m3allem/models"

	"go.uber.org/zap"
)

type mapCache struct {
	entries map[string][]models.MatchResult
	gets    int
	hits    int
}

func (c *mapCache) Get(ctx context.Context, key string) ([]models.MatchResult, bool, error) {
	c.gets++
	r, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return r, ok, nil
}

func (c *mapCache) Set(ctx context.Context, key string, results []models.MatchResult, ttl time.Duration) error {
	c.entries[key] = results
	return nil
}

func seedPool(t *testing.T, store *repository.Store, techs ...models.Technician) {
	t.Helper()
	for i := range techs {
		if err := store.Technicians.Create(context.Background(), &techs[i]); err != nil {
			t.Fatalf("seed %s: %v", techs[i].ID, err)
		}
	}
}

func TestMatchForJobFiltersPool(t *testing.T) {
	store := repository.NewMemoryStore()
	seedPool(t, store,
		models.Technician{ID: "t1", City: "Casablanca", Services: []string{"plomberie"}, IsAvailable: true, Rating: 4.5},
		models.Technician{ID: "t2", City: "Casablanca", Services: []string{"plomberie"}, IsAvailable: false, Rating: 5},
		models.Technician{ID: "t3", City: "Casablanca", Services: []string{"peinture"}, IsAvailable: true, Rating: 5},
		models.Technician{ID: "t4", City: "Rabat", Services: []string{"plomberie"}, IsAvailable: true, Rating: 5},
	)
	svc := NewMatchingService(store.Technicians, store.Bookings, nil, 0, zap.NewNop())

	results, err := svc.MatchForJob(context.Background(), models.Job{ID: "j1", Service: "plomberie", City: "casablanca"})
	if err != nil {
		t.Fatalf("MatchForJob: %v", err)
	}
	if len(results) != 1 || results[0].Technician.ID != "t1" {
		t.Fatalf("expected only t1, got %+v", results)
	}
}

func TestMatchForJobWidensToNationwide(t *testing.T) {
	store := repository.NewMemoryStore()
	seedPool(t, store,
		models.Technician{ID: "t1", City: "Rabat", Services: []string{"vitrerie"}, IsAvailable: true},
	)
	svc := NewMatchingService(store.Technicians, store.Bookings, nil, 0, zap.NewNop())

	results, err := svc.MatchForJob(context.Background(), models.Job{ID: "j1", Service: "vitrerie", City: "Oujda"})
	if err != nil {
		t.Fatalf("MatchForJob: %v", err)
	}
	if len(results) != 1 || results[0].EstimatedArrival != "2 heures" {
		t.Fatalf("expected the Rabat technician with an inter-city ETA, got %+v", results)
	}
}

func TestMatchForJobEmptyPool(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewMatchingService(store.Technicians, store.Bookings, nil, 0, zap.NewNop())

	results, err := svc.MatchForJob(context.Background(), models.Job{ID: "j1", Service: "plomberie", City: "Fès"})
	if err != nil {
		t.Fatalf("empty pool should not be an error: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Fatalf("expected empty slice, got %#v", results)
	}
}

func TestMatchForJobUsesBookingStats(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	seedPool(t, store,
		models.Technician{ID: "busy", City: "Casablanca", Services: []string{"plomberie"}, IsAvailable: true, Rating: 4},
		models.Technician{ID: "free", City: "Casablanca", Services: []string{"plomberie"}, IsAvailable: true, Rating: 4},
	)
	for i, st := range []models.BookingStatus{models.BookingAccepted, models.BookingInProgress, models.BookingPending} {
		b := &models.Booking{ID: string(rune('a' + i)), TechnicianID: "busy", Status: st}
		if err := store.Bookings.Create(ctx, b); err != nil {
			t.Fatalf("seed booking: %v", err)
		}
	}
	svc := NewMatchingService(store.Technicians, store.Bookings, nil, 0, zap.NewNop())

	results, err := svc.MatchForJob(ctx, models.Job{ID: "j1", Service: "plomberie", City: "Casablanca"})
	if err != nil {
		t.Fatalf("MatchForJob: %v", err)
	}
	if results[0].Technician.ID != "free" {
		t.Fatalf("technician with active bookings should rank last, got %s first", results[0].Technician.ID)
	}
	if len(results[1].Warnings) == 0 {
		t.Errorf("expected a workload warning on the busy technician")
	}
}

func TestMatchForJobCaches(t *testing.T) {
	store := repository.NewMemoryStore()
	seedPool(t, store,
		models.Technician{ID: "t1", City: "Casablanca", Services: []string{"plomberie"}, IsAvailable: true},
	)
	cache := &mapCache{entries: map[string][]models.MatchResult{}}
	svc := NewMatchingService(store.Technicians, store.Bookings, cache, time.Minute, zap.NewNop())
	job := models.Job{ID: "j1", Service: "plomberie", City: "Casablanca"}

	if _, err := svc.MatchForJob(context.Background(), job); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := svc.MatchForJob(context.Background(), job); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if cache.gets != 2 || cache.hits != 1 {
		t.Errorf("gets=%d hits=%d, want 2 and 1", cache.gets, cache.hits)
	}

	// a rating change must not serve the stale ranking
	if err := store.Technicians.SetRating(context.Background(), "t1", models.RatingSummary{Rating: 5, ReviewCount: 1}); err != nil {
		t.Fatalf("SetRating: %v", err)
	}
	results, _ := svc.MatchForJob(context.Background(), job)
	if cache.hits != 1 || results[0].Technician.Rating != 5 {
		t.Errorf("stale cache entry served: hits=%d rating=%v", cache.hits, results[0].Technician.Rating)
	}
}
