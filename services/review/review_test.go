package review

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"m3allem/database/repository"
	"m3allem/models"
	"m3allem/services/notification/mocks"
	"m3allem/utils"

	"go.uber.org/mock/gomock"
)

func newTestService(t *testing.T) (*DefaultReviewService, *repository.Store) {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()
	for _, tech := range []models.Technician{
		{ID: "tech-1", UserID: "u-tech-1", Name: "Youssef", Services: []string{models.ServicePlumbing}, City: "Casablanca", IsAvailable: true},
		{ID: "tech-2", UserID: "u-tech-2", Name: "Hamid", Services: []string{models.ServiceElectrical}, City: "Rabat", IsAvailable: true},
	} {
		tech := tech
		if err := store.Technicians.Create(ctx, &tech); err != nil {
			t.Fatalf("seed technician: %v", err)
		}
	}
	for _, b := range []models.Booking{
		{ID: "bk-done", JobID: "job-1", ClientID: "client-1", TechnicianID: "tech-1", Status: models.BookingCompleted},
		{ID: "bk-open", JobID: "job-2", ClientID: "client-1", TechnicianID: "tech-1", Status: models.BookingAccepted},
	} {
		b := b
		if err := store.Bookings.Create(ctx, &b); err != nil {
			t.Fatalf("seed booking: %v", err)
		}
	}
	svc := NewDefaultReviewService(store, nil,
		utils.NewFixedClock(time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)),
		utils.SequentialIDs("rev"), nil)
	return svc, store
}

func TestCreateReviewVerifiedFromCompletedBooking(t *testing.T) {
	svc, store := newTestService(t)
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotificationService(ctrl)
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n models.Notification) (*models.Notification, error) {
			if n.UserID != "u-tech-1" || n.Type != models.NotifyNewReview {
				t.Errorf("unexpected notification %+v", n)
			}
			return &n, nil
		})
	svc.Notifier = notifier

	r, err := svc.CreateReview(context.Background(), models.ReviewInput{
		TechnicianID: "tech-1", ClientID: "client-1", BookingID: "bk-done",
		Rating: 4, Comment: "  Travail propre  ", PunctualityRating: 5,
	})
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}
	if !r.IsVerified || r.Comment != "Travail propre" || r.ID != "rev-1" {
		t.Errorf("unexpected review %+v", r)
	}
	tech, _ := store.Technicians.GetByID(context.Background(), "tech-1")
	if tech.Rating != 4 || tech.ReviewCount != 1 {
		t.Errorf("technician rating %.2f (%d reviews), want 4 (1)", tech.Rating, tech.ReviewCount)
	}

	_, err = svc.CreateReview(context.Background(), models.ReviewInput{
		TechnicianID: "tech-1", ClientID: "client-1", BookingID: "bk-done", Rating: 5,
	})
	if !errors.Is(err, models.ErrConflict) {
		t.Errorf("second review of a booking: got %v, want conflict", err)
	}
}

func TestCreateReviewRejections(t *testing.T) {
	tests := []struct {
		name string
		in   models.ReviewInput
		want error
	}{
		{"rating too high", models.ReviewInput{TechnicianID: "tech-1", ClientID: "client-1", Rating: 6}, models.ErrValidation},
		{"rating missing", models.ReviewInput{TechnicianID: "tech-1", ClientID: "client-1"}, models.ErrValidation},
		{"bad sub-rating", models.ReviewInput{TechnicianID: "tech-1", ClientID: "client-1", Rating: 3, ValueRating: 9}, models.ErrValidation},
		{"no technician", models.ReviewInput{ClientID: "client-1", Rating: 3}, models.ErrValidation},
		{"no client", models.ReviewInput{TechnicianID: "tech-1", Rating: 3}, models.ErrValidation},
		{"unknown technician", models.ReviewInput{TechnicianID: "tech-9", ClientID: "client-1", Rating: 3}, models.ErrNotFound},
		{"unknown booking", models.ReviewInput{TechnicianID: "tech-1", ClientID: "client-1", BookingID: "bk-9", Rating: 3}, models.ErrNotFound},
		{"booking not completed", models.ReviewInput{TechnicianID: "tech-1", ClientID: "client-1", BookingID: "bk-open", Rating: 3}, models.ErrConflict},
		{"booking of another pair", models.ReviewInput{TechnicianID: "tech-2", ClientID: "client-1", BookingID: "bk-done", Rating: 3}, models.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			if _, err := svc.CreateReview(context.Background(), tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUpdateReviewRecomputesRating(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	first, err := svc.CreateReview(ctx, models.ReviewInput{TechnicianID: "tech-1", ClientID: "client-1", Rating: 2})
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}
	if _, err := svc.CreateReview(ctx, models.ReviewInput{TechnicianID: "tech-1", ClientID: "client-2", Rating: 5}); err != nil {
		t.Fatalf("CreateReview: %v", err)
	}

	if _, err := svc.UpdateReview(ctx, first.ID, "client-2", models.ReviewUpdate{}); !errors.Is(err, models.ErrConflict) {
		t.Errorf("editing another client's review: got %v, want conflict", err)
	}
	bad := 0
	if _, err := svc.UpdateReview(ctx, first.ID, "client-1", models.ReviewUpdate{Rating: &bad}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("rating 0: got %v, want validation", err)
	}

	rating := 4
	updated, err := svc.UpdateReview(ctx, first.ID, "client-1", models.ReviewUpdate{Rating: &rating})
	if err != nil {
		t.Fatalf("UpdateReview: %v", err)
	}
	if updated.Rating != 4 {
		t.Errorf("got rating %d, want 4", updated.Rating)
	}
	tech, _ := store.Technicians.GetByID(ctx, "tech-1")
	if tech.Rating != 4.5 || tech.ReviewCount != 2 {
		t.Errorf("technician rating %.2f (%d reviews), want 4.5 (2)", tech.Rating, tech.ReviewCount)
	}
}

func TestRespond(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	r, err := svc.CreateReview(ctx, models.ReviewInput{TechnicianID: "tech-1", ClientID: "client-1", Rating: 5})
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}

	if _, err := svc.Respond(ctx, r.ID, "u-tech-1", "   "); !errors.Is(err, models.ErrValidation) {
		t.Errorf("empty response: got %v, want validation", err)
	}
	if _, err := svc.Respond(ctx, r.ID, "u-tech-2", "Merci"); !errors.Is(err, models.ErrConflict) {
		t.Errorf("response by another technician: got %v, want conflict", err)
	}
	got, err := svc.Respond(ctx, r.ID, "u-tech-1", "Merci beaucoup")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if got.Response != "Merci beaucoup" || got.RespondedAt == nil {
		t.Errorf("unexpected review %+v", got)
	}

	list, err := svc.ListForTechnician(ctx, "tech-1")
	if err != nil {
		t.Fatalf("ListForTechnician: %v", err)
	}
	if len(list) != 1 || list[0].Response != "Merci beaucoup" {
		t.Errorf("unexpected list %+v", list)
	}
}

func TestConcurrentReviewsKeepRatingConsistent(t *testing.T) {
	svc, store := newTestService(t)
	svc.NewID = utils.NewID
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rating := 3
			if i%2 == 0 {
				rating = 5
			}
			if _, err := svc.CreateReview(ctx, models.ReviewInput{
				TechnicianID: "tech-2", ClientID: fmt.Sprintf("client-%d", i), Rating: rating,
			}); err != nil {
				t.Errorf("CreateReview: %v", err)
			}
		}(i)
	}
	wg.Wait()

	tech, _ := store.Technicians.GetByID(ctx, "tech-2")
	if tech.ReviewCount != 20 || tech.Rating != 4 {
		t.Errorf("technician rating %.2f (%d reviews), want 4 (20)", tech.Rating, tech.ReviewCount)
	}
}
