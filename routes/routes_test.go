package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"m3allem/database/repository"
	"m3allem/handlers"
	"m3allem/models"
	"m3allem/services/admin"
	"m3allem/services/booking"
	"m3allem/services/intelligence"
	"m3allem/services/matching"
	"m3allem/services/notification"
	"m3allem/services/payment"
	"m3allem/services/pricing"
	"m3allem/services/review"
	"m3allem/services/technician"
	"m3allem/services/user"
	"m3allem/utils"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	store  *repository.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := repository.NewMemoryStore()
	clock := utils.SystemClock{}

	notifier, err := notification.NewDefaultNotificationService(store.Notifications, store.Users, nil, clock, utils.SequentialIDs("ntf"), nil)
	if err != nil {
		t.Fatalf("notifier: %v", err)
	}
	estimator := pricing.NewEstimator(store.Jobs, store.Technicians, nil)
	bookingSvc := booking.NewDefaultBookingService(
		store,
		estimator,
		matching.NewMatchingService(store.Technicians, store.Bookings, nil, 0, nil),
		intelligence.NewRuleAnalyzer(),
		notifier,
		nil,
		clock,
		utils.SequentialIDs("id"),
		nil,
	)
	paymentSvc := payment.NewDefaultPaymentService(store.Payments, bookingSvc, store.Technicians,
		[]payment.Gateway{&payment.CashGateway{}}, notifier, "", clock, utils.SequentialIDs("pay"), nil)

	hb := &handlers.HandlerBundle{
		Users:         handlers.NewUserHandler(user.NewDefaultUserService(store, time.Hour, clock, utils.SequentialIDs("u"), nil)),
		Pricing:       handlers.NewPricingHandler(estimator),
		Bookings:      handlers.NewBookingHandler(bookingSvc),
		Analysis:      handlers.NewAnalysisHandler(intelligence.NewFallbackAnalyzer(nil, nil), nil, nil),
		Payments:      handlers.NewPaymentHandler(paymentSvc),
		Reviews:       handlers.NewReviewHandler(review.NewDefaultReviewService(store, notifier, clock, utils.SequentialIDs("rev"), nil)),
		Technicians:   handlers.NewTechnicianHandler(technician.NewDefaultTechnicianService(store.Technicians, store.Users, clock, utils.SequentialIDs("tech"), nil)),
		Notifications: handlers.NewNotificationHandler(notifier),
		Admin:         handlers.NewAdminHandler(admin.NewDefaultAdminService(store, nil)),
	}
	r := gin.New()
	RegisterRoutes(r, hb)
	return &testServer{t: t, router: r, store: store}
}

// do sends body as JSON and decodes the answer into out when out is not nil.
func (s *testServer) do(method, path, token string, body any, out any) int {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if out != nil && w.Code < 300 {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			s.t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code
}

func (s *testServer) register(name, email string, role models.Role) models.AuthResponse {
	s.t.Helper()
	var auth models.AuthResponse
	code := s.do(http.MethodPost, "/api/auth/register", "", models.UserRegistration{
		Name: name, Email: email, Phone: "0612345678", City: "Casablanca", Password: "motdepasse1", Role: role,
	}, &auth)
	if code != http.StatusCreated {
		s.t.Fatalf("register %s: status %d", email, code)
	}
	return auth
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	var body map[string]any
	if code := s.do(http.MethodGet, "/health", "", nil, &body); code != http.StatusOK {
		t.Fatalf("health status %d", code)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected health body %v", body)
	}
}

func TestPublicPricing(t *testing.T) {
	s := newTestServer(t)

	var quick models.QuickEstimate
	code := s.do(http.MethodPost, "/api/pricing/quick", "", models.QuickEstimateParams{
		Service: models.ServicePlumbing, City: "Casablanca", Urgency: models.UrgencyNormal,
	}, &quick)
	if code != http.StatusOK {
		t.Fatalf("quick estimate status %d", code)
	}
	if !(quick.MinCost <= quick.LikelyCost && quick.LikelyCost <= quick.MaxCost) || quick.Currency != models.CurrencyMAD {
		t.Fatalf("unexpected quick estimate %+v", quick)
	}

	if code := s.do(http.MethodPost, "/api/pricing/quick", "", map[string]string{"city": "Rabat"}, nil); code != http.StatusBadRequest {
		t.Fatalf("missing service: expected 400, got %d", code)
	}

	var estimate models.PricingResult
	if code := s.do(http.MethodPost, "/api/pricing/estimate", "", models.PricingParams{City: "Rabat"}, &estimate); code != http.StatusOK {
		t.Fatalf("estimate without a service: expected 200, got %d", code)
	}
	if estimate.BasePrice != models.DefaultBaseRate {
		t.Fatalf("basePrice = %v, want the default %v", estimate.BasePrice, models.DefaultBaseRate)
	}
	if code := s.do(http.MethodPost, "/api/pricing/estimate", "", models.PricingParams{ServiceType: models.ServicePlumbing, DistanceKm: -1}, nil); code != http.StatusBadRequest {
		t.Fatalf("negative distance: expected 400, got %d", code)
	}
}

func TestAuthorization(t *testing.T) {
	s := newTestServer(t)
	client := s.register("Salma", "salma@example.ma", models.RoleClient)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"no token", http.MethodPost, "/api/jobs", "", http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/api/bookings", "not-a-jwt", http.StatusUnauthorized},
		{"client cannot accept", http.MethodPost, "/api/bookings/b-1/accept", client.Token, http.StatusForbidden},
		{"client cannot refund", http.MethodPost, "/api/payments/p-1/refund", client.Token, http.StatusForbidden},
		{"client cannot see overview", http.MethodGet, "/api/admin/overview", client.Token, http.StatusForbidden},
		{"legal is public", http.MethodGet, "/api/legal?role=client", "", http.StatusOK},
		{"unknown booking", http.MethodGet, "/api/bookings/missing", client.Token, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := s.do(tt.method, tt.path, tt.token, nil, nil); code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, code)
			}
		})
	}

	if code := s.do(http.MethodPost, "/api/auth/login", "", models.LoginRequest{Email: "salma@example.ma", Password: "wrong-password"}, nil); code != http.StatusUnauthorized {
		t.Fatalf("bad password: expected 401, got %d", code)
	}
}

func TestJobToReviewFlow(t *testing.T) {
	s := newTestServer(t)
	client := s.register("Salma", "salma@example.ma", models.RoleClient)
	techUser := s.register("Youssef", "youssef@example.ma", models.RoleTechnician)

	var tech models.Technician
	code := s.do(http.MethodPost, "/api/technicians", techUser.Token, models.TechnicianProfile{
		Services: []string{models.ServicePlumbing}, HourlyRate: 180, YearsExperience: 6,
	}, &tech)
	if code != http.StatusCreated {
		t.Fatalf("create profile status %d", code)
	}
	if tech.UserID != techUser.User.ID || !tech.IsAvailable || tech.City != "Casablanca" {
		t.Fatalf("unexpected profile %+v", tech)
	}

	var nearby []models.MatchResult
	if code := s.do(http.MethodGet, "/api/technicians/nearby?service="+models.ServicePlumbing+"&city=Casablanca", "", nil, &nearby); code != http.StatusOK {
		t.Fatalf("nearby status %d", code)
	}
	if len(nearby) != 1 || nearby[0].Technician.ID != tech.ID {
		t.Fatalf("expected the new plumber nearby, got %+v", nearby)
	}

	var created models.JobCreation
	code = s.do(http.MethodPost, "/api/jobs", client.Token, models.JobRequest{
		Description: "Fuite d'eau sous l'évier de la cuisine",
		Service:     models.ServicePlumbing,
		City:        "Casablanca",
	}, &created)
	if code != http.StatusCreated {
		t.Fatalf("create job status %d", code)
	}
	if created.Job.ClientID != client.User.ID || created.Job.Status != models.JobPending {
		t.Fatalf("unexpected job %+v", created.Job)
	}

	var b models.Booking
	code = s.do(http.MethodPost, "/api/bookings", client.Token, models.BookingRequest{JobID: created.Job.ID, TechnicianID: tech.ID}, &b)
	if code != http.StatusCreated {
		t.Fatalf("create booking status %d", code)
	}
	if b.Status != models.BookingPending || b.ClientID != client.User.ID {
		t.Fatalf("unexpected booking %+v", b)
	}

	for _, step := range []struct {
		action string
		want   models.BookingStatus
	}{
		{"accept", models.BookingAccepted},
		{"start", models.BookingInProgress},
		{"complete", models.BookingCompleted},
	} {
		var got models.Booking
		if code := s.do(http.MethodPost, "/api/bookings/"+b.ID+"/"+step.action, techUser.Token, nil, &got); code != http.StatusOK {
			t.Fatalf("%s status %d", step.action, code)
		}
		if got.Status != step.want {
			t.Fatalf("%s: expected %s, got %s", step.action, step.want, got.Status)
		}
	}
	if code := s.do(http.MethodPost, "/api/bookings/"+b.ID+"/start", techUser.Token, nil, nil); code != http.StatusConflict {
		t.Fatalf("restarting a completed booking: expected 409, got %d", code)
	}

	var r models.Review
	code = s.do(http.MethodPost, "/api/reviews", client.Token, models.ReviewInput{
		TechnicianID: tech.ID, BookingID: b.ID, Rating: 5, Comment: "Travail propre et rapide",
	}, &r)
	if code != http.StatusCreated {
		t.Fatalf("create review status %d", code)
	}
	if !r.IsVerified || r.ClientID != client.User.ID {
		t.Fatalf("unexpected review %+v", r)
	}

	var rated models.Technician
	if code := s.do(http.MethodGet, "/api/technicians/"+tech.ID, "", nil, &rated); code != http.StatusOK {
		t.Fatalf("get technician status %d", code)
	}
	if rated.Rating != 5 || rated.ReviewCount != 1 {
		t.Fatalf("rating not recomputed: %+v", rated)
	}

	var inbox []models.Notification
	if code := s.do(http.MethodGet, "/api/notifications", client.Token, nil, &inbox); code != http.StatusOK {
		t.Fatalf("notifications status %d", code)
	}
	if len(inbox) == 0 {
		t.Fatalf("expected the client to be told about the booking")
	}
	for _, n := range inbox {
		if n.UserID != client.User.ID {
			t.Fatalf("inbox leaked notification %+v", n)
		}
	}
}

func TestCashCheckoutConfirmedByTechnician(t *testing.T) {
	s := newTestServer(t)
	client := s.register("Salma", "salma@example.ma", models.RoleClient)
	techUser := s.register("Youssef", "youssef@example.ma", models.RoleTechnician)

	var tech models.Technician
	s.do(http.MethodPost, "/api/technicians", techUser.Token, models.TechnicianProfile{Services: []string{models.ServicePlumbing}}, &tech)
	var created models.JobCreation
	s.do(http.MethodPost, "/api/jobs", client.Token, models.JobRequest{Description: "Robinet qui goutte", Service: models.ServicePlumbing, City: "Casablanca"}, &created)
	var b models.Booking
	if code := s.do(http.MethodPost, "/api/bookings", client.Token, models.BookingRequest{JobID: created.Job.ID, TechnicianID: tech.ID}, &b); code != http.StatusCreated {
		t.Fatalf("create booking status %d", code)
	}

	var p models.Payment
	if code := s.do(http.MethodPost, "/api/payments/checkout", client.Token, models.CheckoutRequest{BookingID: b.ID, Method: models.MethodCash}, &p); code != http.StatusCreated {
		t.Fatalf("checkout status %d", code)
	}
	if code := s.do(http.MethodPost, "/api/payments/checkout", client.Token, models.CheckoutRequest{BookingID: b.ID, Method: models.MethodCard}, nil); code != http.StatusBadRequest {
		t.Fatalf("card without gateway: expected 400, got %d", code)
	}

	var confirmed models.Payment
	if code := s.do(http.MethodPost, "/api/payments/"+p.ID+"/confirm", techUser.Token, map[string]string{"transactionId": "recu-17"}, &confirmed); code != http.StatusOK {
		t.Fatalf("confirm status %d", code)
	}
	if confirmed.Status != models.PaymentCompleted {
		t.Fatalf("expected completed payment, got %s", confirmed.Status)
	}

	var after models.Booking
	s.do(http.MethodGet, "/api/bookings/"+b.ID, client.Token, nil, &after)
	if after.Status != models.BookingAccepted {
		t.Fatalf("payment should accept the pending booking, got %s", after.Status)
	}
}
