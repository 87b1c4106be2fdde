package pricing

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"m3allem/models"

	"go.uber.org/zap"
)

type fakeDemand struct {
	count int
	err   error
}

func (f fakeDemand) CountPending(ctx context.Context, service, city, excludeID string) (int, error) {
	return f.count, f.err
}

type fakeTechnicians map[string]models.Technician

func (f fakeTechnicians) GetByID(ctx context.Context, id string) (*models.Technician, error) {
	t, ok := f[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &t, nil
}

// 2026-03-11 is a Wednesday, 2026-03-14 a Saturday.
const (
	weekday  = "2026-03-11"
	saturday = "2026-03-14"
)

func TestEstimatePriceUrgentSimplePlumbing(t *testing.T) {
	e := NewEstimator(nil, nil, zap.NewNop())
	res := e.EstimatePrice(context.Background(), models.PricingParams{
		ServiceType:   "Plomberie",
		City:          "Casablanca",
		Urgency:       "urgent",
		ScheduledDate: weekday,
		ScheduledTime: "10:00",
		Complexity:    "simple",
	})

	if res.BasePrice != 250 {
		t.Errorf("base = %v, want 250", res.BasePrice)
	}
	if res.FinalPrice != 319 {
		t.Errorf("final = %v, want 319", res.FinalPrice)
	}
	if res.Savings != 37.5 || res.Breakdown.Discount != 37.5 {
		t.Errorf("savings = %v / %v, want 37.5", res.Savings, res.Breakdown.Discount)
	}
	if res.Breakdown.Labor != 319 {
		t.Errorf("labor = %v, want 319", res.Breakdown.Labor)
	}
	if len(res.Multipliers) != 2 || res.Multipliers[0].Factor != "urgency" || res.Multipliers[1].Factor != "complexity" {
		t.Errorf("unexpected steps: %+v", res.Multipliers)
	}
	if res.Confidence != 0.85 || res.Currency != "MAD" || res.Unit != "intervention" {
		t.Errorf("unexpected metadata: %+v", res)
	}
	if res.Explanation == "" {
		t.Error("expected an explanation")
	}
}

func TestEstimatePriceSteps(t *testing.T) {
	techs := fakeTechnicians{
		"star":   {ID: "star", Rating: 4.9},
		"rookie": {ID: "rookie", Rating: 4.2},
	}
	tests := []struct {
		name      string
		demand    DemandCounter
		params    models.PricingParams
		final     float64
		surge     float64
		transport float64
		premium   float64
		factors   []string
	}{
		{
			name:    "unknown service falls back to default rate",
			params:  models.PricingParams{ServiceType: "astrologie", ScheduledDate: weekday, ScheduledTime: "10:00"},
			final:   250,
			factors: nil,
		},
		{
			name:    "weekend",
			params:  models.PricingParams{ServiceType: "plomberie", ScheduledDate: saturday, ScheduledTime: "10:00"},
			final:   300,
			factors: []string{"weekend"},
		},
		{
			name:    "weekend night stacks",
			params:  models.PricingParams{ServiceType: "plomberie", ScheduledDate: saturday, ScheduledTime: "22:30"},
			final:   390,
			factors: []string{"weekend", "night"},
		},
		{
			name:    "early morning counts as night",
			params:  models.PricingParams{ServiceType: "plomberie", ScheduledDate: weekday, ScheduledTime: "07:59"},
			final:   325,
			factors: []string{"night"},
		},
		{
			name:    "surge above ten pending jobs",
			demand:  fakeDemand{count: 14},
			params:  models.PricingParams{ServiceType: "plomberie", City: "Rabat", ScheduledDate: weekday, ScheduledTime: "10:00"},
			final:   300,
			surge:   50,
			factors: []string{"surge"},
		},
		{
			name:    "surge capped at fifty percent",
			demand:  fakeDemand{count: 40},
			params:  models.PricingParams{ServiceType: "plomberie", City: "Rabat", ScheduledDate: weekday, ScheduledTime: "10:00"},
			final:   375,
			surge:   125,
			factors: []string{"surge"},
		},
		{
			name:    "no surge at exactly ten",
			demand:  fakeDemand{count: 10},
			params:  models.PricingParams{ServiceType: "plomberie", City: "Rabat", ScheduledDate: weekday, ScheduledTime: "10:00"},
			final:   250,
			factors: nil,
		},
		{
			name:    "failing demand counter skips surge",
			demand:  fakeDemand{err: errors.New("mongo down")},
			params:  models.PricingParams{ServiceType: "plomberie", City: "Rabat", ScheduledDate: weekday, ScheduledTime: "10:00"},
			final:   250,
			factors: nil,
		},
		{
			name:      "distance beyond ten km",
			params:    models.PricingParams{ServiceType: "plomberie", ScheduledDate: weekday, ScheduledTime: "10:00", DistanceKm: 15},
			final:     300,
			transport: 50,
			factors:   []string{"distance"},
		},
		{
			name:    "premium technician",
			params:  models.PricingParams{ServiceType: "plomberie", ScheduledDate: weekday, ScheduledTime: "10:00", TechnicianID: "star"},
			final:   288,
			premium: 37.5,
			factors: []string{"premium"},
		},
		{
			name:    "regular technician",
			params:  models.PricingParams{ServiceType: "plomberie", ScheduledDate: weekday, ScheduledTime: "10:00", TechnicianID: "rookie"},
			final:   250,
			factors: nil,
		},
		{
			name:    "unknown technician is ignored",
			params:  models.PricingParams{ServiceType: "plomberie", ScheduledDate: weekday, ScheduledTime: "10:00", TechnicianID: "ghost"},
			final:   250,
			factors: nil,
		},
		{
			name:    "complex job",
			params:  models.PricingParams{ServiceType: "peinture", ScheduledDate: weekday, ScheduledTime: "10:00", Complexity: "complex"},
			final:   275,
			factors: []string{"complexity"},
		},
		{
			name:    "air conditioning in summer",
			params:  models.PricingParams{ServiceType: "climatisation", ScheduledDate: "2026-07-15", ScheduledTime: "10:00"},
			final:   420,
			factors: []string{"season"},
		},
		{
			name:    "plumbing in winter",
			params:  models.PricingParams{ServiceType: "plomberie", ScheduledDate: "2026-01-14", ScheduledTime: "10:00"},
			final:   288,
			factors: []string{"season"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEstimator(tt.demand, techs, zap.NewNop())
			res := e.EstimatePrice(context.Background(), tt.params)

			if res.FinalPrice != tt.final {
				t.Errorf("final = %v, want %v", res.FinalPrice, tt.final)
			}
			if res.Breakdown.Surge != tt.surge || res.Breakdown.Transport != tt.transport || res.Breakdown.Premium != tt.premium {
				t.Errorf("breakdown = %+v", res.Breakdown)
			}
			var got []string
			for _, m := range res.Multipliers {
				got = append(got, m.Factor)
			}
			if !reflect.DeepEqual(got, tt.factors) {
				t.Errorf("factors = %v, want %v", got, tt.factors)
			}
			b := res.Breakdown
			if sum := b.Labor + b.Transport + b.Surge + b.Premium; sum != res.FinalPrice {
				t.Errorf("breakdown sums to %v, final is %v", sum, res.FinalPrice)
			}
		})
	}
}

func TestEstimatePriceUrgencyMonotonic(t *testing.T) {
	e := NewEstimator(fakeDemand{count: 12}, fakeTechnicians{"star": {ID: "star", Rating: 5}}, zap.NewNop())
	services := []string{"plomberie", "climatisation", "inconnu"}
	dates := []string{weekday, saturday, "2026-07-15", "2026-12-24"}
	times := []string{"09:00", "20:00", ""}
	complexities := []string{"", "simple", "complex"}

	for _, s := range services {
		for _, d := range dates {
			for _, tm := range times {
				for _, c := range complexities {
					p := models.PricingParams{ServiceType: s, City: "Fès", ScheduledDate: d, ScheduledTime: tm,
						Complexity: c, DistanceKm: 25, TechnicianID: "star"}
					p.Urgency = "urgent"
					urgent := e.EstimatePrice(context.Background(), p).FinalPrice
					p.Urgency = "scheduled"
					scheduled := e.EstimatePrice(context.Background(), p).FinalPrice
					p.Urgency = "flexible"
					flexible := e.EstimatePrice(context.Background(), p).FinalPrice
					if urgent < scheduled || scheduled < flexible {
						t.Fatalf("%+v: urgent=%v scheduled=%v flexible=%v", p, urgent, scheduled, flexible)
					}
				}
			}
		}
	}
}

func TestEstimatePriceIdempotent(t *testing.T) {
	e := NewEstimator(fakeDemand{count: 15}, fakeTechnicians{"t": {ID: "t", Rating: 4.8}}, zap.NewNop())
	p := models.PricingParams{
		ServiceType: "electricite", City: "Tanger", Urgency: "urgent",
		ScheduledDate: saturday, ScheduledTime: "19:15", TechnicianID: "t", DistanceKm: 12.5, Complexity: "complex",
	}
	first := e.EstimatePrice(context.Background(), p)
	second := e.EstimatePrice(context.Background(), p)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ:\n%+v\n%+v", first, second)
	}
}

func TestEstimatePriceIgnoresBadDates(t *testing.T) {
	e := NewEstimator(nil, nil, zap.NewNop())
	res := e.EstimatePrice(context.Background(), models.PricingParams{
		ServiceType: "plomberie", ScheduledDate: "14/03/2026", ScheduledTime: "late",
	})
	if res.FinalPrice != 250 || len(res.Multipliers) != 0 {
		t.Fatalf("unexpected result for unparsable schedule: %+v", res)
	}
}
