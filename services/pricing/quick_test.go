package pricing

import (
	"strings"
	"testing"

	"m3allem/models"
)

func TestQuickEstimatePlumbingCasablancaNight(t *testing.T) {
	q := QuickEstimate(models.QuickEstimateParams{
		Service:       "plomberie",
		City:          "Casablanca",
		Urgency:       models.UrgencyHigh,
		Complexity:    models.ComplexityModerate,
		ScheduledDate: weekday,
		ScheduledTime: "21:00",
	})
	if q.AdjustedBase != 240 || q.LikelyCost != 340 || q.MinCost != 272 || q.MaxCost != 442 {
		t.Fatalf("got adjusted=%v likely=%v min=%v max=%v", q.AdjustedBase, q.LikelyCost, q.MinCost, q.MaxCost)
	}
	if q.UrgencyFee != 30 || q.ComplexityFee != 30 || q.TimePremium != 40 {
		t.Errorf("fees = %v/%v/%v", q.UrgencyFee, q.ComplexityFee, q.TimePremium)
	}
}

func TestQuickEstimateDefaults(t *testing.T) {
	q := QuickEstimate(models.QuickEstimateParams{Service: "inconnu", City: "Ifrane"})
	// default base 250, city 1.0, normal urgency, moderate complexity
	if q.AdjustedBase != 250 || q.LikelyCost != 280 {
		t.Fatalf("got %+v", q)
	}
	if q.MinCost > q.LikelyCost || q.LikelyCost > q.MaxCost {
		t.Errorf("range out of order: %+v", q)
	}
}

func TestQuickEstimateWeekendNight(t *testing.T) {
	q := QuickEstimate(models.QuickEstimateParams{Service: "Électricité", City: "meknès", ScheduledDate: saturday, ScheduledTime: "23:00",
		Urgency: models.UrgencyEmergency, Complexity: models.ComplexityComplex})
	// round(220*0.95)=209, +80 urgency +80 complexity +60 time
	if q.TimePremium != 60 || q.LikelyCost != 429 {
		t.Fatalf("got time=%v likely=%v", q.TimePremium, q.LikelyCost)
	}
}

func TestEstimateConfidence(t *testing.T) {
	long := strings.Repeat("fuite sous l'évier ", 8)
	tests := []struct {
		name     string
		desc     string
		explicit bool
		analyzer float64
		want     float64
	}{
		{"no description", "", false, 0, 0.7},
		{"short description", "fuite", false, 0, 0.6},
		{"medium description", "le robinet de la cuisine fuit", false, 0, 0.75},
		{"long description with complexity", long, true, 0, 0.9},
		{"analyzer blend", "le robinet de la cuisine fuit", false, 0.95, 0.85},
		{"capped", long, true, 1, 0.95},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateConfidence(tt.desc, tt.explicit, tt.analyzer)
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if got < 0 || got > 0.95 {
				t.Errorf("confidence %v out of bounds", got)
			}
		})
	}
}

func TestCalculateJobCost(t *testing.T) {
	c := CalculateJobCost(100, 2)
	if c.Labor != 200 || c.Materials != 60 || c.ServiceFee != 26 || c.Total != 286 {
		t.Fatalf("got %+v", c)
	}
	if one := CalculateJobCost(150, 0); one.Hours != 1 || one.Labor != 150 {
		t.Errorf("zero hours should bill one hour: %+v", one)
	}
}
