package pricing

import "testing"

func TestApplyDiscountCode(t *testing.T) {
	tests := []struct {
		name       string
		price      float64
		code       string
		valid      bool
		amount     float64
		discounted float64
	}{
		{"welcome on 300", 300, "WELCOME10", true, 30, 270},
		{"case insensitive", 300, " welcome10 ", true, 30, 270},
		{"bienvenue", 400, "BIENVENUE", true, 60, 340},
		{"ramadan below minimum", 200, "RAMADAN20", false, 0, 200},
		{"ramadan at minimum", 300, "RAMADAN20", true, 60, 240},
		{"flat code", 150, "FIRST50", true, 50, 100},
		{"flat below minimum", 120, "FIRST50", false, 0, 120},
		{"fidelite", 100, "FIDELITE30", true, 30, 70},
		{"unknown code", 500, "GRATUIT", false, 0, 500},
		{"empty code", 500, "", false, 0, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ApplyDiscountCode(tt.price, tt.code)
			if res.Valid != tt.valid || res.DiscountAmount != tt.amount || res.DiscountedPrice != tt.discounted {
				t.Errorf("got %+v", res)
			}
			if res.Message == "" {
				t.Error("expected a message")
			}
		})
	}
}

func TestApplyDiscountCodeNeverRaisesPrice(t *testing.T) {
	for code := range discountCodes {
		for _, price := range []float64{0, 50, 99.99, 100, 150, 301, 1000, 12345.67} {
			res := ApplyDiscountCode(price, code)
			if res.DiscountedPrice > price || res.DiscountedPrice < 0 {
				t.Fatalf("%s on %v: discounted %v", code, price, res.DiscountedPrice)
			}
		}
	}
}
