package pricing

import (
	"fmt"
	"math"
	"strings"

	"m3allem/models"
)

type discountCode struct {
	percent  float64 // fraction of the price, when set
	flat     float64 // MAD, when set
	minOrder float64
}

var discountCodes = map[string]discountCode{
	"WELCOME10":  {percent: 0.10, minOrder: 100},
	"BIENVENUE":  {percent: 0.15, minOrder: 200},
	"RAMADAN20":  {percent: 0.20, minOrder: 300},
	"FIRST50":    {flat: 50, minOrder: 150},
	"FIDELITE30": {flat: 30, minOrder: 100},
}

// ApplyDiscountCode validates code against price. An unknown code or a price below
// the code's minimum order is reported through Valid, never as an error.
func ApplyDiscountCode(price float64, code string) models.DiscountResult {
	key := strings.ToUpper(strings.TrimSpace(code))
	dc, ok := discountCodes[key]
	if !ok {
		return models.DiscountResult{
			DiscountedPrice: price,
			Valid:           false,
			Message:         "Code promo invalide",
		}
	}
	if price < dc.minOrder {
		return models.DiscountResult{
			DiscountedPrice: price,
			Valid:           false,
			Message:         fmt.Sprintf("Montant minimum de %.0f MAD requis pour le code %s", dc.minOrder, key),
		}
	}

	amount := dc.flat
	if dc.percent > 0 {
		amount = math.Round(price * dc.percent)
	}
	amount = math.Max(0, math.Min(amount, price))

	return models.DiscountResult{
		DiscountedPrice: price - amount,
		DiscountAmount:  amount,
		Valid:           true,
		Message:         fmt.Sprintf("Code %s appliqué : -%.0f MAD", key, amount),
	}
}
