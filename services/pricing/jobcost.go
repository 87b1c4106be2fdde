package pricing

import (
	"m3allem/models"
	"m3allem/utils"
)

const (
	materialsShare = 0.30
	serviceFeeRate = 0.10
)

// CalculateJobCost totals labor, a materials allowance and the platform fee.
// Non-positive hours are billed as one hour.
func CalculateJobCost(hourlyPrice, hours float64) models.JobCost {
	if hours <= 0 {
		hours = 1
	}
	labor := utils.Round2(hourlyPrice * hours)
	materials := utils.Round2(labor * materialsShare)
	fee := utils.Round2((labor + materials) * serviceFeeRate)
	return models.JobCost{
		HourlyPrice: hourlyPrice,
		Hours:       hours,
		Labor:       labor,
		Materials:   materials,
		ServiceFee:  fee,
		Total:       utils.Round2(labor + materials + fee),
		Currency:    models.CurrencyMAD,
	}
}
