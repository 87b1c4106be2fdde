package handlers

import (
	"net/http"
	"strings"

	"m3allem/models"
	"m3allem/services/booking"
	"m3allem/services/pricing"
	"m3allem/utils"

	"github.com/gin-gonic/gin"
)

// PricingHandler exposes the catalogue and the price calculators.
type PricingHandler struct {
	Estimator booking.PriceEstimator
}

func NewPricingHandler(estimator booking.PriceEstimator) *PricingHandler {
	return &PricingHandler{Estimator: estimator}
}

// Services handles GET /api/services.
func (h *PricingHandler) Services(c *gin.Context) {
	c.JSON(http.StatusOK, models.Services)
}

// Estimate handles POST /api/pricing/estimate.
func (h *PricingHandler) Estimate(c *gin.Context) {
	var p models.PricingParams
	if !bindJSON(c, &p) {
		return
	}
	// A missing or unknown service is priced at the default base rate.
	if p.DistanceKm < 0 {
		utils.JSONError(c, http.StatusBadRequest, "distanceKm must not be negative", "")
		return
	}
	c.JSON(http.StatusOK, h.Estimator.EstimatePrice(c.Request.Context(), p))
}

// Quick handles POST /api/pricing/quick.
func (h *PricingHandler) Quick(c *gin.Context) {
	var p models.QuickEstimateParams
	if !bindJSON(c, &p) {
		return
	}
	if strings.TrimSpace(p.Service) == "" {
		utils.JSONError(c, http.StatusBadRequest, "service is required", "")
		return
	}
	_, p.ComplexityExplicit = models.ParseComplexity(string(p.Complexity))
	c.JSON(http.StatusOK, pricing.QuickEstimate(p))
}

// JobCost handles POST /api/pricing/job-cost.
func (h *PricingHandler) JobCost(c *gin.Context) {
	var body struct {
		HourlyPrice float64 `json:"hourlyPrice"`
		Hours       float64 `json:"hours"`
	}
	if !bindJSON(c, &body) {
		return
	}
	if body.HourlyPrice <= 0 {
		utils.JSONError(c, http.StatusBadRequest, "hourlyPrice must be positive", "")
		return
	}
	c.JSON(http.StatusOK, pricing.CalculateJobCost(body.HourlyPrice, body.Hours))
}

// Discount handles POST /api/pricing/discount. Invalid codes answer 200 with valid=false.
func (h *PricingHandler) Discount(c *gin.Context) {
	var body struct {
		Price float64 `json:"price"`
		Code  string  `json:"code"`
	}
	if !bindJSON(c, &body) {
		return
	}
	if body.Price < 0 {
		utils.JSONError(c, http.StatusBadRequest, "price must not be negative", "")
		return
	}
	c.JSON(http.StatusOK, pricing.ApplyDiscountCode(body.Price, body.Code))
}
