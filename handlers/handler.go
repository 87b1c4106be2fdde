package handlers

import (
	"net/http"

	"m3allem/middleware"
	"m3allem/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HandlerBundle groups the endpoint handlers the router mounts. Nil handlers leave
// their routes unregistered.
type HandlerBundle struct {
	Users         *UserHandler
	Pricing       *PricingHandler
	Bookings      *BookingHandler
	Analysis      *AnalysisHandler
	Payments      *PaymentHandler
	Reviews       *ReviewHandler
	Technicians   *TechnicianHandler
	Notifications *NotificationHandler
	Admin         *AdminHandler
	Health        *HealthHandler
}

// getLogger returns the request-scoped logger set by middleware.RequestLogger.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get(middleware.ContextLogger); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return utils.GetLogger()
}

// bindJSON decodes the body into dst and answers 400 when it cannot.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}

// bindOptionalJSON accepts an empty body.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return bindJSON(c, dst)
}
