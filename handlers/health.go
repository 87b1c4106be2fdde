package handlers

import (
	"net/http"
	"time"

	"m3allem/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports liveness and the last backend snapshot. Monitor may be nil
// when the service runs on the in-memory store only.
type HealthHandler struct {
	Monitor *utils.HealthMonitor
	Started time.Time
}

func NewHealthHandler(monitor *utils.HealthMonitor, started time.Time) *HealthHandler {
	return &HealthHandler{Monitor: monitor, Started: started}
}

func (h *HealthHandler) Health(c *gin.Context) {
	resp := gin.H{"status": "ok", "uptime": time.Since(h.Started).Round(time.Second).String()}
	if h.Monitor == nil {
		c.JSON(http.StatusOK, resp)
		return
	}
	status := h.Monitor.Status()
	resp["backends"] = status
	if (status.Mongo != nil && !*status.Mongo) || (status.Redis != nil && !*status.Redis) {
		resp["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
