package handlers

import (
	"net/http"
	"strconv"

	"m3allem/middleware"
	"m3allem/services/notification"
	"m3allem/utils"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	Svc notification.NotificationService
}

func NewNotificationHandler(svc notification.NotificationService) *NotificationHandler {
	return &NotificationHandler{Svc: svc}
}

// List handles GET /api/notifications?unread=true&limit=50 for the caller's inbox.
func (h *NotificationHandler) List(c *gin.Context) {
	unread, _ := strconv.ParseBool(c.Query("unread"))
	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			utils.JSONError(c, http.StatusBadRequest, "invalid limit", "")
			return
		}
		limit = n
	}
	items, err := h.Svc.ListForUser(c.Request.Context(), middleware.UserID(c), unread, limit)
	if err != nil {
		utils.RespondError(c, "failed to list notifications", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.Svc.MarkRead(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		utils.RespondError(c, "failed to mark notification read", err)
		return
	}
	c.Status(http.StatusNoContent)
}
