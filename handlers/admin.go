package handlers

import (
	"net/http"

	"m3allem/models"
	"m3allem/services/admin"
	"m3allem/utils"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	Svc admin.AdminService
}

func NewAdminHandler(svc admin.AdminService) *AdminHandler {
	return &AdminHandler{Svc: svc}
}

// Legal handles GET /api/legal?role=technician. Without a role every document is returned.
func (h *AdminHandler) Legal(c *gin.Context) {
	role := c.Query("role")
	if role == "" {
		c.JSON(http.StatusOK, h.Svc.LegalSections())
		return
	}
	c.JSON(http.StatusOK, h.Svc.LegalSectionsFor(models.Role(role)))
}

// Overview handles GET /api/admin/overview.
func (h *AdminHandler) Overview(c *gin.Context) {
	o, err := h.Svc.Overview(c.Request.Context())
	if err != nil {
		utils.RespondError(c, "failed to build overview", err)
		return
	}
	c.JSON(http.StatusOK, o)
}
