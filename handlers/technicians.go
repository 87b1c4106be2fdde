package handlers

import (
	"net/http"
	"strconv"

	"m3allem/middleware"
	"m3allem/models"
	"m3allem/services/technician"
	"m3allem/utils"

	"github.com/gin-gonic/gin"
)

type TechnicianHandler struct {
	Svc technician.TechnicianService
}

func NewTechnicianHandler(svc technician.TechnicianService) *TechnicianHandler {
	return &TechnicianHandler{Svc: svc}
}

// Search handles GET /api/technicians?service=&city=&available=&minRating=&limit=.
func (h *TechnicianHandler) Search(c *gin.Context) {
	criteria := models.TechnicianSearch{
		Service: c.Query("service"),
		City:    c.Query("city"),
	}
	if v := c.Query("available"); v != "" {
		available, err := strconv.ParseBool(v)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid available flag", err.Error())
			return
		}
		criteria.AvailableOnly = available
	}
	if v := c.Query("minRating"); v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid minRating", err.Error())
			return
		}
		criteria.MinRating = rating
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid limit", err.Error())
			return
		}
		criteria.Limit = limit
	}

	techs, err := h.Svc.Search(c.Request.Context(), criteria)
	if err != nil {
		utils.RespondError(c, "failed to search technicians", err)
		return
	}
	c.JSON(http.StatusOK, techs)
}

// Nearby handles GET /api/technicians/nearby.
func (h *TechnicianHandler) Nearby(c *gin.Context) {
	var q models.NearbyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid query", err.Error())
		return
	}
	results, err := h.Svc.Nearby(c.Request.Context(), q)
	if err != nil {
		utils.RespondError(c, "failed to rank technicians", err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *TechnicianHandler) Get(c *gin.Context) {
	t, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, "technician not found", err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// Create handles POST /api/technicians for the authenticated technician user.
func (h *TechnicianHandler) Create(c *gin.Context) {
	var p models.TechnicianProfile
	if !bindJSON(c, &p) {
		return
	}
	t, err := h.Svc.CreateProfile(c.Request.Context(), middleware.UserID(c), p)
	if err != nil {
		utils.RespondError(c, "failed to create technician profile", err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *TechnicianHandler) Update(c *gin.Context) {
	var upd models.TechnicianUpdate
	if !bindJSON(c, &upd) {
		return
	}
	t, err := h.Svc.UpdateProfile(c.Request.Context(), c.Param("id"), ownerScope(c), upd)
	if err != nil {
		utils.RespondError(c, "failed to update technician", err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TechnicianHandler) SetAvailability(c *gin.Context) {
	var body struct {
		Available *bool `json:"available"`
	}
	if !bindJSON(c, &body) {
		return
	}
	if body.Available == nil {
		utils.JSONError(c, http.StatusBadRequest, "available is required", "")
		return
	}
	t, err := h.Svc.SetAvailability(c.Request.Context(), c.Param("id"), ownerScope(c), *body.Available)
	if err != nil {
		utils.RespondError(c, "failed to update availability", err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TechnicianHandler) UpdateLocation(c *gin.Context) {
	var loc models.LocationUpdate
	if !bindJSON(c, &loc) {
		return
	}
	t, err := h.Svc.UpdateLocation(c.Request.Context(), c.Param("id"), ownerScope(c), loc)
	if err != nil {
		utils.RespondError(c, "failed to update location", err)
		return
	}
	c.JSON(http.StatusOK, t)
}
