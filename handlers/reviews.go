package handlers

import (
	"net/http"

	"m3allem/middleware"
	"m3allem/models"
	"m3allem/services/review"
	"m3allem/utils"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	Svc review.ReviewService
}

func NewReviewHandler(svc review.ReviewService) *ReviewHandler {
	return &ReviewHandler{Svc: svc}
}

// Create handles POST /api/reviews. The author is always the authenticated client.
func (h *ReviewHandler) Create(c *gin.Context) {
	var in models.ReviewInput
	if !bindJSON(c, &in) {
		return
	}
	in.ClientID = middleware.UserID(c)
	r, err := h.Svc.CreateReview(c.Request.Context(), in)
	if err != nil {
		utils.RespondError(c, "failed to create review", err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *ReviewHandler) Update(c *gin.Context) {
	var upd models.ReviewUpdate
	if !bindJSON(c, &upd) {
		return
	}
	r, err := h.Svc.UpdateReview(c.Request.Context(), c.Param("id"), ownerScope(c), upd)
	if err != nil {
		utils.RespondError(c, "failed to update review", err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ReviewHandler) Respond(c *gin.Context) {
	var body struct {
		Response string `json:"response"`
	}
	if !bindJSON(c, &body) {
		return
	}
	r, err := h.Svc.Respond(c.Request.Context(), c.Param("id"), ownerScope(c), body.Response)
	if err != nil {
		utils.RespondError(c, "failed to respond to review", err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// ListForTechnician handles GET /api/technicians/:id/reviews.
func (h *ReviewHandler) ListForTechnician(c *gin.Context) {
	reviews, err := h.Svc.ListForTechnician(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, "failed to list reviews", err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// ownerScope is the caller's user ID, or empty for admins who may act on anything.
func ownerScope(c *gin.Context) string {
	if middleware.Role(c) == models.RoleAdmin {
		return ""
	}
	return middleware.UserID(c)
}
