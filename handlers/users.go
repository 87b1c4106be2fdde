package handlers

import (
	"net/http"

	"m3allem/middleware"
	"m3allem/models"
	"m3allem/services/user"
	"m3allem/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	Svc user.UserService
}

func NewUserHandler(svc user.UserService) *UserHandler {
	return &UserHandler{Svc: svc}
}

// Register handles POST /api/auth/register.
func (h *UserHandler) Register(c *gin.Context) {
	var reg models.UserRegistration
	if !bindJSON(c, &reg) {
		return
	}
	resp, err := h.Svc.Register(c.Request.Context(), reg)
	if err != nil {
		utils.RespondError(c, "registration failed", err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login handles POST /api/auth/login.
func (h *UserHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.Svc.Login(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, "login failed", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.Svc.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		utils.RespondError(c, "user not found", err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *UserHandler) DeleteMe(c *gin.Context) {
	userID := middleware.UserID(c)
	if err := h.Svc.Delete(c.Request.Context(), userID); err != nil {
		utils.RespondError(c, "failed to delete account", err)
		return
	}
	getLogger(c).Info("account deleted", zap.String("userID", userID))
	c.Status(http.StatusNoContent)
}

// UpdateFCMToken handles PUT /api/users/me/fcm-token.
func (h *UserHandler) UpdateFCMToken(c *gin.Context) {
	var body struct {
		Token string `json:"token"`
	}
	if !bindJSON(c, &body) {
		return
	}
	if err := h.Svc.UpdateFCMToken(c.Request.Context(), middleware.UserID(c), body.Token); err != nil {
		utils.RespondError(c, "failed to register device", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "device registered"})
}

func (h *UserHandler) UpdatePassword(c *gin.Context) {
	var body struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required"`
	}
	if !bindJSON(c, &body) {
		return
	}
	if err := h.Svc.UpdatePassword(c.Request.Context(), middleware.UserID(c), body.CurrentPassword, body.NewPassword); err != nil {
		utils.RespondError(c, "failed to update password", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
