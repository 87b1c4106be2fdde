package handlers

import (
	"io"
	"net/http"

	"m3allem/middleware"
	"m3allem/models"
	"m3allem/services/payment"
	"m3allem/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxWebhookBytes = 65536

type PaymentHandler struct {
	Svc payment.PaymentService
}

func NewPaymentHandler(svc payment.PaymentService) *PaymentHandler {
	return &PaymentHandler{Svc: svc}
}

// Checkout handles POST /api/payments/checkout.
func (h *PaymentHandler) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}
	clientID := middleware.UserID(c)
	if middleware.Role(c) == models.RoleAdmin {
		clientID = ""
	}
	p, err := h.Svc.Checkout(c.Request.Context(), req, clientID)
	if err != nil {
		utils.RespondError(c, "checkout failed", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PaymentHandler) Get(c *gin.Context) {
	p, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, "payment not found", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ListForBooking handles GET /api/bookings/:id/payments.
func (h *PaymentHandler) ListForBooking(c *gin.Context) {
	payments, err := h.Svc.ListForBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, "failed to list payments", err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func (h *PaymentHandler) Confirm(c *gin.Context) {
	var body struct {
		TransactionID string `json:"transactionId"`
	}
	if !bindOptionalJSON(c, &body) {
		return
	}
	h.respond(c, "failed to confirm payment")(h.Svc.Confirm(c.Request.Context(), c.Param("id"), body.TransactionID))
}

func (h *PaymentHandler) Fail(c *gin.Context) {
	var body struct {
		Reason string `json:"reason"`
	}
	if !bindOptionalJSON(c, &body) {
		return
	}
	h.respond(c, "failed to record payment failure")(h.Svc.Fail(c.Request.Context(), c.Param("id"), body.Reason))
}

func (h *PaymentHandler) Cancel(c *gin.Context) {
	h.respond(c, "failed to cancel payment")(h.Svc.Cancel(c.Request.Context(), c.Param("id")))
}

func (h *PaymentHandler) Refund(c *gin.Context) {
	h.respond(c, "failed to refund payment")(h.Svc.Refund(c.Request.Context(), c.Param("id")))
}

// StripeWebhook handles POST /api/payments/webhooks/stripe.
func (h *PaymentHandler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "failed to read webhook body", err.Error())
		return
	}
	if err := h.Svc.HandleStripeEvent(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		utils.RespondError(c, "webhook rejected", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *PaymentHandler) respond(c *gin.Context, message string) func(*models.Payment, error) {
	return func(p *models.Payment, err error) {
		if err != nil {
			utils.RespondError(c, message, err)
			return
		}
		getLogger(c).Info("payment status changed", zap.String("paymentID", p.ID), zap.String("status", string(p.Status)))
		c.JSON(http.StatusOK, p)
	}
}
