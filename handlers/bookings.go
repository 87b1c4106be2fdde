package handlers

import (
	"net/http"

	"m3allem/middleware"
	"m3allem/models"
	"m3allem/services/booking"
	"m3allem/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	Svc booking.BookingService
}

func NewBookingHandler(svc booking.BookingService) *BookingHandler {
	return &BookingHandler{Svc: svc}
}

// CreateJob handles POST /api/jobs and answers with the job and its ranked technicians.
func (h *BookingHandler) CreateJob(c *gin.Context) {
	var req models.JobRequest
	if !bindJSON(c, &req) {
		return
	}
	req.ClientID = middleware.UserID(c)
	created, err := h.Svc.CreateJob(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, "failed to create job", err)
		return
	}
	getLogger(c).Info("job created", zap.String("jobID", created.Job.ID), zap.Int("matches", len(created.Matches)))
	c.JSON(http.StatusCreated, created)
}

// ListJobs handles GET /api/jobs. Clients only see their own jobs.
func (h *BookingHandler) ListJobs(c *gin.Context) {
	filter := models.JobFilter{
		Status:  models.JobStatus(c.Query("status")),
		City:    c.Query("city"),
		Service: c.Query("service"),
	}
	if middleware.Role(c) == models.RoleClient {
		filter.ClientID = middleware.UserID(c)
	}
	jobs, err := h.Svc.ListJobs(c.Request.Context(), filter)
	if err != nil {
		utils.RespondError(c, "failed to list jobs", err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *BookingHandler) GetJob(c *gin.Context) {
	job, err := h.Svc.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, "job not found", err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// Matches handles GET /api/jobs/:id/matches.
func (h *BookingHandler) Matches(c *gin.Context) {
	matches, err := h.Svc.MatchesForJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, "failed to match technicians", err)
		return
	}
	c.JSON(http.StatusOK, matches)
}

func (h *BookingHandler) CancelJob(c *gin.Context) {
	var body struct {
		Reason string `json:"reason"`
	}
	if !bindOptionalJSON(c, &body) {
		return
	}
	job, err := h.Svc.CancelJob(c.Request.Context(), c.Param("id"), body.Reason)
	if err != nil {
		utils.RespondError(c, "failed to cancel job", err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// CreateBooking handles POST /api/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.BookingRequest
	if !bindJSON(c, &req) {
		return
	}
	req.ClientID = middleware.UserID(c)
	b, err := h.Svc.CreateBooking(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, "failed to create booking", err)
		return
	}
	getLogger(c).Info("booking created", zap.String("bookingID", b.ID), zap.String("jobID", b.JobID))
	c.JSON(http.StatusCreated, b)
}

// ListBookings handles GET /api/bookings. Clients only see their own bookings.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	filter := models.BookingFilter{
		JobID:        c.Query("jobId"),
		TechnicianID: c.Query("technicianId"),
		Status:       models.BookingStatus(c.Query("status")),
	}
	if middleware.Role(c) == models.RoleClient {
		filter.ClientID = middleware.UserID(c)
	}
	bookings, err := h.Svc.ListBookings(c.Request.Context(), filter)
	if err != nil {
		utils.RespondError(c, "failed to list bookings", err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	b, err := h.Svc.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, "booking not found", err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) AcceptBooking(c *gin.Context) {
	h.respond(c, "failed to accept booking")(h.Svc.AcceptBooking(c.Request.Context(), c.Param("id")))
}

func (h *BookingHandler) StartBooking(c *gin.Context) {
	h.respond(c, "failed to start booking")(h.Svc.StartBooking(c.Request.Context(), c.Param("id")))
}

func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	var body struct {
		FinalCost float64 `json:"finalCost"`
	}
	if !bindOptionalJSON(c, &body) {
		return
	}
	if body.FinalCost < 0 {
		utils.JSONError(c, http.StatusBadRequest, "finalCost must not be negative", "")
		return
	}
	h.respond(c, "failed to complete booking")(h.Svc.CompleteBooking(c.Request.Context(), c.Param("id"), body.FinalCost))
}

func (h *BookingHandler) CancelBooking(c *gin.Context) {
	var body struct {
		Reason string `json:"reason"`
	}
	if !bindOptionalJSON(c, &body) {
		return
	}
	h.respond(c, "failed to cancel booking")(h.Svc.CancelBooking(c.Request.Context(), c.Param("id"), body.Reason))
}

func (h *BookingHandler) MarkNoShow(c *gin.Context) {
	h.respond(c, "failed to mark no-show")(h.Svc.MarkNoShow(c.Request.Context(), c.Param("id")))
}

// respond writes the outcome of a status transition.
func (h *BookingHandler) respond(c *gin.Context, message string) func(*models.Booking, error) {
	return func(b *models.Booking, err error) {
		if err != nil {
			utils.RespondError(c, message, err)
			return
		}
		getLogger(c).Info("booking status changed", zap.String("bookingID", b.ID), zap.String("status", string(b.Status)))
		c.JSON(http.StatusOK, b)
	}
}
