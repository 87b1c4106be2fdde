package routes

import (
	"time"

	"m3allem/handlers"
	"m3allem/middleware"
	"m3allem/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	if hb.Health == nil {
		hb.Health = handlers.NewHealthHandler(nil, time.Now())
	}
	r.GET("/health", hb.Health.Health)
}

// RegisterUserRoutes registers registration, login and account endpoints.
func RegisterUserRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	if hb.Users == nil {
		return
	}
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", hb.Users.Register)
		auth.POST("/login", hb.Users.Login)
	}

	me := r.Group("/api/users/me")
	{
		me.Use(middleware.JWTAuth())
		me.GET("", hb.Users.Me)
		me.DELETE("", hb.Users.DeleteMe)
		me.PUT("/fcm-token", hb.Users.UpdateFCMToken)
		me.PUT("/password", hb.Users.UpdatePassword)
	}
}

// RegisterPricingRoutes registers the public estimator endpoints.
func RegisterPricingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	if hb.Pricing == nil {
		return
	}
	r.GET("/api/services", hb.Pricing.Services)
	api := r.Group("/api/pricing")
	{
		api.POST("/estimate", hb.Pricing.Estimate)
		api.POST("/quick", hb.Pricing.Quick)
		api.POST("/job-cost", hb.Pricing.JobCost)
		api.POST("/discount", hb.Pricing.Discount)
	}
}

// RegisterJobRoutes registers job and booking lifecycle endpoints.
func RegisterJobRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	if hb.Bookings == nil {
		return
	}
	jobs := r.Group("/api/jobs")
	{
		jobs.Use(middleware.JWTAuth())
		jobs.POST("", middleware.RequireRole(models.RoleClient), hb.Bookings.CreateJob)
		jobs.GET("", hb.Bookings.ListJobs)
		jobs.GET("/:id", hb.Bookings.GetJob)
		jobs.GET("/:id/matches", hb.Bookings.Matches)
		jobs.POST("/:id/cancel", middleware.RequireRole(models.RoleClient), hb.Bookings.CancelJob)
	}

	bookings := r.Group("/api/bookings")
	{
		bookings.Use(middleware.JWTAuth())
		bookings.POST("", middleware.RequireRole(models.RoleClient), hb.Bookings.CreateBooking)
		bookings.GET("", hb.Bookings.ListBookings)
		bookings.GET("/:id", hb.Bookings.GetBooking)
		bookings.POST("/:id/cancel", hb.Bookings.CancelBooking)

		tech := bookings.Group("")
		tech.Use(middleware.RequireRole(models.RoleTechnician))
		tech.POST("/:id/accept", hb.Bookings.AcceptBooking)
		tech.POST("/:id/start", hb.Bookings.StartBooking)
		tech.POST("/:id/complete", hb.Bookings.CompleteBooking)
		tech.POST("/:id/no-show", hb.Bookings.MarkNoShow)

		if hb.Payments != nil {
			bookings.GET("/:id/payments", hb.Payments.ListForBooking)
		}
	}
}

// RegisterAnalysisRoutes registers the text, photo and voice analyzers.
func RegisterAnalysisRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	if hb.Analysis == nil {
		return
	}
	api := r.Group("/api/analyze")
	{
		api.Use(middleware.JWTAuth())
		api.POST("/text", hb.Analysis.AnalyzeText)
		api.POST("/photo", hb.Analysis.AnalyzePhoto)
		api.POST("/voice", hb.Analysis.AnalyzeVoice)
	}
}

// RegisterPaymentRoutes registers checkout, manual status changes and the Stripe webhook.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	if hb.Payments == nil {
		return
	}
	// Stripe authenticates with its signature header, not a bearer token.
	r.POST("/api/payments/webhooks/stripe", hb.Payments.StripeWebhook)

	api := r.Group("/api/payments")
	{
		api.Use(middleware.JWTAuth())
		api.POST("/checkout", middleware.RequireRole(models.RoleClient), hb.Payments.Checkout)
		api.GET("/:id", hb.Payments.Get)
		api.POST("/:id/cancel", middleware.RequireRole(models.RoleClient), hb.Payments.Cancel)
		api.POST("/:id/confirm", middleware.RequireRole(models.RoleTechnician), hb.Payments.Confirm)
		api.POST("/:id/fail", middleware.RequireRole(models.RoleAdmin), hb.Payments.Fail)
		api.POST("/:id/refund", middleware.RequireRole(models.RoleAdmin), hb.Payments.Refund)
	}
}

// RegisterTechnicianRoutes registers public listings and profile management.
func RegisterTechnicianRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	if hb.Technicians == nil {
		return
	}
	api := r.Group("/api/technicians")
	{
		api.GET("", hb.Technicians.Search)
		api.GET("/nearby", hb.Technicians.Nearby)
		api.GET("/:id", hb.Technicians.Get)
		if hb.Reviews != nil {
			api.GET("/:id/reviews", hb.Reviews.ListForTechnician)
		}

		protected := api.Group("")
		protected.Use(middleware.JWTAuth(), middleware.RequireRole(models.RoleTechnician))
		protected.POST("", hb.Technicians.Create)
		protected.PATCH("/:id", hb.Technicians.Update)
		protected.PUT("/:id/availability", hb.Technicians.SetAvailability)
		protected.PUT("/:id/location", hb.Technicians.UpdateLocation)
	}
}

// RegisterReviewRoutes registers review creation, edits and technician responses.
func RegisterReviewRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	if hb.Reviews == nil {
		return
	}
	api := r.Group("/api/reviews")
	{
		api.Use(middleware.JWTAuth())
		api.POST("", middleware.RequireRole(models.RoleClient), hb.Reviews.Create)
		api.PATCH("/:id", middleware.RequireRole(models.RoleClient), hb.Reviews.Update)
		api.POST("/:id/response", middleware.RequireRole(models.RoleTechnician), hb.Reviews.Respond)
	}
}

// RegisterNotificationRoutes registers the caller's inbox.
func RegisterNotificationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	if hb.Notifications == nil {
		return
	}
	api := r.Group("/api/notifications")
	{
		api.Use(middleware.JWTAuth())
		api.GET("", hb.Notifications.List)
		api.POST("/:id/read", hb.Notifications.MarkRead)
	}
}

// RegisterAdminRoutes registers the legal documents and the admin dashboard.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	if hb.Admin == nil {
		return
	}
	r.GET("/api/legal", hb.Admin.Legal)

	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.JWTAuth(), middleware.RequireRole(models.RoleAdmin))
		adminGroup.GET("/overview", hb.Admin.Overview)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r, hb)
	RegisterUserRoutes(r, hb)
	RegisterPricingRoutes(r, hb)
	RegisterJobRoutes(r, hb)
	RegisterAnalysisRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterTechnicianRoutes(r, hb)
	RegisterReviewRoutes(r, hb)
	RegisterNotificationRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
