package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"m3allem/config"
	"m3allem/cron"
	"m3allem/database"
	"m3allem/database/repository"
	"m3allem/handlers"
	"m3allem/middleware"
	"m3allem/routes"
	"m3allem/services/admin"
	"m3allem/services/booking"
	"m3allem/services/intelligence"
	"m3allem/services/matching"
	"m3allem/services/notification"
	"m3allem/services/payment"
	"m3allem/services/pricing"
	"m3allem/services/review"
	"m3allem/services/storage"
	"m3allem/services/technician"
	"m3allem/services/user"
	"m3allem/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	_ "github.com/joho/godotenv/autoload"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	utils.InitializeLogger()
	logger := utils.GetLogger()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	started := time.Now()
	clock := utils.SystemClock{}

	// Entity store.
	store := repository.NewMemoryStore()
	if config.UseMongo() {
		db, err := database.InitDB(ctx)
		if err != nil {
			logger.Fatal("main: failed to connect to MongoDB", zap.Error(err))
		}
		if store, err = repository.NewMongoStore(db); err != nil {
			logger.Fatal("main: failed to prepare MongoDB collections", zap.Error(err))
		}
		logger.Info("main: using MongoDB store", zap.String("database", config.AppConfig.DatabaseName))
	} else {
		logger.Info("main: using in-memory store")
	}

	// Redis cache. Matching and analysis run uncached without it.
	var cache *redis.Client
	if config.AppConfig.RedisAddr != "" {
		client, err := utils.NewRedisClient(config.AppConfig.RedisCacheDB)
		if err != nil {
			logger.Warn("main: redis unavailable, caching disabled", zap.Error(err))
		} else {
			cache = client
			defer cache.Close()
		}
	}

	// Push notifications.
	var pusher notification.Pusher
	if config.AppConfig.FirebaseCredentialsFile != "" {
		fcm, err := utils.NewFCMClient(ctx)
		if err != nil {
			logger.Warn("main: firebase unavailable, push disabled", zap.Error(err))
		} else {
			pusher = notification.NewFCMPusher(fcm)
		}
	}
	notifier, err := notification.NewDefaultNotificationService(store.Notifications, store.Users, pusher, clock, utils.NewID, logger)
	if err != nil {
		logger.Fatal("main: notification service", zap.Error(err))
	}

	// Analyzers: Gemini behind the redis cache, keyword rules as the fallback.
	var primary intelligence.Analyzer
	if config.AppConfig.GeminiAPIKey != "" {
		gemini, err := intelligence.NewGeminiAnalyzer(ctx, config.AppConfig.GeminiAPIKey, config.AppConfig.GeminiModel)
		if err != nil {
			logger.Warn("main: gemini unavailable, using keyword rules", zap.Error(err))
		} else {
			defer gemini.Close()
			primary = gemini
			if cache != nil {
				primary = &intelligence.CachedAnalyzer{
					Analyzer: gemini,
					Cache:    intelligence.NewRedisAnalysisCache(cache, 24*time.Hour),
					Logger:   logger,
				}
			}
		}
	}
	analyzer := intelligence.NewFallbackAnalyzer(primary, logger)

	var transcriber intelligence.Transcriber
	if config.AppConfig.GoogleServiceAccountFile != "" {
		speech, err := intelligence.NewSpeechTranscriber(ctx, config.AppConfig.GoogleServiceAccountFile)
		if err != nil {
			logger.Warn("main: speech-to-text unavailable, voice requests disabled", zap.Error(err))
		} else {
			defer speech.Close()
			transcriber = speech
		}
	}

	// Matching and pricing.
	var matchCache matching.MatchCache
	if cache != nil {
		matchCache = matching.NewRedisMatchCache(cache)
	}
	matcher := matching.NewMatchingService(store.Technicians, store.Bookings, matchCache, config.AppConfig.MatchCacheTTL, logger)
	estimator := pricing.NewEstimator(store.Jobs, store.Technicians, logger)

	// Reminders need the asynq queue on redis.
	var reminders booking.ReminderScheduler
	if cache != nil {
		scheduler := booking.NewAsynqReminderScheduler(cron.RedisOpt(), config.AppConfig.ReminderLead, clock)
		defer scheduler.Close()
		reminders = scheduler

		worker := cron.InitReminderWorker(notifier, logger)
		defer worker.Shutdown()
	}

	bookingSvc := booking.NewDefaultBookingService(store, estimator, matcher, analyzer, notifier, reminders, clock, utils.NewID, logger)

	// Payment gateways. Card payments need a Stripe key.
	gateways := []payment.Gateway{
		&payment.CMIGateway{GatewayURL: config.AppConfig.CMIGatewayURL},
		&payment.CashPlusGateway{},
		&payment.CashGateway{},
	}
	if config.AppConfig.BankRIB != "" {
		gateways = append(gateways, &payment.BankTransferGateway{RIB: config.AppConfig.BankRIB})
	}
	if config.AppConfig.StripeKey != "" {
		stripe.Key = config.AppConfig.StripeKey
		gateways = append(gateways, payment.NewStripeGateway())
	}
	paymentSvc := payment.NewDefaultPaymentService(store.Payments, bookingSvc, store.Technicians, gateways,
		notifier, config.AppConfig.StripeWebhookSecret, clock, utils.NewID, logger)

	// Job photos.
	var photos storage.PhotoStore
	switch config.AppConfig.PhotoStore {
	case "gcs":
		gcs, err := storage.NewGCSPhotoStore(ctx, config.AppConfig.GoogleServiceAccountFile, config.AppConfig.StorageBucket)
		if err != nil {
			logger.Warn("main: cloud storage unavailable, photos are not kept", zap.Error(err))
		} else {
			defer gcs.Close()
			photos = gcs
		}
	case "cloudinary":
		if config.AppConfig.CloudinaryCloudName != "" {
			cld, err := utils.NewCloudinary()
			if err != nil {
				logger.Warn("main: cloudinary unavailable, photos are not kept", zap.Error(err))
			} else {
				photos = storage.NewCloudinaryPhotoStore(cld, "")
			}
		}
	}

	health := utils.NewHealthMonitor(cache, database.MongoClient)
	health.Start(ctx, 30*time.Second)

	limiter := middleware.NewRateLimiter(config.AppConfig.MaxRequestsPerMin, clock)
	limiter.StartSweeper(ctx, time.Minute)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(limiter.Middleware())

	handlerBundle := &handlers.HandlerBundle{
		Users:         handlers.NewUserHandler(user.NewDefaultUserService(store, config.AppConfig.TokenTTL, clock, utils.NewID, logger)),
		Pricing:       handlers.NewPricingHandler(estimator),
		Bookings:      handlers.NewBookingHandler(bookingSvc),
		Analysis:      handlers.NewAnalysisHandler(analyzer, transcriber, photos),
		Payments:      handlers.NewPaymentHandler(paymentSvc),
		Reviews:       handlers.NewReviewHandler(review.NewDefaultReviewService(store, notifier, clock, utils.NewID, logger)),
		Technicians:   handlers.NewTechnicianHandler(technician.NewDefaultTechnicianService(store.Technicians, store.Users, clock, utils.NewID, logger)),
		Notifications: handlers.NewNotificationHandler(notifier),
		Admin:         handlers.NewAdminHandler(admin.NewDefaultAdminService(store, logger)),
		Health:        handlers.NewHealthHandler(health, started),
	}
	routes.RegisterRoutes(router, handlerBundle)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + config.AppConfig.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("main: starting server", zap.String("addr", srv.Addr))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("main: server failed", zap.Error(err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("main: server is shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: forced shutdown", zap.Error(err))
	}
	if err := database.CloseDB(shutdownCtx); err != nil {
		logger.Warn("main: failed to close MongoDB", zap.Error(err))
	}
	logger.Info("main: server stopped gracefully")
}
