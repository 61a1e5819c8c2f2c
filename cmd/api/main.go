package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/kineayuda/booking-api/config"
	"github.com/kineayuda/booking-api/internal/gateway/sentiment"
	"github.com/kineayuda/booking-api/internal/gateway/webpay"
	authHandler "github.com/kineayuda/booking-api/internal/handler/auth"
	bookingHandler "github.com/kineayuda/booking-api/internal/handler/booking"
	healthHandler "github.com/kineayuda/booking-api/internal/handler/health"
	patientHandler "github.com/kineayuda/booking-api/internal/handler/patient"
	paymentHandler "github.com/kineayuda/booking-api/internal/handler/payment"
	practitionerHandler "github.com/kineayuda/booking-api/internal/handler/practitioner"
	prometheusHandler "github.com/kineayuda/booking-api/internal/handler/prometheus"
	reviewHandler "github.com/kineayuda/booking-api/internal/handler/review"
	slotHandler "github.com/kineayuda/booking-api/internal/handler/slot"
	"github.com/kineayuda/booking-api/internal/middleware"
	"github.com/kineayuda/booking-api/internal/repository/postgres"
	"github.com/kineayuda/booking-api/internal/router"
	authService "github.com/kineayuda/booking-api/internal/service/auth"
	bookingService "github.com/kineayuda/booking-api/internal/service/booking"
	patientService "github.com/kineayuda/booking-api/internal/service/patient"
	paymentService "github.com/kineayuda/booking-api/internal/service/payment"
	practitionerService "github.com/kineayuda/booking-api/internal/service/practitioner"
	reviewService "github.com/kineayuda/booking-api/internal/service/review"
	slotService "github.com/kineayuda/booking-api/internal/service/slot"
	subscriptionService "github.com/kineayuda/booking-api/internal/service/subscription"
	"github.com/kineayuda/booking-api/pkg/auth"
	"github.com/kineayuda/booking-api/pkg/logger"
	"github.com/kineayuda/booking-api/pkg/metrics"
)

func main() {
	// Optional .env for local development.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := postgres.Migrate(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid redis URL")
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

	// Repositories
	practitionerRepo := postgres.NewPractitionerRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	slotRepo := postgres.NewSlotRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	txRunner := postgres.NewTxRunner(db)

	// Gateways
	webpayClient := webpay.NewClient(cfg.Webpay)
	classifier := sentiment.NewClient(cfg.Sentiment)

	// Metrics
	registry := prometheus.NewRegistry()
	appMetrics := metrics.NewMetrics("booking_api", registry)

	// Services
	jwtSvc := auth.NewJWTService(cfg.JWT)
	authSvc := authService.NewService(practitionerRepo, jwtSvc)
	subscriptionSvc := subscriptionService.NewService(paymentRepo, redisClient)
	slotSvc := slotService.NewService(slotRepo, txRunner, subscriptionSvc, appMetrics)
	bookingSvc := bookingService.NewService(slotRepo, patientRepo, appointmentRepo, txRunner, appMetrics)
	paymentSvc := paymentService.NewService(
		paymentRepo,
		appointmentRepo,
		txRunner,
		webpayClient,
		subscriptionSvc,
		appMetrics,
		appLogger,
		cfg.Webpay.SubscriptionReturnURL,
		cfg.Webpay.AppointmentReturnURL,
	)
	practitionerSvc := practitionerService.NewService(practitionerRepo)
	patientSvc := patientService.NewService(patientRepo)
	reviewSvc := reviewService.NewService(reviewRepo, appointmentRepo, classifier, appLogger)

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	r := router.NewRouter(
		authMiddleware,
		authHandler.NewHandler(authSvc),
		practitionerHandler.NewHandler(practitionerSvc),
		slotHandler.NewHandler(slotSvc),
		bookingHandler.NewHandler(bookingSvc),
		patientHandler.NewHandler(patientSvc),
		paymentHandler.NewHandler(paymentSvc, subscriptionSvc),
		reviewHandler.NewHandler(reviewSvc),
		healthHandler.NewHandler(db),
		prometheusHandler.New(registry),
		appLogger.Zerolog(),
		router.Config{
			RequestTimeout:   cfg.Server.RequestTimeout,
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimitRPS:     cfg.RateLimit.RequestsPerSecond,
			RateLimitBurst:   cfg.RateLimit.Burst,
			CORSConfig:       middleware.DefaultCORSConfig(),
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
