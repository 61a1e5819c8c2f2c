// Package router wires middleware and endpoint handlers into the gin
// engine.
package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/kineayuda/booking-api/internal/handler/auth"
	"github.com/kineayuda/booking-api/internal/handler/booking"
	"github.com/kineayuda/booking-api/internal/handler/health"
	"github.com/kineayuda/booking-api/internal/handler/patient"
	"github.com/kineayuda/booking-api/internal/handler/payment"
	"github.com/kineayuda/booking-api/internal/handler/practitioner"
	"github.com/kineayuda/booking-api/internal/handler/prometheus"
	"github.com/kineayuda/booking-api/internal/handler/review"
	"github.com/kineayuda/booking-api/internal/handler/slot"
	"github.com/kineayuda/booking-api/internal/middleware"
	"github.com/kineayuda/booking-api/pkg/rut"
)

// registerValidators adds the "rut" binding tag so request structs reject
// malformed RUTs before they reach a service.
func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("rut", func(fl validator.FieldLevel) bool {
			_, err := rut.Normalize(fl.Field().String())
			return err == nil
		})
	}
}

type Config struct {
	RequestTimeout   time.Duration
	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int
	CORSConfig       middleware.CORSConfig
}

type Router struct {
	engine *gin.Engine

	auth          *middleware.AuthMiddleware
	authH         *auth.Handler
	practitionerH *practitioner.Handler
	slotH         *slot.Handler
	bookingH      *booking.Handler
	patientH      *patient.Handler
	paymentH      *payment.Handler
	reviewH       *review.Handler
	healthH       *health.Handler
	metricsH      *prometheus.Handler
}

func NewRouter(
	authMW *middleware.AuthMiddleware,
	authH *auth.Handler,
	practitionerH *practitioner.Handler,
	slotH *slot.Handler,
	bookingH *booking.Handler,
	patientH *patient.Handler,
	paymentH *payment.Handler,
	reviewH *review.Handler,
	healthH *health.Handler,
	metricsH *prometheus.Handler,
	log zerolog.Logger,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	registerValidators()
	engine := gin.New()

	timeoutCfg := middleware.DefaultTimeoutConfig()
	if config.RequestTimeout > 0 {
		timeoutCfg.Duration = config.RequestTimeout
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.Timeout(timeoutCfg),
		metricsH.Middleware(),
	)
	engine.Use(middleware.CORS(config.CORSConfig))

	if config.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			RPS:   config.RateLimitRPS,
			Burst: config.RateLimitBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return &Router{
		engine:        engine,
		auth:          authMW,
		authH:         authH,
		practitionerH: practitionerH,
		slotH:         slotH,
		bookingH:      bookingH,
		patientH:      patientH,
		paymentH:      paymentH,
		reviewH:       reviewH,
		healthH:       healthH,
		metricsH:      metricsH,
	}
}

func (r *Router) Setup() {
	root := r.engine.Group("")
	r.healthH.RegisterRoutes(root)
	r.engine.GET("/metrics", r.metricsH.Handler())

	api := r.engine.Group("/api/v1")

	r.authH.RegisterRoutes(api)
	r.paymentH.RegisterCallbackRoutes(api)

	public := api.Group("/public")
	{
		r.practitionerH.RegisterPublicRoutes(public)
		r.slotH.RegisterPublicRoutes(public)
		r.bookingH.RegisterPublicRoutes(public)
		r.reviewH.RegisterPublicRoutes(public)
	}

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	{
		r.practitionerH.RegisterRoutes(protected)
		r.slotH.RegisterRoutes(protected)
		r.bookingH.RegisterRoutes(protected)
		r.patientH.RegisterRoutes(protected)
		r.paymentH.RegisterRoutes(protected)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
