package http

import (
	"log/slog"
	"time"

	"github.com/etuitionbd/server/internal/auth"
	"github.com/etuitionbd/server/internal/config"
	"github.com/etuitionbd/server/internal/http/handlers"
	"github.com/etuitionbd/server/internal/http/middlewares"
	"github.com/etuitionbd/server/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "etuitionbd-api"

// The repository sets each backend (mongodb, memory) has to provide.

type UserRepo interface {
	handlers.UserStore
	handlers.UserFinder
	handlers.TutorDirectory
	handlers.AdminUserStore
}

type TuitionRepo interface {
	handlers.TuitionStore
	handlers.TuitionFinder
	handlers.StatusCounter
}

type ApplicationRepo interface {
	handlers.ApplicationStore
	handlers.StatusCounter
}

type PaymentRepo interface {
	handlers.PaymentStore
	handlers.PaymentLedger
}

type Deps struct {
	Users        UserRepo
	Tuitions     TuitionRepo
	Applications ApplicationRepo
	Payments     PaymentRepo

	// Ready backs /readyz; nil means always ready.
	Ready handlers.Pinger

	// Prom and Gatherer default to a private registry when nil.
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	if deps.Prom == nil {
		reg := prometheus.NewRegistry()
		deps.Prom = observability.NewProm(reg)
		deps.Gatherer = reg
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	handlers.RegisterValidators()

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(middlewares.RequestLogger(log))
	r.Use(deps.Prom.GinHandleMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.ClientOrigins))
	r.Use(middlewares.MaxBodyBytes(middlewares.DefaultMaxBody))
	r.Use(middlewares.RequireJSON())

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL())
	authMW := middlewares.NewAuthMiddleware(jwtManager)
	requireAuth := authMW.RequireAuth()
	admin := authMW.RequireAdmin()

	authLimit := cfg.AuthRateLimit
	if authLimit <= 0 {
		authLimit = 20
	}
	authLimiter := middlewares.NewRateLimiter(authLimit, time.Minute).RateLimiterMiddleware(middlewares.KeyByIP)

	// health
	health := handlers.NewHealthHandler(deps.Ready)
	r.GET("/", health.Root)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))

	// Wire up handlers
	authHandler := handlers.NewAuthHandler(deps.Users, jwtManager)
	if cfg.GoogleClientID != "" {
		authHandler.WithIdentityVerifier(auth.NewGoogleVerifier(cfg.GoogleClientID))
	}
	tuitionsHandler := handlers.NewTuitionsHandler(deps.Tuitions, deps.Users)
	tutorsHandler := handlers.NewTutorsHandler(deps.Users)
	applicationsHandler := handlers.NewApplicationsHandler(deps.Applications, deps.Tuitions, deps.Users)
	paymentsHandler := handlers.NewPaymentsHandler(deps.Payments, deps.Applications, deps.Prom)
	adminHandler := handlers.NewAdminHandler(deps.Users, deps.Tuitions, deps.Applications, deps.Payments)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authLimiter, authHandler.Register)
		authGroup.POST("/login", authLimiter, authHandler.Login)
		authGroup.POST("/google", authLimiter, authHandler.Google)
		authGroup.POST("/save-profile", requireAuth, authHandler.SaveProfile)
		authGroup.GET("/me", requireAuth, authHandler.Me)
	}
	api.PUT("/users/profile", requireAuth, authHandler.UpdateProfile)

	// tuitions
	api.POST("/tuitions", requireAuth, tuitionsHandler.Create)
	api.GET("/tuitions", tuitionsHandler.List)
	api.GET("/tuitions/latest/home", tuitionsHandler.Latest)
	api.GET("/tuitions/:id", tuitionsHandler.Get)
	api.PUT("/tuitions/:id", requireAuth, tuitionsHandler.Update)
	api.DELETE("/tuitions/:id", requireAuth, tuitionsHandler.Delete)
	api.GET("/tuitions/:id/applications", requireAuth, applicationsHandler.ListForTuition)
	api.GET("/tuitions/:id/applied-tutors", requireAuth, applicationsHandler.AppliedTutors)
	api.GET("/my-tuitions", requireAuth, tuitionsHandler.Mine)

	// tutors
	api.GET("/tutors", tutorsHandler.List)
	api.GET("/tutors/latest", tutorsHandler.Latest)
	api.GET("/tutors/:id", tutorsHandler.Get)

	// applications
	api.POST("/applications", requireAuth, applicationsHandler.Submit)
	api.GET("/my-applications", requireAuth, applicationsHandler.Mine)
	api.PATCH("/applications/:id", requireAuth, applicationsHandler.SetStatus)
	api.DELETE("/applications/:id", requireAuth, applicationsHandler.Delete)
	api.GET("/tutor/ongoing-tuitions", requireAuth, applicationsHandler.Ongoing)

	// payments
	api.POST("/payments", requireAuth, paymentsHandler.Record)
	api.GET("/my-payments", requireAuth, paymentsHandler.Mine)
	api.GET("/tutor-revenue", requireAuth, paymentsHandler.TutorRevenue)

	adminGroup := api.Group("/admin", admin...)
	{
		adminGroup.GET("/analytics", adminHandler.Analytics)
		adminGroup.GET("/transactions", adminHandler.Transactions)
		adminGroup.GET("/users", adminHandler.ListUsers)
		adminGroup.PUT("/users/:id", adminHandler.UpdateUser)
		adminGroup.DELETE("/users/:id", adminHandler.DeleteUser)
		adminGroup.GET("/tuitions", tuitionsHandler.ListAll)
		adminGroup.GET("/tuitions/pending", tuitionsHandler.ListPending)
		adminGroup.PATCH("/tuitions/:id", tuitionsHandler.SetStatus)
	}

	return r
}
