package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"classhub/internal/config"
	"classhub/internal/domain"
	"classhub/internal/handler"
	"classhub/internal/middleware"
	"classhub/internal/observability"
	"classhub/internal/repository/postgres"
	"classhub/internal/security"
	"classhub/internal/service"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "json"
	}
	observability.InitLogger(logLevel, logFormat)

	slog.Info("starting api server", slog.String("environment", cfg.Environment))

	connCtx, connCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer connCancel()

	db, err := config.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(connCtx); err != nil {
		slog.Error("database ping failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("connected to postgresql")

	tokens, err := security.NewTokenService(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	if err != nil {
		slog.Error("token service init failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	origins := middleware.ParseOrigins(cfg.AllowedOrigins)
	csrfGuard, err := security.NewCSRFGuard(cfg.CSRFSecret, origins, cfg.IsProduction())
	if err != nil {
		slog.Error("csrf guard init failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	limiterStore := security.NewRateLimiterStore()
	defer limiterStore.Close()

	userRepo := postgres.NewUserRepository(db)
	studentRepo := postgres.NewStudentRepository(db)
	coachRepo := postgres.NewCoachRepository(db)
	courseRepo := postgres.NewCourseRepository(db)
	batchRepo := postgres.NewBatchRepository(db)

	authService := service.NewAuthService(userRepo, tokens)
	studentService := service.NewStudentService(studentRepo, userRepo)
	coachService := service.NewCoachService(coachRepo, userRepo)
	courseService := service.NewCourseService(courseRepo, coachRepo)
	batchService := service.NewBatchService(batchRepo, courseRepo, coachRepo, studentRepo)
	dashboardService := service.NewDashboardService(studentRepo, coachRepo, courseRepo)

	authHandler := handler.NewAuthHandler(authService, tokens, csrfGuard, cfg.IsProduction())
	studentHandler := handler.NewStudentHandler(studentService)
	coachHandler := handler.NewCoachHandler(coachService)
	courseHandler := handler.NewCourseHandler(courseService, coachService)
	batchHandler := handler.NewBatchHandler(batchService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.CORS(origins))
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.RequestSecurity(cfg.IsDevelopment()))

	validatorConfig := middleware.DefaultOpenAPIValidatorConfig()
	validatorConfig.Enabled = cfg.IsDevelopment()
	r.Use(middleware.OpenAPIValidator(validatorConfig))

	r.Get("/health", handler.Health)
	r.Get("/health/ready", handler.Ready(db))
	r.Handle("/metrics", promhttp.Handler())

	// Credential endpoints: strict limiter, no auth required.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(limiterStore, security.PolicyAuth))

		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.Refresh)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(limiterStore, security.PolicyPublic))

		r.Get("/auth/csrf", authHandler.CSRFToken)
		r.Post("/auth/logout", authHandler.Logout)
	})

	// Everything below requires a valid token; mutations also pass the
	// CSRF double-submit check.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(tokens, userRepo))
		r.Use(middleware.RateLimit(limiterStore, security.PolicyAPI))
		r.Use(middleware.CSRF(csrfGuard))

		r.Get("/auth/me", authHandler.Me)

		r.Route("/students", func(r chi.Router) {
			r.With(middleware.RequireRole(domain.RoleAdmin, domain.RoleCoach)).Get("/", studentHandler.List)
			r.With(middleware.RequireRole(domain.RoleAdmin)).Post("/", studentHandler.Create)
			r.Get("/{id}", studentHandler.Get)
			r.Put("/{id}", studentHandler.Update)
			r.With(middleware.RequireRole(domain.RoleAdmin)).Delete("/{id}", studentHandler.Delete)
		})

		r.Route("/coaches", func(r chi.Router) {
			r.Get("/", coachHandler.List)
			r.With(middleware.RequireRole(domain.RoleAdmin)).Post("/", coachHandler.Create)
			r.Get("/{id}", coachHandler.Get)
			r.With(middleware.RequireRole(domain.RoleAdmin)).Put("/{id}", coachHandler.Update)
			r.With(middleware.RequireRole(domain.RoleAdmin)).Delete("/{id}", coachHandler.Delete)
		})

		r.Route("/courses", func(r chi.Router) {
			r.Get("/", courseHandler.List)
			r.With(middleware.RequireRole(domain.RoleAdmin)).Post("/", courseHandler.Create)
			r.Get("/{id}", courseHandler.Get)
			r.With(middleware.RequireRole(domain.RoleAdmin, domain.RoleCoach)).Put("/{id}", courseHandler.Update)
			r.With(middleware.RequireRole(domain.RoleAdmin)).Delete("/{id}", courseHandler.Delete)
		})

		r.Route("/batches", func(r chi.Router) {
			r.Get("/", batchHandler.List)
			r.With(middleware.RequireRole(domain.RoleAdmin)).Post("/", batchHandler.Create)
			r.Get("/{id}", batchHandler.Get)
			r.With(middleware.RequireRole(domain.RoleAdmin)).Put("/{id}", batchHandler.Update)
			r.With(middleware.RequireRole(domain.RoleAdmin)).Delete("/{id}", batchHandler.Delete)
			r.With(middleware.RequireRole(domain.RoleAdmin)).Post("/{id}/students", batchHandler.AddStudent)
			r.With(middleware.RequireRole(domain.RoleAdmin)).Delete("/{id}/students/{studentId}", batchHandler.RemoveStudent)
		})

		r.With(middleware.RequireRole(domain.RoleAdmin)).Get("/dashboard/stats", dashboardHandler.Stats)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api server listening", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", slog.String("error", err.Error()))
	}

	slog.Info("server stopped gracefully")
}
