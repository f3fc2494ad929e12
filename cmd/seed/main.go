package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"classhub/internal/config"
	"classhub/internal/domain"
	"classhub/internal/observability"
	"classhub/internal/repository/postgres"
	"classhub/internal/security"
	"classhub/internal/service"
)

// Seeds an admin account plus a small set of demo records. Safe to run
// repeatedly: duplicate emails are skipped, not treated as failures.
func main() {
	cfg := config.Load()
	observability.InitLogger("info", "text")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := config.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		slog.Error("database ping failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	tokens, err := security.NewTokenService(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	if err != nil {
		slog.Error("token service init failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	userRepo := postgres.NewUserRepository(db)
	studentRepo := postgres.NewStudentRepository(db)
	coachRepo := postgres.NewCoachRepository(db)
	courseRepo := postgres.NewCourseRepository(db)

	authService := service.NewAuthService(userRepo, tokens)
	studentService := service.NewStudentService(studentRepo, userRepo)
	coachService := service.NewCoachService(coachRepo, userRepo)
	courseService := service.NewCourseService(courseRepo, coachRepo)

	seedPassword := os.Getenv("SEED_PASSWORD")
	if seedPassword == "" {
		seedPassword = "password123"
	}

	admin, _, err := authService.Register(ctx, service.RegisterInput{
		Name:     "Admin User",
		Email:    "admin@example.com",
		Password: seedPassword,
		Role:     domain.RoleAdmin,
	})
	switch {
	case err == nil:
		slog.Info("created admin user", slog.String("id", admin.ID))
	case errors.Is(err, domain.ErrEmailExists):
		slog.Info("admin user already exists, skipping")
	default:
		slog.Error("failed to create admin user", slog.String("error", err.Error()))
		os.Exit(1)
	}

	coach, err := coachService.Create(ctx, service.CreateCoachInput{
		Name:      "Coach John",
		Email:     "coach@example.com",
		Password:  seedPassword,
		Expertise: "Mathematics",
	})
	switch {
	case err == nil:
		slog.Info("created demo coach", slog.String("id", coach.ID))
	case errors.Is(err, domain.ErrEmailExists):
		slog.Info("demo coach already exists, skipping")
	default:
		slog.Error("failed to create demo coach", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var coachID string
	if coach != nil {
		coachID = coach.ID
	}

	start := time.Now()
	course, err := courseService.Create(ctx, service.CreateCourseInput{
		Name:          "Full Stack Development",
		Description:   "Learn full stack web development from scratch",
		CoachID:       coachID,
		DurationWeeks: 26,
		Fee:           500,
		MaxStudents:   30,
		StartDate:     start,
		EndDate:       start.Add(26 * 7 * 24 * time.Hour),
		Status:        domain.CourseActive,
	})
	if err != nil {
		slog.Error("failed to create demo course", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("created demo course", slog.String("id", course.ID))

	student, err := studentService.Create(ctx, service.CreateStudentInput{
		Name:     "Demo Student",
		Email:    "student@example.com",
		Password: seedPassword,
		Age:      21,
		Course:   course.Name,
	})
	switch {
	case err == nil:
		slog.Info("created demo student", slog.String("id", student.ID))
	case errors.Is(err, domain.ErrEmailExists):
		slog.Info("demo student already exists, skipping")
	default:
		slog.Error("failed to create demo student", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seeding done")
}
