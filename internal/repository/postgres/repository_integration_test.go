//go:build integration
// +build integration

package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"classhub/internal/domain"
	"classhub/internal/repository/postgres"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestPostgresContainer manages PostgreSQL container lifecycle for integration tests
type TestPostgresContainer struct {
	container testcontainers.Container
	db        *sql.DB
	connStr   string
}

// setupPostgres starts a PostgreSQL container and returns a database connection
func setupPostgres(t *testing.T) (*TestPostgresContainer, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		).WithDeadline(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	// Wait for PostgreSQL to be fully ready
	time.Sleep(2 * time.Second)

	db, err := sql.Open("postgres", connStr)
	require.NoError(t, err, "failed to connect to PostgreSQL")

	// Run migrations
	err = runMigrations(db)
	require.NoError(t, err, "failed to run migrations")

	cleanup := func() {
		db.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return &TestPostgresContainer{
		container: container,
		db:        db,
		connStr:   connStr,
	}, cleanup
}

// runMigrations creates the database schema for testing
func runMigrations(db *sql.DB) error {
	schema := `
		CREATE EXTENSION IF NOT EXISTS "pgcrypto";

		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(100) NOT NULL CHECK (length(name) >= 1),
			email VARCHAR(255) UNIQUE NOT NULL CHECK (email ~* '^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$'),
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL CHECK (role IN ('ADMIN', 'COACH', 'STUDENT')),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS students (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID UNIQUE NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			age INTEGER NOT NULL CHECK (age BETWEEN 16 AND 100),
			course VARCHAR(100) NOT NULL,
			fees_paid BOOLEAN DEFAULT FALSE NOT NULL,
			enrollment_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS coaches (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID UNIQUE NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			expertise VARCHAR(100) NOT NULL,
			join_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS courses (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(100) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			coach_id UUID REFERENCES coaches(id) ON DELETE SET NULL,
			duration_weeks INTEGER NOT NULL DEFAULT 0,
			fee NUMERIC(10,2) NOT NULL DEFAULT 0,
			max_students INTEGER NOT NULL DEFAULT 0,
			start_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			end_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			status VARCHAR(20) NOT NULL DEFAULT 'DRAFT' CHECK (status IN ('DRAFT', 'ACTIVE', 'COMPLETED', 'CANCELLED')),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS batches (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(100) UNIQUE NOT NULL,
			course_id UUID NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
			coach_id UUID NOT NULL REFERENCES coaches(id) ON DELETE CASCADE,
			start_date TIMESTAMP NOT NULL,
			end_date TIMESTAMP NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS batch_students (
			batch_id UUID NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
			student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
			added_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP NOT NULL,
			PRIMARY KEY (batch_id, student_id)
		);
	`
	_, err := db.Exec(schema)
	return err
}

func createUser(t *testing.T, repo *postgres.UserRepository, name, email string, role domain.Role) *domain.User {
	t.Helper()
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: "hashed_password",
		Role:         role,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

// TestUserRepository_Integration tests the UserRepository with a real PostgreSQL database
func TestUserRepository_Integration(t *testing.T) {
	pg, cleanup := setupPostgres(t)
	defer cleanup()

	repo := postgres.NewUserRepository(pg.db)

	t.Run("Create_and_GetByID", func(t *testing.T) {
		user := createUser(t, repo, "Jane Doe", "jane@example.com", domain.RoleAdmin)
		assert.NotEmpty(t, user.ID, "user ID should be set after creation")
		assert.False(t, user.CreatedAt.IsZero(), "created_at should be set")

		retrieved, err := repo.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.ID, retrieved.ID)
		assert.Equal(t, "Jane Doe", retrieved.Name)
		assert.Equal(t, domain.RoleAdmin, retrieved.Role)
	})

	t.Run("Create_and_GetByEmail", func(t *testing.T) {
		user := createUser(t, repo, "John Smith", "john@example.com", domain.RoleCoach)

		retrieved, err := repo.GetByEmail(context.Background(), "john@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, retrieved.ID)
	})

	t.Run("Create_DuplicateEmail", func(t *testing.T) {
		createUser(t, repo, "First", "duplicate@example.com", domain.RoleStudent)

		err := repo.Create(context.Background(), &domain.User{
			Name:         "Second",
			Email:        "duplicate@example.com",
			PasswordHash: "hash",
			Role:         domain.RoleStudent,
		})
		assert.ErrorIs(t, err, domain.ErrEmailExists)
	})

	t.Run("List_and_Count_ByRole", func(t *testing.T) {
		createUser(t, repo, "Coach A", "coach-a@example.com", domain.RoleCoach)
		createUser(t, repo, "Coach B", "coach-b@example.com", domain.RoleCoach)

		coaches, err := repo.List(context.Background(), domain.RoleCoach)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(coaches), 2)

		count, err := repo.Count(context.Background(), domain.RoleCoach)
		require.NoError(t, err)
		assert.Equal(t, len(coaches), count)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		_, err := repo.GetByID(context.Background(), "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

// TestStudentRepository_Integration exercises student CRUD with joined user fields
func TestStudentRepository_Integration(t *testing.T) {
	pg, cleanup := setupPostgres(t)
	defer cleanup()

	userRepo := postgres.NewUserRepository(pg.db)
	studentRepo := postgres.NewStudentRepository(pg.db)

	user := createUser(t, userRepo, "Student One", "student1@example.com", domain.RoleStudent)

	t.Run("Create_and_GetByID", func(t *testing.T) {
		student := &domain.Student{
			UserID: user.ID,
			Age:    21,
			Course: "Go Fundamentals",
		}
		require.NoError(t, studentRepo.Create(context.Background(), student))
		assert.NotEmpty(t, student.ID)

		retrieved, err := studentRepo.GetByID(context.Background(), student.ID)
		require.NoError(t, err)
		assert.Equal(t, "Student One", retrieved.Name, "name should be joined from users")
		assert.Equal(t, "student1@example.com", retrieved.Email)
		assert.Equal(t, 21, retrieved.Age)
	})

	t.Run("List_FilterByCourse", func(t *testing.T) {
		students, err := studentRepo.List(context.Background(), domain.StudentFilters{Course: "Go Fundamentals"})
		require.NoError(t, err)
		assert.Len(t, students, 1)

		none, err := studentRepo.List(context.Background(), domain.StudentFilters{Course: "Nonexistent"})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("Update_and_Delete", func(t *testing.T) {
		student, err := studentRepo.GetByUserID(context.Background(), user.ID)
		require.NoError(t, err)

		student.FeesPaid = true
		student.Course = "Advanced Go"
		require.NoError(t, studentRepo.Update(context.Background(), student))

		updated, err := studentRepo.GetByID(context.Background(), student.ID)
		require.NoError(t, err)
		assert.True(t, updated.FeesPaid)
		assert.Equal(t, "Advanced Go", updated.Course)

		require.NoError(t, studentRepo.Delete(context.Background(), student.ID))
		_, err = studentRepo.GetByID(context.Background(), student.ID)
		assert.ErrorIs(t, err, domain.ErrStudentNotFound)
	})
}

// TestBatchRepository_Integration exercises batch membership against real FK constraints
func TestBatchRepository_Integration(t *testing.T) {
	pg, cleanup := setupPostgres(t)
	defer cleanup()

	ctx := context.Background()
	userRepo := postgres.NewUserRepository(pg.db)
	coachRepo := postgres.NewCoachRepository(pg.db)
	courseRepo := postgres.NewCourseRepository(pg.db)
	studentRepo := postgres.NewStudentRepository(pg.db)
	batchRepo := postgres.NewBatchRepository(pg.db)

	coachUser := createUser(t, userRepo, "Coach", "batch-coach@example.com", domain.RoleCoach)
	coach := &domain.Coach{UserID: coachUser.ID, Expertise: "Go"}
	require.NoError(t, coachRepo.Create(ctx, coach))

	course := &domain.Course{
		Name:      "Go Fundamentals",
		CoachID:   coach.ID,
		StartDate: time.Now(),
		EndDate:   time.Now().Add(24 * time.Hour),
		Status:    domain.CourseActive,
	}
	require.NoError(t, courseRepo.Create(ctx, course))

	studentUser := createUser(t, userRepo, "Member", "batch-student@example.com", domain.RoleStudent)
	student := &domain.Student{UserID: studentUser.ID, Age: 20, Course: "Go Fundamentals"}
	require.NoError(t, studentRepo.Create(ctx, student))

	batch := &domain.Batch{
		Name:      "Morning Batch",
		CourseID:  course.ID,
		CoachID:   coach.ID,
		StartDate: time.Now(),
		EndDate:   time.Now().Add(30 * 24 * time.Hour),
	}
	require.NoError(t, batchRepo.Create(ctx, batch))

	t.Run("AddStudent_and_GetByID", func(t *testing.T) {
		require.NoError(t, batchRepo.AddStudent(ctx, batch.ID, student.ID, 0))

		retrieved, err := batchRepo.GetByID(ctx, batch.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{student.ID}, retrieved.StudentIDs)
	})

	t.Run("AddStudent_Idempotent", func(t *testing.T) {
		require.NoError(t, batchRepo.AddStudent(ctx, batch.ID, student.ID, 0))

		retrieved, err := batchRepo.GetByID(ctx, batch.ID)
		require.NoError(t, err)
		assert.Len(t, retrieved.StudentIDs, 1)
	})

	t.Run("AddStudent_Capacity", func(t *testing.T) {
		otherUser := createUser(t, userRepo, "Overflow", "batch-overflow@example.com", domain.RoleStudent)
		other := &domain.Student{UserID: otherUser.ID, Age: 21, Course: "Go Fundamentals"}
		require.NoError(t, studentRepo.Create(ctx, other))

		err := batchRepo.AddStudent(ctx, batch.ID, other.ID, 1)
		assert.ErrorIs(t, err, domain.ErrCourseFull)

		// Re-adding an existing member stays a no-op at capacity.
		require.NoError(t, batchRepo.AddStudent(ctx, batch.ID, student.ID, 1))
	})

	t.Run("RemoveStudent", func(t *testing.T) {
		require.NoError(t, batchRepo.RemoveStudent(ctx, batch.ID, student.ID))

		retrieved, err := batchRepo.GetByID(ctx, batch.ID)
		require.NoError(t, err)
		assert.Empty(t, retrieved.StudentIDs)
	})

	t.Run("DuplicateName", func(t *testing.T) {
		err := batchRepo.Create(ctx, &domain.Batch{
			Name:      "Morning Batch",
			CourseID:  course.ID,
			CoachID:   coach.ID,
			StartDate: time.Now(),
			EndDate:   time.Now(),
		})
		assert.ErrorIs(t, err, domain.ErrBatchNameExists)
	})

	t.Run("Delete_RemovesMembership", func(t *testing.T) {
		require.NoError(t, batchRepo.AddStudent(ctx, batch.ID, student.ID, 0))
		require.NoError(t, batchRepo.Delete(ctx, batch.ID))

		_, err := batchRepo.GetByID(ctx, batch.ID)
		assert.ErrorIs(t, err, domain.ErrBatchNotFound)
	})

	t.Run("Concurrent_Enrollment_Respects_Capacity", func(t *testing.T) {
		crowded := &domain.Batch{
			Name:      "Crowded Batch",
			CourseID:  course.ID,
			CoachID:   coach.ID,
			StartDate: time.Now(),
			EndDate:   time.Now().Add(30 * 24 * time.Hour),
		}
		require.NoError(t, batchRepo.Create(ctx, crowded))

		const seats = 2
		candidates := make([]*domain.Student, 4)
		for i := range candidates {
			u := createUser(t, userRepo, "Racer",
				fmt.Sprintf("batch-racer-%d@example.com", i), domain.RoleStudent)
			s := &domain.Student{UserID: u.ID, Age: 22, Course: "Go Fundamentals"}
			require.NoError(t, studentRepo.Create(ctx, s))
			candidates[i] = s
		}

		errs := make(chan error, len(candidates))
		var wg sync.WaitGroup
		for _, s := range candidates {
			wg.Add(1)
			go func(studentID string) {
				defer wg.Done()
				errs <- batchRepo.AddStudent(ctx, crowded.ID, studentID, seats)
			}(s.ID)
		}
		wg.Wait()
		close(errs)

		var enrolled, rejected int
		for err := range errs {
			switch {
			case err == nil:
				enrolled++
			case errors.Is(err, domain.ErrCourseFull):
				rejected++
			default:
				t.Fatalf("unexpected enrollment error: %v", err)
			}
		}
		assert.Equal(t, seats, enrolled)
		assert.Equal(t, len(candidates)-seats, rejected)

		retrieved, err := batchRepo.GetByID(ctx, crowded.ID)
		require.NoError(t, err)
		assert.Len(t, retrieved.StudentIDs, seats)
	})
}
