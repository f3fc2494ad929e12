package postgres

import (
	"context"
	"database/sql"

	"classhub/internal/domain"
)

// CourseRepository implements domain.CourseRepository for PostgreSQL
type CourseRepository struct {
	db *sql.DB
}

// NewCourseRepository creates a new PostgreSQL course repository
func NewCourseRepository(db *sql.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = `
		id, name, description, COALESCE(coach_id::text, ''), duration_weeks,
		fee, max_students, start_date, end_date, status, created_at, updated_at
`

// Create inserts a new course
func (r *CourseRepository) Create(ctx context.Context, course *domain.Course) error {
	query := `
		INSERT INTO courses (name, description, coach_id, duration_weeks, fee, max_students, start_date, end_date, status)
		VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		course.Name,
		course.Description,
		course.CoachID,
		course.DurationWeeks,
		course.Fee,
		course.MaxStudents,
		course.StartDate,
		course.EndDate,
		course.Status,
	).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
}

// GetByID retrieves a course by ID
func (r *CourseRepository) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	query := `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE id = $1
	`
	course := &domain.Course{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&course.ID,
		&course.Name,
		&course.Description,
		&course.CoachID,
		&course.DurationWeeks,
		&course.Fee,
		&course.MaxStudents,
		&course.StartDate,
		&course.EndDate,
		&course.Status,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrCourseNotFound
	}
	return course, err
}

// List retrieves courses matching the given filters
func (r *CourseRepository) List(ctx context.Context, filters domain.CourseFilters) ([]*domain.Course, error) {
	query := `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR coach_id = NULLIF($2, '')::uuid)
		  AND ($3 = '' OR name ILIKE '%' || $3 || '%')
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query,
		string(filters.Status),
		filters.CoachID,
		filters.SearchTerm,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []*domain.Course
	for rows.Next() {
		course := &domain.Course{}
		if err := rows.Scan(
			&course.ID,
			&course.Name,
			&course.Description,
			&course.CoachID,
			&course.DurationWeeks,
			&course.Fee,
			&course.MaxStudents,
			&course.StartDate,
			&course.EndDate,
			&course.Status,
			&course.CreatedAt,
			&course.UpdatedAt,
		); err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	return courses, rows.Err()
}

// Update modifies a course
func (r *CourseRepository) Update(ctx context.Context, course *domain.Course) error {
	query := `
		UPDATE courses
		SET name = $2, description = $3, coach_id = NULLIF($4, '')::uuid,
		    duration_weeks = $5, fee = $6, max_students = $7,
		    start_date = $8, end_date = $9, status = $10, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		course.ID,
		course.Name,
		course.Description,
		course.CoachID,
		course.DurationWeeks,
		course.Fee,
		course.MaxStudents,
		course.StartDate,
		course.EndDate,
		course.Status,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(result, domain.ErrCourseNotFound)
}

// Delete removes a course
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(result, domain.ErrCourseNotFound)
}

// Count returns the total number of courses
func (r *CourseRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&count)
	return count, err
}

// CountByStatus returns the number of courses in the given status
func (r *CourseRepository) CountByStatus(ctx context.Context, status domain.CourseStatus) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses WHERE status = $1`, string(status)).Scan(&count)
	return count, err
}
