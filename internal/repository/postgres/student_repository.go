package postgres

import (
	"context"
	"database/sql"
	"time"

	"classhub/internal/domain"
)

// StudentRepository implements domain.StudentRepository for PostgreSQL.
// Name and email come from the joined users row.
type StudentRepository struct {
	db *sql.DB
}

// NewStudentRepository creates a new PostgreSQL student repository
func NewStudentRepository(db *sql.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `
		s.id, s.user_id, s.age, s.course, s.fees_paid, s.enrollment_date,
		u.name, u.email
`

// Create inserts a new student record
func (r *StudentRepository) Create(ctx context.Context, student *domain.Student) error {
	defer observeQuery("insert", "students", time.Now())

	query := `
		INSERT INTO students (user_id, age, course, fees_paid)
		VALUES ($1, $2, $3, $4)
		RETURNING id, enrollment_date
	`
	return r.db.QueryRowContext(ctx, query,
		student.UserID,
		student.Age,
		student.Course,
		student.FeesPaid,
	).Scan(&student.ID, &student.EnrollmentDate)
}

// GetByID retrieves a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*domain.Student, error) {
	defer observeQuery("select", "students", time.Now())

	query := `
		SELECT ` + studentColumns + `
		FROM students s
		JOIN users u ON u.id = s.user_id
		WHERE s.id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByUserID retrieves a student by the linked user account
func (r *StudentRepository) GetByUserID(ctx context.Context, userID string) (*domain.Student, error) {
	defer observeQuery("select", "students", time.Now())

	query := `
		SELECT ` + studentColumns + `
		FROM students s
		JOIN users u ON u.id = s.user_id
		WHERE s.user_id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID))
}

// List retrieves students matching the given filters
func (r *StudentRepository) List(ctx context.Context, filters domain.StudentFilters) ([]*domain.Student, error) {
	defer observeQuery("select", "students", time.Now())

	query := `
		SELECT ` + studentColumns + `
		FROM students s
		JOIN users u ON u.id = s.user_id
		WHERE ($1 = '' OR s.course = $1)
		  AND ($2 = '' OR u.name ILIKE '%' || $2 || '%' OR u.email ILIKE '%' || $2 || '%')
		  AND ($3 = 0 OR s.age >= $3)
		  AND ($4 = 0 OR s.age <= $4)
		ORDER BY s.enrollment_date DESC
	`
	rows, err := r.db.QueryContext(ctx, query,
		filters.Course,
		filters.SearchTerm,
		filters.MinAge,
		filters.MaxAge,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []*domain.Student
	for rows.Next() {
		student := &domain.Student{}
		if err := rows.Scan(
			&student.ID,
			&student.UserID,
			&student.Age,
			&student.Course,
			&student.FeesPaid,
			&student.EnrollmentDate,
			&student.Name,
			&student.Email,
		); err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	return students, rows.Err()
}

// Update modifies a student record
func (r *StudentRepository) Update(ctx context.Context, student *domain.Student) error {
	defer observeQuery("update", "students", time.Now())

	query := `
		UPDATE students
		SET age = $2, course = $3, fees_paid = $4
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		student.ID,
		student.Age,
		student.Course,
		student.FeesPaid,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(result, domain.ErrStudentNotFound)
}

// Delete removes a student record
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	defer observeQuery("delete", "students", time.Now())

	result, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(result, domain.ErrStudentNotFound)
}

// Count returns the total number of students
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	defer observeQuery("select", "students", time.Now())

	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM students`).Scan(&count)
	return count, err
}

func (r *StudentRepository) scanOne(row *sql.Row) (*domain.Student, error) {
	student := &domain.Student{}
	err := row.Scan(
		&student.ID,
		&student.UserID,
		&student.Age,
		&student.Course,
		&student.FeesPaid,
		&student.EnrollmentDate,
		&student.Name,
		&student.Email,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrStudentNotFound
	}
	return student, err
}
