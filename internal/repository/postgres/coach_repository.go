package postgres

import (
	"context"
	"database/sql"

	"classhub/internal/domain"
)

// CoachRepository implements domain.CoachRepository for PostgreSQL
type CoachRepository struct {
	db *sql.DB
}

// NewCoachRepository creates a new PostgreSQL coach repository
func NewCoachRepository(db *sql.DB) *CoachRepository {
	return &CoachRepository{db: db}
}

const coachColumns = `
		c.id, c.user_id, c.expertise, c.join_date,
		u.name, u.email
`

// Create inserts a new coach record
func (r *CoachRepository) Create(ctx context.Context, coach *domain.Coach) error {
	query := `
		INSERT INTO coaches (user_id, expertise)
		VALUES ($1, $2)
		RETURNING id, join_date
	`
	return r.db.QueryRowContext(ctx, query,
		coach.UserID,
		coach.Expertise,
	).Scan(&coach.ID, &coach.JoinDate)
}

// GetByID retrieves a coach by ID
func (r *CoachRepository) GetByID(ctx context.Context, id string) (*domain.Coach, error) {
	query := `
		SELECT ` + coachColumns + `
		FROM coaches c
		JOIN users u ON u.id = c.user_id
		WHERE c.id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByUserID retrieves a coach by the linked user account
func (r *CoachRepository) GetByUserID(ctx context.Context, userID string) (*domain.Coach, error) {
	query := `
		SELECT ` + coachColumns + `
		FROM coaches c
		JOIN users u ON u.id = c.user_id
		WHERE c.user_id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID))
}

// List retrieves all coaches
func (r *CoachRepository) List(ctx context.Context) ([]*domain.Coach, error) {
	query := `
		SELECT ` + coachColumns + `
		FROM coaches c
		JOIN users u ON u.id = c.user_id
		ORDER BY c.join_date DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coaches []*domain.Coach
	for rows.Next() {
		coach := &domain.Coach{}
		if err := rows.Scan(
			&coach.ID,
			&coach.UserID,
			&coach.Expertise,
			&coach.JoinDate,
			&coach.Name,
			&coach.Email,
		); err != nil {
			return nil, err
		}
		coaches = append(coaches, coach)
	}
	return coaches, rows.Err()
}

// Update modifies a coach record
func (r *CoachRepository) Update(ctx context.Context, coach *domain.Coach) error {
	query := `
		UPDATE coaches
		SET expertise = $2
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, coach.ID, coach.Expertise)
	if err != nil {
		return err
	}
	return requireRowAffected(result, domain.ErrCoachNotFound)
}

// Delete removes a coach record
func (r *CoachRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM coaches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(result, domain.ErrCoachNotFound)
}

// Count returns the total number of coaches
func (r *CoachRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM coaches`).Scan(&count)
	return count, err
}

func (r *CoachRepository) scanOne(row *sql.Row) (*domain.Coach, error) {
	coach := &domain.Coach{}
	err := row.Scan(
		&coach.ID,
		&coach.UserID,
		&coach.Expertise,
		&coach.JoinDate,
		&coach.Name,
		&coach.Email,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrCoachNotFound
	}
	return coach, err
}
