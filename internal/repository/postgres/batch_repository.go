package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"classhub/internal/domain"
)

// BatchRepository implements domain.BatchRepository for PostgreSQL.
// Membership lives in the batch_students join table; multi-statement
// operations run through the transaction manager.
type BatchRepository struct {
	db *sql.DB
	tm *TxManager
}

// NewBatchRepository creates a new PostgreSQL batch repository
func NewBatchRepository(db *sql.DB) *BatchRepository {
	return &BatchRepository{db: db, tm: NewTxManager(db)}
}

// Create inserts a new batch
func (r *BatchRepository) Create(ctx context.Context, batch *domain.Batch) error {
	query := `
		INSERT INTO batches (name, course_id, coach_id, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		batch.Name,
		batch.CourseID,
		batch.CoachID,
		batch.StartDate,
		batch.EndDate,
	).Scan(&batch.ID, &batch.CreatedAt)

	if err != nil {
		if IsUniqueViolation(err, "batches_name_key") {
			return domain.ErrBatchNameExists
		}
		return err
	}

	return nil
}

// GetByID retrieves a batch with its student membership
func (r *BatchRepository) GetByID(ctx context.Context, id string) (*domain.Batch, error) {
	query := `
		SELECT b.id, b.name, b.course_id, b.coach_id, b.start_date, b.end_date, b.created_at,
		       COALESCE(array_agg(bs.student_id) FILTER (WHERE bs.student_id IS NOT NULL), '{}')
		FROM batches b
		LEFT JOIN batch_students bs ON bs.batch_id = b.id
		WHERE b.id = $1
		GROUP BY b.id
	`
	batch := &domain.Batch{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&batch.ID,
		&batch.Name,
		&batch.CourseID,
		&batch.CoachID,
		&batch.StartDate,
		&batch.EndDate,
		&batch.CreatedAt,
		pq.Array(&batch.StudentIDs),
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrBatchNotFound
	}
	return batch, err
}

// List retrieves all batches with their student membership
func (r *BatchRepository) List(ctx context.Context) ([]*domain.Batch, error) {
	query := `
		SELECT b.id, b.name, b.course_id, b.coach_id, b.start_date, b.end_date, b.created_at,
		       COALESCE(array_agg(bs.student_id) FILTER (WHERE bs.student_id IS NOT NULL), '{}')
		FROM batches b
		LEFT JOIN batch_students bs ON bs.batch_id = b.id
		GROUP BY b.id
		ORDER BY b.start_date DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []*domain.Batch
	for rows.Next() {
		batch := &domain.Batch{}
		if err := rows.Scan(
			&batch.ID,
			&batch.Name,
			&batch.CourseID,
			&batch.CoachID,
			&batch.StartDate,
			&batch.EndDate,
			&batch.CreatedAt,
			pq.Array(&batch.StudentIDs),
		); err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	return batches, rows.Err()
}

// Update modifies a batch
func (r *BatchRepository) Update(ctx context.Context, batch *domain.Batch) error {
	query := `
		UPDATE batches
		SET name = $2, start_date = $3, end_date = $4
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		batch.ID,
		batch.Name,
		batch.StartDate,
		batch.EndDate,
	)
	if err != nil {
		if IsUniqueViolation(err, "batches_name_key") {
			return domain.ErrBatchNameExists
		}
		return err
	}
	return requireRowAffected(result, domain.ErrBatchNotFound)
}

// Delete removes a batch and its membership rows in one transaction
func (r *BatchRepository) Delete(ctx context.Context, id string) error {
	return r.tm.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM batch_students WHERE batch_id = $1`, id); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM batches WHERE id = $1`, id)
		if err != nil {
			return err
		}
		return requireRowAffected(result, domain.ErrBatchNotFound)
	})
}

// AddStudent enrolls a student into a batch. Adding an existing member
// is a no-op. The batch row is locked for the duration of the
// transaction so the capacity check and the insert are atomic under
// concurrent enrollments.
func (r *BatchRepository) AddStudent(ctx context.Context, batchID, studentID string, maxStudents int) error {
	return r.tm.WithTx(ctx, func(tx *sql.Tx) error {
		var lockedID string
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM batches WHERE id = $1 FOR UPDATE`, batchID,
		).Scan(&lockedID)
		if err == sql.ErrNoRows {
			return domain.ErrBatchNotFound
		}
		if err != nil {
			return err
		}

		var member bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM batch_students WHERE batch_id = $1 AND student_id = $2)`,
			batchID, studentID,
		).Scan(&member); err != nil {
			return err
		}
		if member {
			return nil
		}

		if maxStudents > 0 {
			var enrolled int
			if err := tx.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM batch_students WHERE batch_id = $1`, batchID,
			).Scan(&enrolled); err != nil {
				return err
			}
			if enrolled >= maxStudents {
				return domain.ErrCourseFull
			}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO batch_students (batch_id, student_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, batchID, studentID)
		return err
	})
}

// RemoveStudent removes a student from a batch. Removing a non-member
// is a no-op.
func (r *BatchRepository) RemoveStudent(ctx context.Context, batchID, studentID string) error {
	return r.tm.WithTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM batches WHERE id = $1)`, batchID,
		).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrBatchNotFound
		}

		_, err := tx.ExecContext(ctx,
			`DELETE FROM batch_students WHERE batch_id = $1 AND student_id = $2`,
			batchID, studentID,
		)
		return err
	})
}
