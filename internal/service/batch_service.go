package service

import (
	"context"
	"time"

	"classhub/internal/domain"
	"classhub/internal/security"
)

// BatchService manages batches and their student membership.
type BatchService struct {
	batches  domain.BatchRepository
	courses  domain.CourseRepository
	coaches  domain.CoachRepository
	students domain.StudentRepository
}

func NewBatchService(
	batches domain.BatchRepository,
	courses domain.CourseRepository,
	coaches domain.CoachRepository,
	students domain.StudentRepository,
) *BatchService {
	return &BatchService{batches: batches, courses: courses, coaches: coaches, students: students}
}

type CreateBatchInput struct {
	Name      string
	CourseID  string
	CoachID   string
	StartDate time.Time
	EndDate   time.Time
}

type UpdateBatchInput struct {
	Name      *string
	StartDate *time.Time
	EndDate   *time.Time
}

func (s *BatchService) Create(ctx context.Context, in CreateBatchInput) (*domain.Batch, error) {
	name := security.SanitizeText(in.Name, 100)
	if name == "" {
		return nil, invalidField("name", "is required")
	}
	if in.StartDate.IsZero() {
		return nil, invalidField("startDate", "is required")
	}
	if !in.EndDate.IsZero() && in.EndDate.Before(in.StartDate) {
		return nil, invalidField("endDate", "must not precede startDate")
	}

	if _, err := s.courses.GetByID(ctx, in.CourseID); err != nil {
		return nil, err
	}
	if _, err := s.coaches.GetByID(ctx, in.CoachID); err != nil {
		return nil, err
	}

	batch := &domain.Batch{
		Name:      name,
		CourseID:  in.CourseID,
		CoachID:   in.CoachID,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
	}
	if err := s.batches.Create(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *BatchService) Get(ctx context.Context, id string) (*domain.Batch, error) {
	return s.batches.GetByID(ctx, id)
}

func (s *BatchService) List(ctx context.Context) ([]*domain.Batch, error) {
	return s.batches.List(ctx)
}

func (s *BatchService) Update(ctx context.Context, id string, in UpdateBatchInput) (*domain.Batch, error) {
	batch, err := s.batches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := security.SanitizeText(*in.Name, 100)
		if name == "" {
			return nil, invalidField("name", "is required")
		}
		batch.Name = name
	}
	if in.StartDate != nil {
		batch.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		batch.EndDate = *in.EndDate
	}
	if !batch.EndDate.IsZero() && batch.EndDate.Before(batch.StartDate) {
		return nil, invalidField("endDate", "must not precede startDate")
	}

	if err := s.batches.Update(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *BatchService) Delete(ctx context.Context, id string) error {
	return s.batches.Delete(ctx, id)
}

// AddStudent enrolls a student into a batch. The course's capacity
// limit is passed down so the repository enforces it atomically with
// the insert.
func (s *BatchService) AddStudent(ctx context.Context, batchID, studentID string) error {
	batch, err := s.batches.GetByID(ctx, batchID)
	if err != nil {
		return err
	}
	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		return err
	}

	course, err := s.courses.GetByID(ctx, batch.CourseID)
	if err != nil {
		return err
	}

	return s.batches.AddStudent(ctx, batchID, studentID, course.MaxStudents)
}

func (s *BatchService) RemoveStudent(ctx context.Context, batchID, studentID string) error {
	return s.batches.RemoveStudent(ctx, batchID, studentID)
}
