package service

import (
	"context"
	"time"

	"classhub/internal/domain"
	"classhub/internal/security"
)

// CourseService manages course offerings.
type CourseService struct {
	courses domain.CourseRepository
	coaches domain.CoachRepository
}

func NewCourseService(courses domain.CourseRepository, coaches domain.CoachRepository) *CourseService {
	return &CourseService{courses: courses, coaches: coaches}
}

type CreateCourseInput struct {
	Name          string
	Description   string
	CoachID       string
	DurationWeeks int
	Fee           float64
	MaxStudents   int
	StartDate     time.Time
	EndDate       time.Time
	Status        domain.CourseStatus
}

type UpdateCourseInput struct {
	Name          *string
	Description   *string
	CoachID       *string
	DurationWeeks *int
	Fee           *float64
	MaxStudents   *int
	StartDate     *time.Time
	EndDate       *time.Time
	Status        *domain.CourseStatus
}

func (s *CourseService) Create(ctx context.Context, in CreateCourseInput) (*domain.Course, error) {
	name := security.SanitizeCourseName(in.Name)
	if !validCourseName(name) {
		return nil, invalidField("name", "must be between 1 and 100 characters")
	}
	if in.DurationWeeks < 0 {
		return nil, invalidField("durationWeeks", "must not be negative")
	}
	if in.Fee < 0 {
		return nil, invalidField("fee", "must not be negative")
	}
	if in.MaxStudents < 0 {
		return nil, invalidField("maxStudents", "must not be negative")
	}
	if !in.EndDate.IsZero() && !in.StartDate.IsZero() && in.EndDate.Before(in.StartDate) {
		return nil, invalidField("endDate", "must not precede startDate")
	}

	status := in.Status
	if status == "" {
		status = domain.CourseDraft
	}
	if !domain.ValidCourseStatus(status) {
		return nil, invalidField("status", "unknown course status")
	}

	if in.CoachID != "" {
		if _, err := s.coaches.GetByID(ctx, in.CoachID); err != nil {
			return nil, err
		}
	}

	course := &domain.Course{
		Name:          name,
		Description:   security.SanitizeText(in.Description, 2000),
		CoachID:       in.CoachID,
		DurationWeeks: in.DurationWeeks,
		Fee:           in.Fee,
		MaxStudents:   in.MaxStudents,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		Status:        status,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) Get(ctx context.Context, id string) (*domain.Course, error) {
	return s.courses.GetByID(ctx, id)
}

func (s *CourseService) List(ctx context.Context, filters domain.CourseFilters) ([]*domain.Course, error) {
	filters.SearchTerm = security.SanitizeText(filters.SearchTerm, 100)
	if filters.Status != "" && !domain.ValidCourseStatus(filters.Status) {
		return nil, invalidField("status", "unknown course status")
	}
	return s.courses.List(ctx, filters)
}

func (s *CourseService) Update(ctx context.Context, id string, in UpdateCourseInput) (*domain.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := security.SanitizeCourseName(*in.Name)
		if !validCourseName(name) {
			return nil, invalidField("name", "must be between 1 and 100 characters")
		}
		course.Name = name
	}
	if in.Description != nil {
		course.Description = security.SanitizeText(*in.Description, 2000)
	}
	if in.CoachID != nil {
		if *in.CoachID != "" {
			if _, err := s.coaches.GetByID(ctx, *in.CoachID); err != nil {
				return nil, err
			}
		}
		course.CoachID = *in.CoachID
	}
	if in.DurationWeeks != nil {
		if *in.DurationWeeks < 0 {
			return nil, invalidField("durationWeeks", "must not be negative")
		}
		course.DurationWeeks = *in.DurationWeeks
	}
	if in.Fee != nil {
		if *in.Fee < 0 {
			return nil, invalidField("fee", "must not be negative")
		}
		course.Fee = *in.Fee
	}
	if in.MaxStudents != nil {
		if *in.MaxStudents < 0 {
			return nil, invalidField("maxStudents", "must not be negative")
		}
		course.MaxStudents = *in.MaxStudents
	}
	if in.StartDate != nil {
		course.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		course.EndDate = *in.EndDate
	}
	if !course.EndDate.IsZero() && !course.StartDate.IsZero() && course.EndDate.Before(course.StartDate) {
		return nil, invalidField("endDate", "must not precede startDate")
	}
	if in.Status != nil {
		if !domain.ValidCourseStatus(*in.Status) {
			return nil, invalidField("status", "unknown course status")
		}
		course.Status = *in.Status
	}

	if err := s.courses.Update(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) Delete(ctx context.Context, id string) error {
	return s.courses.Delete(ctx, id)
}

func (s *CourseService) Count(ctx context.Context) (int, error) {
	return s.courses.Count(ctx)
}

func (s *CourseService) CountByStatus(ctx context.Context, status domain.CourseStatus) (int, error) {
	return s.courses.CountByStatus(ctx, status)
}
