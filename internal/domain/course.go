package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrCourseFull     = errors.New("course is at maximum capacity")
)

// CourseStatus tracks the lifecycle of a course offering.
type CourseStatus string

const (
	CourseDraft     CourseStatus = "DRAFT"
	CourseActive    CourseStatus = "ACTIVE"
	CourseCompleted CourseStatus = "COMPLETED"
	CourseCancelled CourseStatus = "CANCELLED"
)

// ValidCourseStatus reports whether s is a known course status.
func ValidCourseStatus(s CourseStatus) bool {
	switch s {
	case CourseDraft, CourseActive, CourseCompleted, CourseCancelled:
		return true
	}
	return false
}

// Course represents a course offering taught by a coach.
type Course struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	CoachID       string       `json:"coachId,omitempty"`
	DurationWeeks int          `json:"durationWeeks"`
	Fee           float64      `json:"fee"`
	MaxStudents   int          `json:"maxStudents"`
	StartDate     time.Time    `json:"startDate"`
	EndDate       time.Time    `json:"endDate"`
	Status        CourseStatus `json:"status"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// CourseFilters narrows List results.
type CourseFilters struct {
	SearchTerm string
	Status     CourseStatus
	CoachID    string
}

// CourseRepository defines the interface for course data access
type CourseRepository interface {
	Create(ctx context.Context, course *Course) error
	GetByID(ctx context.Context, id string) (*Course, error)
	List(ctx context.Context, filters CourseFilters) ([]*Course, error)
	Update(ctx context.Context, course *Course) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status CourseStatus) (int, error)
}
