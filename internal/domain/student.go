package domain

import (
	"context"
	"errors"
	"time"
)

var ErrStudentNotFound = errors.New("student not found")

// Student represents an enrolled student. The account data (name, email)
// lives on the linked User record.
type Student struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Age            int       `json:"age"`
	Course         string    `json:"course"`
	FeesPaid       bool      `json:"feesPaid"`
	EnrollmentDate time.Time `json:"enrollmentDate"`

	// Joined from the users table on reads
	Name  string `json:"name"`
	Email string `json:"email"`
}

// StudentFilters narrows List results. Zero values mean "no filter".
type StudentFilters struct {
	SearchTerm string
	Course     string
	MinAge     int
	MaxAge     int
}

// StudentRepository defines the interface for student data access
type StudentRepository interface {
	Create(ctx context.Context, student *Student) error
	GetByID(ctx context.Context, id string) (*Student, error)
	GetByUserID(ctx context.Context, userID string) (*Student, error)
	List(ctx context.Context, filters StudentFilters) ([]*Student, error)
	Update(ctx context.Context, student *Student) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
