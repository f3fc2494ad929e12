package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrBatchNotFound   = errors.New("batch not found")
	ErrBatchNameExists = errors.New("batch name already exists")
)

// Batch groups students under one course and coach for a date range.
type Batch struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CourseID  string    `json:"courseId"`
	CoachID   string    `json:"coachId"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	CreatedAt time.Time `json:"createdAt"`

	StudentIDs []string `json:"studentIds,omitempty"`
}

// BatchRepository defines the interface for batch data access
type BatchRepository interface {
	Create(ctx context.Context, batch *Batch) error
	GetByID(ctx context.Context, id string) (*Batch, error)
	List(ctx context.Context) ([]*Batch, error)
	Update(ctx context.Context, batch *Batch) error
	Delete(ctx context.Context, id string) error
	// AddStudent enrolls a student, atomically refusing the insert
	// once the batch holds maxStudents members. maxStudents <= 0
	// means unlimited.
	AddStudent(ctx context.Context, batchID, studentID string, maxStudents int) error
	RemoveStudent(ctx context.Context, batchID, studentID string) error
}
