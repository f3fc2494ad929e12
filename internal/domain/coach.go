package domain

import (
	"context"
	"errors"
	"time"
)

var ErrCoachNotFound = errors.New("coach not found")

// Coach represents a teaching staff member linked to a User account.
type Coach struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Expertise string    `json:"expertise"`
	JoinDate  time.Time `json:"joinDate"`

	// Joined from the users table on reads
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CoachRepository defines the interface for coach data access
type CoachRepository interface {
	Create(ctx context.Context, coach *Coach) error
	GetByID(ctx context.Context, id string) (*Coach, error)
	GetByUserID(ctx context.Context, userID string) (*Coach, error)
	List(ctx context.Context) ([]*Coach, error)
	Update(ctx context.Context, coach *Coach) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
