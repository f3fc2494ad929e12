package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
)

// Role is the authorization level attached to a user account.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleCoach   Role = "COACH"
	RoleStudent Role = "STUDENT"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleCoach || r == RoleStudent
}

// User represents an account that can sign in
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Principal is the authenticated identity attached to a request after
// token verification. Immutable for the lifetime of one request.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
	Name  string `json:"name"`
}

// CanAccessOwn reports whether the principal may act on a resource owned
// by ownerID. Admins may act on anyone's resources.
func (p Principal) CanAccessOwn(ownerID string) bool {
	return p.Role == RoleAdmin || p.ID == ownerID
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, role Role) ([]*User, error)
	Count(ctx context.Context, role Role) (int, error)
}
