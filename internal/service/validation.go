package service

import (
	"regexp"

	"classhub/internal/domain"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func validName(name string) bool {
	return len(name) >= 2 && len(name) <= 50
}

func validEmail(email string) bool {
	return len(email) <= 255 && emailRegex.MatchString(email)
}

func validPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 100
}

func validAge(age int) bool {
	return age >= 16 && age <= 100
}

func validCourseName(course string) bool {
	return len(course) >= 1 && len(course) <= 100
}

// fieldError carries per-field validation detail alongside ErrInvalidInput.
type fieldError struct {
	Field   string
	Message string
}

func (e *fieldError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *fieldError) Unwrap() error {
	return domain.ErrInvalidInput
}

func invalidField(field, message string) error {
	return &fieldError{Field: field, Message: message}
}
