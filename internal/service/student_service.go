package service

import (
	"context"

	"classhub/internal/domain"
	"classhub/internal/security"

	"golang.org/x/crypto/bcrypt"
)

// StudentService manages student profiles. Creating a student also
// creates the backing user account with the STUDENT role.
type StudentService struct {
	students domain.StudentRepository
	users    domain.UserRepository
}

func NewStudentService(students domain.StudentRepository, users domain.UserRepository) *StudentService {
	return &StudentService{students: students, users: users}
}

type CreateStudentInput struct {
	Name     string
	Email    string
	Password string
	Age      int
	Course   string
	FeesPaid bool
}

// UpdateStudentInput carries partial updates. Nil fields are left untouched.
type UpdateStudentInput struct {
	Age      *int
	Course   *string
	FeesPaid *bool
}

func (s *StudentService) Create(ctx context.Context, in CreateStudentInput) (*domain.Student, error) {
	name := security.SanitizeName(in.Name)
	email := security.SanitizeEmail(in.Email)
	course := security.SanitizeCourseName(in.Course)

	if !validName(name) {
		return nil, invalidField("name", "must be between 2 and 50 characters")
	}
	if !validEmail(email) {
		return nil, invalidField("email", "invalid email address")
	}
	if !validPassword(in.Password) {
		return nil, invalidField("password", "must be between 8 and 100 characters")
	}
	if !validAge(in.Age) {
		return nil, invalidField("age", "must be between 16 and 100")
	}
	if !validCourseName(course) {
		return nil, invalidField("course", "must be between 1 and 100 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleStudent,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	student := &domain.Student{
		UserID:   user.ID,
		Age:      in.Age,
		Course:   course,
		FeesPaid: in.FeesPaid,
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, err
	}

	student.Name = user.Name
	student.Email = user.Email
	return student, nil
}

func (s *StudentService) Get(ctx context.Context, id string) (*domain.Student, error) {
	return s.students.GetByID(ctx, id)
}

func (s *StudentService) GetByUserID(ctx context.Context, userID string) (*domain.Student, error) {
	return s.students.GetByUserID(ctx, userID)
}

func (s *StudentService) List(ctx context.Context, filters domain.StudentFilters) ([]*domain.Student, error) {
	filters.SearchTerm = security.SanitizeText(filters.SearchTerm, 100)
	filters.Course = security.SanitizeCourseName(filters.Course)
	if filters.MinAge < 0 || filters.MaxAge < 0 {
		return nil, invalidField("age", "filters must not be negative")
	}
	if filters.MinAge > 0 && filters.MaxAge > 0 && filters.MinAge > filters.MaxAge {
		return nil, invalidField("age", "minAge must not exceed maxAge")
	}
	return s.students.List(ctx, filters)
}

func (s *StudentService) Update(ctx context.Context, id string, in UpdateStudentInput) (*domain.Student, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Age != nil {
		if !validAge(*in.Age) {
			return nil, invalidField("age", "must be between 16 and 100")
		}
		student.Age = *in.Age
	}
	if in.Course != nil {
		course := security.SanitizeCourseName(*in.Course)
		if !validCourseName(course) {
			return nil, invalidField("course", "must be between 1 and 100 characters")
		}
		student.Course = course
	}
	if in.FeesPaid != nil {
		student.FeesPaid = *in.FeesPaid
	}

	if err := s.students.Update(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *StudentService) Delete(ctx context.Context, id string) error {
	return s.students.Delete(ctx, id)
}

func (s *StudentService) Count(ctx context.Context) (int, error) {
	return s.students.Count(ctx)
}
