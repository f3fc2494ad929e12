package service

import (
	"context"

	"classhub/internal/domain"
	"classhub/internal/security"

	"golang.org/x/crypto/bcrypt"
)

// CoachService manages coach profiles and their backing user accounts.
type CoachService struct {
	coaches domain.CoachRepository
	users   domain.UserRepository
}

func NewCoachService(coaches domain.CoachRepository, users domain.UserRepository) *CoachService {
	return &CoachService{coaches: coaches, users: users}
}

type CreateCoachInput struct {
	Name      string
	Email     string
	Password  string
	Expertise string
}

type UpdateCoachInput struct {
	Expertise *string
}

func (s *CoachService) Create(ctx context.Context, in CreateCoachInput) (*domain.Coach, error) {
	name := security.SanitizeName(in.Name)
	email := security.SanitizeEmail(in.Email)
	expertise := security.SanitizeText(in.Expertise, 100)

	if !validName(name) {
		return nil, invalidField("name", "must be between 2 and 50 characters")
	}
	if !validEmail(email) {
		return nil, invalidField("email", "invalid email address")
	}
	if !validPassword(in.Password) {
		return nil, invalidField("password", "must be between 8 and 100 characters")
	}
	if expertise == "" {
		return nil, invalidField("expertise", "is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleCoach,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	coach := &domain.Coach{
		UserID:    user.ID,
		Expertise: expertise,
	}
	if err := s.coaches.Create(ctx, coach); err != nil {
		return nil, err
	}

	coach.Name = user.Name
	coach.Email = user.Email
	return coach, nil
}

func (s *CoachService) Get(ctx context.Context, id string) (*domain.Coach, error) {
	return s.coaches.GetByID(ctx, id)
}

func (s *CoachService) GetByUserID(ctx context.Context, userID string) (*domain.Coach, error) {
	return s.coaches.GetByUserID(ctx, userID)
}

func (s *CoachService) List(ctx context.Context) ([]*domain.Coach, error) {
	return s.coaches.List(ctx)
}

func (s *CoachService) Update(ctx context.Context, id string, in UpdateCoachInput) (*domain.Coach, error) {
	coach, err := s.coaches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Expertise != nil {
		expertise := security.SanitizeText(*in.Expertise, 100)
		if expertise == "" {
			return nil, invalidField("expertise", "is required")
		}
		coach.Expertise = expertise
	}

	if err := s.coaches.Update(ctx, coach); err != nil {
		return nil, err
	}
	return coach, nil
}

func (s *CoachService) Delete(ctx context.Context, id string) error {
	return s.coaches.Delete(ctx, id)
}

func (s *CoachService) Count(ctx context.Context) (int, error) {
	return s.coaches.Count(ctx)
}
