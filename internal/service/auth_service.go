package service

import (
	"context"

	"classhub/internal/domain"
	"classhub/internal/security"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// AuthService handles registration, credential checks and token issuance.
type AuthService struct {
	users  domain.UserRepository
	tokens *security.TokenService
}

func NewAuthService(users domain.UserRepository, tokens *security.TokenService) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// RegisterInput is the cleaned-up registration payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, *security.TokenPair, error) {
	name := security.SanitizeName(in.Name)
	email := security.SanitizeEmail(in.Email)

	if !validName(name) {
		return nil, nil, invalidField("name", "must be between 2 and 50 characters")
	}
	if !validEmail(email) {
		return nil, nil, invalidField("email", "invalid email address")
	}
	if !validPassword(in.Password) {
		return nil, nil, invalidField("password", "must be between 8 and 100 characters")
	}
	role := in.Role
	if role == "" {
		role = domain.RoleStudent
	}
	if !domain.ValidRole(role) {
		return nil, nil, invalidField("role", "unknown role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	pair, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Login verifies credentials and issues a fresh token pair. Unknown email
// and wrong password both come back as ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *security.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, security.SanitizeEmail(email))
	if err != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}

	pair, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a new token pair. The user
// record is re-read so deletions and role changes take effect immediately.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.User, *security.TokenPair, error) {
	userID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, security.ErrTokenInvalid
	}

	pair, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}
