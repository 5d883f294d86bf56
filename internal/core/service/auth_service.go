package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/99minutos/auth-system/internal/core/domain"
	"github.com/99minutos/auth-system/internal/core/ports"
)

// AuthService implements registration and credential checks.
type AuthService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
}

func NewAuthService(repo ports.UserRepository, hasher ports.PasswordHasher) *AuthService {
	return &AuthService{repo: repo, hasher: hasher}
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, domain.ErrValidation
	}

	_, err := s.repo.Find(ctx, ports.UserFilter{Email: email})
	switch {
	case err == nil:
		return nil, domain.ErrUserExists
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Add(ctx, email, hash)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Authenticate returns the user owning email when password matches.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, domain.ErrValidation
	}

	user, err := s.repo.Find(ctx, ports.UserFilter{Email: email})
	if err != nil {
		return nil, err
	}

	if !s.hasher.Verify(ctx, user.HashedPassword, password) {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) ValidLogin(ctx context.Context, email, password string) bool {
	_, err := s.Authenticate(ctx, email, password)
	return err == nil
}
