package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/99minutos/auth-system/internal/core/domain"
	"github.com/99minutos/auth-system/internal/core/ports"
)

// ResetTokenService issues and redeems single-use password reset tokens.
type ResetTokenService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
}

func NewResetTokenService(repo ports.UserRepository, hasher ports.PasswordHasher) *ResetTokenService {
	return &ResetTokenService{repo: repo, hasher: hasher}
}

// Issue stores a fresh token on the user owning email, replacing any earlier one.
func (s *ResetTokenService) Issue(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", domain.ErrValidation
	}

	user, err := s.repo.Find(ctx, ports.UserFilter{Email: email})
	if err != nil {
		return "", err
	}

	token := uuid.NewString()
	if err := s.repo.Update(ctx, ports.UserFilter{ID: user.ID}, ports.UserUpdate{ResetToken: &token}); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}
	return token, nil
}

// Redeem sets a new password for the holder of token and consumes the token in
// the same write. The holder's email must equal email. The write is
// conditional on the token still being current, so a concurrent re-issue or a
// second redeem fails with ErrInvalidResetToken.
func (s *ResetTokenService) Redeem(ctx context.Context, email, token, newPassword string) error {
	if newPassword == "" {
		return domain.ErrValidation
	}
	if token == "" {
		return domain.ErrInvalidResetToken
	}

	user, err := s.repo.Find(ctx, ports.UserFilter{ResetToken: token})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidResetToken
		}
		return err
	}
	if user.Email != email {
		return domain.ErrInvalidResetToken
	}

	hash, err := s.hasher.Hash(ctx, newPassword)
	if err != nil {
		return err
	}

	cleared := ""
	err = s.repo.Update(ctx,
		ports.UserFilter{ID: user.ID, ResetToken: token},
		ports.UserUpdate{HashedPassword: &hash, ResetToken: &cleared},
	)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrInvalidResetToken
	}
	if err != nil {
		return fmt.Errorf("redeem reset token: %w", err)
	}
	return nil
}
