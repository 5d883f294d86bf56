package ports

import (
	"context"

	"github.com/99minutos/auth-system/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	ValidLogin(ctx context.Context, email, password string) bool
}

// ResetService issues and redeems single-use password reset tokens.
type ResetService interface {
	Issue(ctx context.Context, email string) (string, error)
	Redeem(ctx context.Context, email, token, newPassword string) error
}
