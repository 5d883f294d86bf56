package ports

import (
	"context"

	"github.com/99minutos/auth-system/internal/core/domain"
)

// SessionStore maps session identifiers to their owning user. A user holds at
// most one session: Create replaces any previous one.
type SessionStore interface {
	Create(ctx context.Context, userID string) (string, error)
	Resolve(ctx context.Context, sessionID string) (domain.Session, bool, error)
	Destroy(ctx context.Context, sessionID string) (bool, error)
}
