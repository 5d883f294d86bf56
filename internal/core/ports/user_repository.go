package ports

import (
	"context"
	"time"

	"github.com/99minutos/auth-system/internal/core/domain"
)

// UserFilter selects a user. Non-empty fields are combined with AND; a filter
// with no fields set is rejected with domain.ErrInvalidFilter.
type UserFilter struct {
	ID         string
	Email      string
	SessionID  string
	ResetToken string
}

// IsEmpty reports whether no criteria are set.
func (f UserFilter) IsEmpty() bool {
	return f.ID == "" && f.Email == "" && f.SessionID == "" && f.ResetToken == ""
}

// UserUpdate lists the fields to change. Nil pointers are left untouched; a
// pointer to an empty string (or zero time) clears the field.
type UserUpdate struct {
	HashedPassword   *string
	SessionID        *string
	SessionCreatedAt *time.Time
	ResetToken       *string
}

// UserRepository is the persistence contract the auth core needs.
type UserRepository interface {
	// Find returns the first user matching filter, domain.ErrUserNotFound when
	// none does, or domain.ErrInvalidFilter for an empty filter.
	Find(ctx context.Context, filter UserFilter) (*domain.User, error)
	// Add stores a new user; domain.ErrUserExists on a duplicate email.
	Add(ctx context.Context, email, hashedPassword string) (*domain.User, error)
	// Update applies upd to the user matching filter in a single atomic write.
	// filter.ID is required; the other fields act as preconditions.
	Update(ctx context.Context, filter UserFilter, upd UserUpdate) error
}
