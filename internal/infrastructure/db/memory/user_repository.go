// Package memory provides an in-process user store for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/99minutos/auth-system/internal/core/domain"
	"github.com/99minutos/auth-system/internal/core/ports"
)

// UserRepository implements ports.UserRepository on a map guarded by a
// single RWMutex. Every call copies users in and out.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
	now   func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*domain.User), now: time.Now}
}

func clone(u *domain.User) *domain.User {
	c := *u
	return &c
}

func matches(u *domain.User, f ports.UserFilter) bool {
	return (f.ID == "" || u.ID == f.ID) &&
		(f.Email == "" || u.Email == f.Email) &&
		(f.SessionID == "" || u.SessionID == f.SessionID) &&
		(f.ResetToken == "" || u.ResetToken == f.ResetToken)
}

func (r *UserRepository) Find(_ context.Context, f ports.UserFilter) (*domain.User, error) {
	if f.IsEmpty() {
		return nil, domain.ErrInvalidFilter
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if f.ID != "" {
		u, ok := r.users[f.ID]
		if !ok || !matches(u, f) {
			return nil, domain.ErrUserNotFound
		}
		return clone(u), nil
	}
	for _, u := range r.users {
		if matches(u, f) {
			return clone(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) Add(_ context.Context, email, hashedPassword string) (*domain.User, error) {
	if email == "" {
		return nil, domain.ErrValidation
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return nil, domain.ErrUserExists
		}
	}

	now := r.now().UTC()
	u := &domain.User{
		ID:             uuid.NewString(),
		Email:          email,
		HashedPassword: hashedPassword,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	r.users[u.ID] = u
	return clone(u), nil
}

// Update checks the filter and applies upd under one write lock. A non-empty
// session id or reset token already held by another user is rejected.
func (r *UserRepository) Update(_ context.Context, f ports.UserFilter, upd ports.UserUpdate) error {
	if f.ID == "" {
		return domain.ErrInvalidFilter
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[f.ID]
	if !ok || !matches(u, f) {
		return domain.ErrUserNotFound
	}
	if r.heldByOther(u.ID, upd) {
		return domain.ErrUserExists
	}

	if upd.HashedPassword != nil {
		u.HashedPassword = *upd.HashedPassword
	}
	if upd.SessionID != nil {
		u.SessionID = *upd.SessionID
	}
	if upd.SessionCreatedAt != nil {
		u.SessionCreatedAt = *upd.SessionCreatedAt
	}
	if upd.ResetToken != nil {
		u.ResetToken = *upd.ResetToken
	}
	u.UpdatedAt = r.now().UTC()
	return nil
}

func (r *UserRepository) heldByOther(id string, upd ports.UserUpdate) bool {
	for _, other := range r.users {
		if other.ID == id {
			continue
		}
		if upd.SessionID != nil && *upd.SessionID != "" && other.SessionID == *upd.SessionID {
			return true
		}
		if upd.ResetToken != nil && *upd.ResetToken != "" && other.ResetToken == *upd.ResetToken {
			return true
		}
	}
	return false
}

// Len returns the number of stored users.
func (r *UserRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
