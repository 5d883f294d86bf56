package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/99minutos/auth-system/internal/core/domain"
	"github.com/99minutos/auth-system/internal/core/ports"
)

// UserRecordStore keeps the session identifier on the user record itself, so
// sessions live as long as the user store does. Uniqueness of the stored
// session id gives one session per user for free.
type UserRecordStore struct {
	users ports.UserRepository
	now   func() time.Time
}

func NewUserRecordStore(users ports.UserRepository) *UserRecordStore {
	return &UserRecordStore{users: users, now: time.Now}
}

func (s *UserRecordStore) Create(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", domain.ErrValidation
	}
	id, err := NewID()
	if err != nil {
		return "", err
	}
	created := s.now().UTC()

	err = s.users.Update(ctx, ports.UserFilter{ID: userID}, ports.UserUpdate{
		SessionID:        &id,
		SessionCreatedAt: &created,
	})
	if err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return id, nil
}

func (s *UserRecordStore) Resolve(ctx context.Context, sessionID string) (domain.Session, bool, error) {
	if sessionID == "" {
		return domain.Session{}, false, nil
	}
	user, err := s.users.Find(ctx, ports.UserFilter{SessionID: sessionID})
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.Session{}, false, nil
	}
	if err != nil {
		return domain.Session{}, false, err
	}
	return domain.Session{ID: sessionID, UserID: user.ID, CreatedAt: user.SessionCreatedAt}, true, nil
}

// Destroy clears the session only if the user still holds sessionID, so a
// logout cannot wipe a session created by a newer login.
func (s *UserRecordStore) Destroy(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	user, err := s.users.Find(ctx, ports.UserFilter{SessionID: sessionID})
	if errors.Is(err, domain.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	cleared := ""
	var zero time.Time
	err = s.users.Update(ctx,
		ports.UserFilter{ID: user.ID, SessionID: sessionID},
		ports.UserUpdate{SessionID: &cleared, SessionCreatedAt: &zero},
	)
	if errors.Is(err, domain.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("clear session: %w", err)
	}
	return true, nil
}
