package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/auth-system/internal/core/domain"
	"github.com/99minutos/auth-system/internal/infrastructure/session"
)

const maxTxRetries = 3

// SessionStore keeps sessions in Redis.
// Key format: session:<session_id> holds the record, session:user:<user_id>
// points at the user's current session.
type SessionStore struct {
	client    *redis.Client
	retention time.Duration
	now       func() time.Time
}

// NewSessionStore wraps client. A retention > 0 lets Redis evict records that
// were never destroyed; it is housekeeping only, expiry is decided by the
// auth layer.
func NewSessionStore(client *redis.Client, retention time.Duration) *SessionStore {
	if retention < 0 {
		retention = 0
	}
	return &SessionStore{client: client, retention: retention, now: time.Now}
}

type sessionRecord struct {
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *SessionStore) sessionKey(id string) string {
	return "session:" + id
}

func (s *SessionStore) userKey(userID string) string {
	return "session:user:" + userID
}

// Create writes the new session and deletes the previous one in one MULTI,
// guarded by WATCH on the user index.
func (s *SessionStore) Create(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", domain.ErrValidation
	}
	id, err := session.NewID()
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(sessionRecord{UserID: userID, CreatedAt: s.now().UTC()})
	if err != nil {
		return "", fmt.Errorf("session marshal: %w", err)
	}
	idxKey := s.userKey(userID)

	txf := func(tx *redis.Tx) error {
		prev, err := tx.Get(ctx, idxKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if prev != "" {
				pipe.Del(ctx, s.sessionKey(prev))
			}
			pipe.Set(ctx, s.sessionKey(id), data, s.retention)
			pipe.Set(ctx, idxKey, id, s.retention)
			return nil
		})
		return err
	}

	if err := s.watch(ctx, txf, idxKey); err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}
	return id, nil
}

func (s *SessionStore) Resolve(ctx context.Context, sessionID string) (domain.Session, bool, error) {
	raw, err := s.client.Get(ctx, s.sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, false, nil
	}
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("session resolve: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.Session{}, false, fmt.Errorf("session unmarshal: %w", err)
	}
	return domain.Session{ID: sessionID, UserID: rec.UserID, CreatedAt: rec.CreatedAt}, true, nil
}

// Destroy deletes the session and clears the user index when it still points
// at this session.
func (s *SessionStore) Destroy(ctx context.Context, sessionID string) (bool, error) {
	key := s.sessionKey(sessionID)
	var removed bool

	txf := func(tx *redis.Tx) error {
		removed = false
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}

		var rec sessionRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("session unmarshal: %w", err)
		}
		idxKey := s.userKey(rec.UserID)
		if err := tx.Watch(ctx, idxKey).Err(); err != nil {
			return err
		}
		current, err := tx.Get(ctx, idxKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			if current == sessionID {
				pipe.Del(ctx, idxKey)
			}
			return nil
		})
		if err != nil {
			return err
		}
		removed = true
		return nil
	}

	if err := s.watch(ctx, txf, key); err != nil {
		return false, fmt.Errorf("session destroy: %w", err)
	}
	return removed, nil
}

// watch runs txf under WATCH, retrying a bounded number of times when a
// watched key changes underneath it.
func (s *SessionStore) watch(ctx context.Context, txf func(*redis.Tx) error, keys ...string) error {
	var err error
	for range maxTxRetries {
		err = s.client.Watch(ctx, txf, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}
