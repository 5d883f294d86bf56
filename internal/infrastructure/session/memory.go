package session

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/99minutos/auth-system/internal/core/domain"
)

const (
	defaultShards      = 32
	defaultUserStripes = 32
)

type shard struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

// userStripe holds the current session id of every user hashed to it.
type userStripe struct {
	mu     sync.Mutex
	byUser map[string]string
}

// MemoryStore keeps sessions in process memory. Session records are spread
// over lock-striped shards and the per-user index over its own stripes, so
// unrelated sessions and unrelated users never contend.
//
// Lock order is user stripe, then session shard. At most one shard lock is
// held at a time.
type MemoryStore struct {
	shards []*shard
	users  []*userStripe

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		shards: make([]*shard, defaultShards),
		users:  make([]*userStripe, defaultUserStripes),
		now:    time.Now,
	}
	for i := range s.shards {
		s.shards[i] = &shard{sessions: make(map[string]domain.Session)}
	}
	for i := range s.users {
		s.users[i] = &userStripe{byUser: make(map[string]string)}
	}
	return s
}

func fnvIndex(key string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}

func (s *MemoryStore) shardFor(id string) *shard {
	return s.shards[fnvIndex(id, len(s.shards))]
}

func (s *MemoryStore) stripeFor(userID string) *userStripe {
	return s.users[fnvIndex(userID, len(s.users))]
}

// Create records a new session and drops the user's previous one, if any.
func (s *MemoryStore) Create(_ context.Context, userID string) (string, error) {
	if userID == "" {
		return "", domain.ErrValidation
	}
	id, err := NewID()
	if err != nil {
		return "", err
	}
	record := domain.Session{ID: id, UserID: userID, CreatedAt: s.now().UTC()}

	us := s.stripeFor(userID)
	us.mu.Lock()
	defer us.mu.Unlock()

	if prev, ok := us.byUser[userID]; ok {
		sh := s.shardFor(prev)
		sh.mu.Lock()
		delete(sh.sessions, prev)
		sh.mu.Unlock()
	}

	sh := s.shardFor(id)
	sh.mu.Lock()
	sh.sessions[id] = record
	sh.mu.Unlock()

	us.byUser[userID] = id
	return id, nil
}

func (s *MemoryStore) Resolve(_ context.Context, sessionID string) (domain.Session, bool, error) {
	sh := s.shardFor(sessionID)
	sh.mu.RLock()
	record, ok := sh.sessions[sessionID]
	sh.mu.RUnlock()
	return record, ok, nil
}

// Destroy removes the session. The owner is read first so that the user
// stripe can be taken before the shard; the record is then checked again
// since it may have been replaced in between.
func (s *MemoryStore) Destroy(_ context.Context, sessionID string) (bool, error) {
	sh := s.shardFor(sessionID)
	sh.mu.RLock()
	record, ok := sh.sessions[sessionID]
	sh.mu.RUnlock()
	if !ok {
		return false, nil
	}

	us := s.stripeFor(record.UserID)
	us.mu.Lock()
	defer us.mu.Unlock()

	sh.mu.Lock()
	_, ok = sh.sessions[sessionID]
	delete(sh.sessions, sessionID)
	sh.mu.Unlock()
	if !ok {
		return false, nil
	}

	if us.byUser[record.UserID] == sessionID {
		delete(us.byUser, record.UserID)
	}
	return true, nil
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.sessions)
		sh.mu.RUnlock()
	}
	return n
}

// Close drops every session.
func (s *MemoryStore) Close() error {
	for _, us := range s.users {
		us.mu.Lock()
	}
	defer func() {
		for _, us := range s.users {
			us.mu.Unlock()
		}
	}()
	for _, sh := range s.shards {
		sh.mu.Lock()
		clear(sh.sessions)
		sh.mu.Unlock()
	}
	for _, us := range s.users {
		clear(us.byUser)
	}
	return nil
}
