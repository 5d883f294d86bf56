package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/99minutos/auth-system/internal/core/domain"
	"github.com/99minutos/auth-system/internal/core/ports"
)

// StrategyKind names an AuthStrategy variant selected through AUTH_TYPE.
type StrategyKind string

const (
	KindNone              StrategyKind = "none"
	KindBasic             StrategyKind = "basic"
	KindSession           StrategyKind = "session"
	KindSessionWithExpiry StrategyKind = "session-with-expiry"
)

// ParseStrategyKind accepts the canonical names and their legacy spellings.
func ParseStrategyKind(s string) (StrategyKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "auth":
		return KindNone, nil
	case "basic", "basic_auth":
		return KindBasic, nil
	case "session", "session_auth":
		return KindSession, nil
	case "session-with-expiry", "session_exp_auth":
		return KindSessionWithExpiry, nil
	default:
		return "", fmt.Errorf("unknown auth type %q", s)
	}
}

const wildcard = "*"

// RequireAuth reports whether path needs authentication. Trailing slashes are
// ignored on both sides. An excluded entry ending in "*" exempts every path
// starting with the entry's prefix.
func RequireAuth(path string, excludedPaths []string) bool {
	if path == "" || len(excludedPaths) == 0 {
		return true
	}
	path = strings.TrimRight(path, "/")

	for _, excluded := range excludedPaths {
		excluded = strings.TrimRight(excluded, "/")
		if prefix, ok := strings.CutSuffix(excluded, wildcard); ok {
			if strings.HasPrefix(path, prefix) {
				return false
			}
			continue
		}
		if path == excluded {
			return false
		}
	}
	return true
}

// baseAuth carries the request accessors shared by every strategy.
type baseAuth struct {
	cookieName string
}

func (b baseAuth) RequireAuth(path string, excludedPaths []string) bool {
	return RequireAuth(path, excludedPaths)
}

func (b baseAuth) AuthorizationHeader(r *http.Request) string {
	if r == nil {
		return ""
	}
	return r.Header.Get("Authorization")
}

func (b baseAuth) SessionCookie(r *http.Request) string {
	if r == nil || b.cookieName == "" {
		return ""
	}
	cookie, err := r.Cookie(b.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (b baseAuth) CookieName() string {
	return b.cookieName
}

// NoAuth never resolves a user, so every protected path is rejected.
type NoAuth struct {
	baseAuth
}

func NewNoAuth(cookieName string) *NoAuth {
	return &NoAuth{baseAuth{cookieName: cookieName}}
}

func (a *NoAuth) CurrentUser(*http.Request) (*domain.User, bool) {
	return nil, false
}

const basicPrefix = "Basic "

// BasicAuth authenticates "Authorization: Basic base64(email:password)".
type BasicAuth struct {
	baseAuth
	users  ports.UserRepository
	hasher ports.PasswordHasher
}

func NewBasicAuth(cookieName string, users ports.UserRepository, hasher ports.PasswordHasher) *BasicAuth {
	return &BasicAuth{baseAuth: baseAuth{cookieName: cookieName}, users: users, hasher: hasher}
}

// ExtractBase64AuthorizationHeader returns the credentials part of a Basic
// Authorization header value.
func ExtractBase64AuthorizationHeader(header string) (string, bool) {
	encoded, ok := strings.CutPrefix(header, basicPrefix)
	if !ok || encoded == "" {
		return "", false
	}
	return encoded, true
}

// DecodeBase64AuthorizationHeader decodes standard base64 into UTF-8 text.
func DecodeBase64AuthorizationHeader(encoded string) (string, bool) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || !utf8.Valid(raw) {
		return "", false
	}
	return string(raw), true
}

// ExtractUserCredentials splits "email:password" on the first colon, so the
// password itself may contain colons.
func ExtractUserCredentials(decoded string) (email, password string, ok bool) {
	return strings.Cut(decoded, ":")
}

// UserFromCredentials looks the user up by email and verifies the password.
func (a *BasicAuth) UserFromCredentials(ctx context.Context, email, password string) (*domain.User, bool) {
	if email == "" || password == "" {
		return nil, false
	}
	user, err := a.users.Find(ctx, ports.UserFilter{Email: email})
	if err != nil {
		return nil, false
	}
	if !a.hasher.Verify(ctx, user.HashedPassword, password) {
		return nil, false
	}
	return user, true
}

func (a *BasicAuth) CurrentUser(r *http.Request) (*domain.User, bool) {
	encoded, ok := ExtractBase64AuthorizationHeader(a.AuthorizationHeader(r))
	if !ok {
		return nil, false
	}
	decoded, ok := DecodeBase64AuthorizationHeader(encoded)
	if !ok {
		return nil, false
	}
	email, password, ok := ExtractUserCredentials(decoded)
	if !ok {
		return nil, false
	}
	return a.UserFromCredentials(r.Context(), email, password)
}

// SessionPolicy decides whether a stored session is still usable at now.
type SessionPolicy interface {
	Valid(s domain.Session, now time.Time) bool
}

// NoExpiry accepts every stored session.
type NoExpiry struct{}

func (NoExpiry) Valid(domain.Session, time.Time) bool { return true }

// ExpiryPolicy rejects sessions older than Duration. Duration <= 0 disables it.
type ExpiryPolicy struct {
	Duration time.Duration
}

func (p ExpiryPolicy) Valid(s domain.Session, now time.Time) bool {
	return !s.ExpiredAt(now, p.Duration)
}

// SessionAuth authenticates through a session cookie resolved against a
// SessionStore. The expiring variant is the same type with an ExpiryPolicy.
type SessionAuth struct {
	baseAuth
	users    ports.UserRepository
	sessions ports.SessionStore
	policy   SessionPolicy
	now      func() time.Time
}

func NewSessionAuth(cookieName string, users ports.UserRepository, sessions ports.SessionStore) *SessionAuth {
	return NewSessionAuthWithPolicy(cookieName, users, sessions, NoExpiry{})
}

// NewSessionExpiryAuth returns a SessionAuth whose sessions lapse after ttl.
func NewSessionExpiryAuth(cookieName string, users ports.UserRepository, sessions ports.SessionStore, ttl time.Duration) *SessionAuth {
	return NewSessionAuthWithPolicy(cookieName, users, sessions, ExpiryPolicy{Duration: ttl})
}

func NewSessionAuthWithPolicy(cookieName string, users ports.UserRepository, sessions ports.SessionStore, policy SessionPolicy) *SessionAuth {
	if policy == nil {
		policy = NoExpiry{}
	}
	return &SessionAuth{
		baseAuth: baseAuth{cookieName: cookieName},
		users:    users,
		sessions: sessions,
		policy:   policy,
		now:      time.Now,
	}
}

// CreateSession starts a session for userID, replacing any previous one.
func (a *SessionAuth) CreateSession(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", domain.ErrValidation
	}
	id, err := a.sessions.Create(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

// UserIDForSessionID returns the owner of a live session.
func (a *SessionAuth) UserIDForSessionID(ctx context.Context, sessionID string) (string, bool) {
	if sessionID == "" {
		return "", false
	}
	s, ok, err := a.sessions.Resolve(ctx, sessionID)
	if err != nil || !ok {
		return "", false
	}
	if !a.policy.Valid(s, a.now()) {
		return "", false
	}
	return s.UserID, true
}

func (a *SessionAuth) CurrentUser(r *http.Request) (*domain.User, bool) {
	if r == nil {
		return nil, false
	}
	userID, ok := a.UserIDForSessionID(r.Context(), a.SessionCookie(r))
	if !ok {
		return nil, false
	}
	user, err := a.users.Find(r.Context(), ports.UserFilter{ID: userID})
	if err != nil {
		return nil, false
	}
	return user, true
}

// DestroySession removes the session named by the request cookie. It returns
// false, without error, when there is no cookie or no such session.
func (a *SessionAuth) DestroySession(r *http.Request) bool {
	if r == nil {
		return false
	}
	sessionID := a.SessionCookie(r)
	if sessionID == "" {
		return false
	}
	removed, err := a.sessions.Destroy(r.Context(), sessionID)
	return err == nil && removed
}

// NewStrategy builds the strategy for kind. The returned SessionAuth is always
// usable by the login and logout endpoints, whatever kind is active.
func NewStrategy(
	kind StrategyKind,
	cookieName string,
	ttl time.Duration,
	users ports.UserRepository,
	sessions ports.SessionStore,
	hasher ports.PasswordHasher,
) (ports.AuthStrategy, *SessionAuth) {
	if kind == KindSessionWithExpiry {
		sa := NewSessionExpiryAuth(cookieName, users, sessions, ttl)
		return sa, sa
	}
	sa := NewSessionAuth(cookieName, users, sessions)

	switch kind {
	case KindBasic:
		return NewBasicAuth(cookieName, users, hasher), sa
	case KindSession:
		return sa, sa
	default:
		return NewNoAuth(cookieName), sa
	}
}
