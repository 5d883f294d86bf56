package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/auth-system/internal/core/domain"
	"github.com/99minutos/auth-system/pkg/logger"
)

type stubAuthService struct {
	registerFn     func(ctx context.Context, email, password string) (*domain.User, error)
	authenticateFn func(ctx context.Context, email, password string) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	return s.registerFn(ctx, email, password)
}

func (s *stubAuthService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	return s.authenticateFn(ctx, email, password)
}

func (s *stubAuthService) ValidLogin(ctx context.Context, email, password string) bool {
	_, err := s.Authenticate(ctx, email, password)
	return err == nil
}

type stubResetService struct {
	issueFn  func(ctx context.Context, email string) (string, error)
	redeemFn func(ctx context.Context, email, token, newPassword string) error
}

func (s *stubResetService) Issue(ctx context.Context, email string) (string, error) {
	return s.issueFn(ctx, email)
}

func (s *stubResetService) Redeem(ctx context.Context, email, token, newPassword string) error {
	return s.redeemFn(ctx, email, token, newPassword)
}

// stubSessions accepts a single known session id.
type stubSessions struct {
	sessionID string
	user      *domain.User
	created   []string
	destroyed bool
}

func (s *stubSessions) RequireAuth(string, []string) bool { return true }

func (s *stubSessions) AuthorizationHeader(r *http.Request) string {
	return r.Header.Get("Authorization")
}

func (s *stubSessions) SessionCookie(r *http.Request) string {
	if ck, err := r.Cookie(s.CookieName()); err == nil {
		return ck.Value
	}
	return ""
}

func (s *stubSessions) CurrentUser(r *http.Request) (*domain.User, bool) {
	if s.sessionID != "" && s.SessionCookie(r) == s.sessionID {
		return s.user, true
	}
	return nil, false
}

func (s *stubSessions) CookieName() string { return "session_id" }

func (s *stubSessions) CreateSession(_ context.Context, userID string) (string, error) {
	s.created = append(s.created, userID)
	s.sessionID = "sid-" + userID
	return s.sessionID, nil
}

func (s *stubSessions) DestroySession(r *http.Request) bool {
	if s.sessionID == "" || s.SessionCookie(r) != s.sessionID {
		return false
	}
	s.sessionID = ""
	s.destroyed = true
	return true
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func newAudit() (*logger.AuditLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	redactor := logger.MustRedactor(logger.DefaultPIIFields, logger.DefaultRedaction, logger.DefaultSeparator)
	return logger.NewAuditLogger(zerolog.New(&buf), "user_data", redactor), &buf
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func sessionCookieFrom(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "session_id" {
			return ck
		}
	}
	return nil
}
