package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-system/internal/core/domain"
	"github.com/99minutos/auth-system/internal/core/service"
)

// stubStrategy resolves a fixed user when the request carries the expected
// header value.
type stubStrategy struct {
	user   *domain.User
	header string
	cookie string
}

func (s *stubStrategy) RequireAuth(path string, excluded []string) bool {
	return service.RequireAuth(path, excluded)
}

func (s *stubStrategy) AuthorizationHeader(r *http.Request) string {
	return r.Header.Get("Authorization")
}

func (s *stubStrategy) SessionCookie(r *http.Request) string {
	if ck, err := r.Cookie("session_id"); err == nil {
		return ck.Value
	}
	return ""
}

func (s *stubStrategy) CurrentUser(r *http.Request) (*domain.User, bool) {
	if s.user == nil {
		return nil, false
	}
	if s.header != "" && s.AuthorizationHeader(r) == s.header {
		return s.user, true
	}
	if s.cookie != "" && s.SessionCookie(r) == s.cookie {
		return s.user, true
	}
	return nil, false
}

var excluded = []string{"/api/v1/status/", "/api/v1/auth_session/login/"}

func runAuth(t *testing.T, strategy *stubStrategy, req *http.Request) (called bool, user *domain.User, err error) {
	t.Helper()
	e := echo.New()
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Authenticate(strategy, "test", excluded)(func(c echo.Context) error {
		called = true
		user, _ = CurrentUser(c)
		return c.NoContent(http.StatusOK)
	})
	err = handler(c)
	return called, user, err
}

func statusOf(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return 0
}

func TestAuthenticate_ExcludedPath(t *testing.T) {
	called, user, err := runAuth(t, &stubStrategy{}, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called on excluded path")
	}
	if user != nil {
		t.Fatalf("expected no user on excluded path, got %+v", user)
	}
}

func TestAuthenticate_NoCredentials(t *testing.T) {
	called, _, err := runAuth(t, &stubStrategy{}, httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil))
	if called {
		t.Fatalf("next should not be called")
	}
	if statusOf(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuthenticate_UnknownCredentials(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Basic bogus")

	called, _, err := runAuth(t, &stubStrategy{user: &domain.User{ID: "u1"}, header: "Basic good"}, req)
	if called {
		t.Fatalf("next should not be called")
	}
	if statusOf(err) != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestAuthenticate_HeaderResolvesUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Basic good")

	called, user, err := runAuth(t, &stubStrategy{user: &domain.User{ID: "u1"}, header: "Basic good"}, req)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called || user == nil || user.ID != "u1" {
		t.Fatalf("expected user u1 on context, got called=%v user=%+v", called, user)
	}
}

func TestAuthenticate_CookieResolvesUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "sid"})

	called, user, err := runAuth(t, &stubStrategy{user: &domain.User{ID: "u1"}, cookie: "sid"}, req)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called || user == nil {
		t.Fatalf("expected user on context")
	}
}

func TestCurrentUser_Missing(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if _, ok := CurrentUser(c); ok {
		t.Fatalf("expected no user")
	}
	c.Set(currentUserKey, (*domain.User)(nil))
	if _, ok := CurrentUser(c); ok {
		t.Fatalf("expected nil user to be reported missing")
	}
}
