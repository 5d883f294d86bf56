package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// CookieOptions controls how the session cookie is issued.
type CookieOptions struct {
	Secure bool
	// TTL sets Max-Age on the cookie. Zero issues a browser-session cookie.
	TTL time.Duration
}

func setSessionCookie(c echo.Context, name, sessionID string, opts CookieOptions) {
	cookie := &http.Cookie{
		Name:     name,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if opts.TTL > 0 {
		cookie.MaxAge = int(opts.TTL / time.Second)
	}
	c.SetCookie(cookie)
}

func clearSessionCookie(c echo.Context, name string, opts CookieOptions) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
