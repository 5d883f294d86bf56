package domain

import "time"

// Session is the record a session identifier resolves to.
type Session struct {
	ID        string    `json:"-"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ExpiredAt reports whether the session is past created_at+ttl at instant t.
// A ttl <= 0 never expires.
func (s Session) ExpiredAt(t time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return t.After(s.CreatedAt.Add(ttl))
}
