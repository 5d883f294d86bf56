package domain

import "time"

// User models an account known to the user store. The session and reset-token
// fields are each empty or unique across users; assigning a new value
// overwrites the previous one.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	HashedPassword   string    `json:"-"`
	SessionID        string    `json:"-"`
	SessionCreatedAt time.Time `json:"-"`
	ResetToken       string    `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
