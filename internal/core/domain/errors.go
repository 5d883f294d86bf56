package domain

import (
	"errors"
	"fmt"
)

var ErrValidation = errors.New("missing required field")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")

// ErrInvalidFilter is returned by a user store queried without any criteria.
var ErrInvalidFilter = errors.New("invalid user filter")

// ErrEmptyPassword is returned when asked to hash an empty password.
var ErrEmptyPassword = errors.New("password cannot be empty")

// ErrInvalidResetToken is returned when no user holds the given reset token.
// It matches ErrUserNotFound under errors.Is.
var ErrInvalidResetToken = fmt.Errorf("invalid reset token: %w", ErrUserNotFound)
