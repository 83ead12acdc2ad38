package model

import (
	"errors"
	"time"
)

// User is an account in the credential store.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ErrEmptyPassword is returned by ValidatePassword for an empty password.
var ErrEmptyPassword = errors.New("password must not be empty")

// ValidatePassword checks the minimal password policy. Registration accepts
// any non-empty password.
func ValidatePassword(password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	return nil
}
