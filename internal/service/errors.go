package service

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUsernameTaken   = errors.New("username already exists")
	ErrAccountDisabled = errors.New("account is disabled")
	ErrAlreadyLoggedIn = errors.New("account is already logged in on another device")
)

// CredentialsError reports a failed password check together with the lockout
// outcome so the handler can tell the user how many attempts remain.
type CredentialsError struct {
	RemainingAttempts int
	Locked            bool
}

func (e *CredentialsError) Error() string {
	if e.Locked {
		return "account disabled after too many failed login attempts"
	}
	return fmt.Sprintf("invalid credentials, %d attempts remaining", e.RemainingAttempts)
}
