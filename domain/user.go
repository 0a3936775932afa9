package domain

import (
	"strings"
	"time"
)

// User represents a registered account. The password field only carries the
// bcrypt hash and is excluded from JSON output; repositories return it solely
// when the caller asks for the credential projection (login). Token holds the
// last-issued session token for bookkeeping and is never consulted during
// verification.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	usernameMinLen = 3
	usernameMaxLen = 30
	emailMinLen    = 5
	passwordMinLen = 6
	passwordMaxLen = 100
)

// ValidateRegistration checks the raw registration input against the account
// constraints. The first failing rule wins.
func ValidateRegistration(username, email, password string) error {
	if username == "" || email == "" || password == "" {
		return NewError(ErrCodeInvalid, "username, email and password are required")
	}
	if len(username) < usernameMinLen || len(username) > usernameMaxLen {
		return NewError(ErrCodeInvalid, "username must be between 3 and 30 characters")
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if len(password) < passwordMinLen || len(password) > passwordMaxLen {
		return NewError(ErrCodeInvalid, "password must be between 6 and 100 characters")
	}
	return nil
}

// ValidateEmail applies the minimal shape check used at registration.
func ValidateEmail(email string) error {
	if len(email) < emailMinLen || !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return NewError(ErrCodeInvalid, "email must be valid")
	}
	return nil
}
