// Package validators holds the account-field validation rules shared by the
// auth package's login/registration flows.
package validators

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidateEmail validates email format (RFC 5322, simplified).
func ValidateEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}

	return nil
}

// ValidatePassword validates password strength: at least 8 characters, at
// least one uppercase, one lowercase, and one digit.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	if len(password) > 128 {
		return fmt.Errorf("password must be less than 128 characters")
	}

	if !regexp.MustCompile(`[A-Z]`).MatchString(password) {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !regexp.MustCompile(`[a-z]`).MatchString(password) {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !regexp.MustCompile(`\d`).MatchString(password) {
		return fmt.Errorf("password must contain at least one digit")
	}

	return nil
}

// ValidateUsername validates username format: 3-30 characters, starting
// with a letter, containing only lowercase letters, digits, and
// underscores.
func ValidateUsername(username string) error {
	username = strings.ToLower(strings.TrimSpace(username))

	if len(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters")
	}
	if len(username) > 30 {
		return fmt.Errorf("username must be less than 30 characters")
	}

	validUsername := regexp.MustCompile(`^[a-z0-9_]+$`)
	if !validUsername.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, and underscores")
	}
	if username[0] < 'a' || username[0] > 'z' {
		return fmt.Errorf("username must start with a letter")
	}

	return nil
}
