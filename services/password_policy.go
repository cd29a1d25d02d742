package services

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	// MinPasswordLength is the minimum allowed password length
	MinPasswordLength = 8
	// MaxPasswordLength prevents denial of service via bcrypt on huge inputs
	MaxPasswordLength = 128
)

// commonPasswords is a small denylist of passwords seen in breach corpora.
// Checked case-insensitively.
var commonPasswords = map[string]bool{
	"password":    true,
	"password1":   true,
	"password123": true,
	"12345678":    true,
	"123456789":   true,
	"1234567890":  true,
	"qwerty123":   true,
	"qwertyuiop":  true,
	"letmein1":    true,
	"welcome1":    true,
	"admin123":    true,
	"iloveyou":    true,
	"sunshine1":   true,
	"monkey123":   true,
	"dragon123":   true,
}

// ValidatePassword checks a candidate password against the password policy.
// Returns nil if the password is acceptable.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}

	if len(password) > MaxPasswordLength {
		return fmt.Errorf("password must be at most %d characters long", MaxPasswordLength)
	}

	if commonPasswords[strings.ToLower(password)] {
		return fmt.Errorf("password is too common, please choose a stronger one")
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasLetter || !hasDigit {
		return fmt.Errorf("password must contain both letters and numbers")
	}

	return nil
}
