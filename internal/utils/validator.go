package utils

import (
	"regexp"
	"strings"
	"unicode"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail validates an email address
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidatePassword checks minimum password requirements:
// at least 8 characters with uppercase, lowercase and a digit
func ValidatePassword(password string) bool {
	if len(password) < 8 {
		return false
	}

	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	return hasUpper && hasLower && hasDigit
}

// NormalizeIdentifier lowercases and trims a username or email.
// Applied uniformly at registration and at login lookup so that the two
// can never disagree on case.
func NormalizeIdentifier(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
