// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MaxEmailLength    = 254
	MaxBioLength      = 500
	MaxPostLength     = 500
	MaxCommentLength  = 300
	MaxURLLength      = 2048
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9\-]+(\.[a-zA-Z0-9\-]+)*\.[a-zA-Z]{2,}$`)
)

// ValidatePassword checks password length. bcrypt ignores bytes past 72, so
// longer inputs are rejected rather than silently truncated.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("password must not exceed %d bytes", MaxPasswordLength)
	}
	return nil
}

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength {
		return fmt.Errorf("username must be at least %d characters long", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, and underscores")
	}
	return nil
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if len(email) > MaxEmailLength {
		return fmt.Errorf("email must not exceed %d characters", MaxEmailLength)
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateURL accepts an absolute http or https URL with a host.
func ValidateURL(raw string) error {
	if len(raw) > MaxURLLength {
		return fmt.Errorf("url must not exceed %d characters", MaxURLLength)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("must be a valid http(s) URL")
	}
	return nil
}

// ValidateText requires non-blank text of at most max characters.
func ValidateText(label, text string, max int) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%s is required", label)
	}
	return ValidateLength(label, text, max)
}

// ValidateLength caps text at max characters.
func ValidateLength(label, text string, max int) error {
	if utf8.RuneCountInString(text) > max {
		return fmt.Errorf("%s must not exceed %d characters", label, max)
	}
	return nil
}
