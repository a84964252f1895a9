package domain

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxNameLength     = 50
	MaxEmailLength    = 254
	MinPasswordLength = 6
	// bcrypt ignores everything past 72 bytes.
	MaxPasswordBytes = 72
)

// User represents an account stored in the credential store.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile is the outbound view of a user. It never carries the password hash.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UserUpdate is a partial profile change. Nil fields are left untouched.
type UserUpdate struct {
	Name  *string
	Email *string
}

func (u UserUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil
}

// Identity is the authenticated caller resolved by the access guard.
type Identity struct {
	UserID    string
	TokenID   string
	ExpiresAt time.Time
}

func (i Identity) IsZero() bool {
	return i.UserID == ""
}

// NormalizeEmail trims and lower-cases an address and checks its syntax.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", Invalid("email is required")
	}
	if len(email) > MaxEmailLength {
		return "", Invalid("email is too long")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", Invalid("please provide a valid email")
	}
	return email, nil
}

// NormalizeName trims a display name and enforces its length.
func NormalizeName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", Invalid("name is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", Invalid("name cannot exceed 50 characters")
	}
	return name, nil
}

// ValidatePassword enforces the password policy applied at registration.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return Invalid("password must be at least 6 characters")
	}
	if len(password) > MaxPasswordBytes {
		return Invalid("password is too long")
	}
	return nil
}
