package users

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	maxEmailLength    = 320
	minPasswordLength = 8
)

var (
	// ErrInvalidEmail indicates the supplied address is empty, overlong, or malformed.
	ErrInvalidEmail = errors.New("users: invalid email address")
	// ErrWeakPassword indicates the supplied password is below the minimum length.
	ErrWeakPassword = errors.New("users: password too short")

	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// User models a persisted account. Accounts exist only to establish list
// ownership and identity; CredentialHash is never serialized outward.
type User struct {
	ID             string    `gorm:"column:id;primaryKey;size:36;not null"`
	Email          string    `gorm:"column:email;size:320;not null;uniqueIndex:idx_users_email"`
	CredentialHash string    `gorm:"column:credential_hash;size:100;not null" json:"-"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName provides the explicit table binding for GORM.
func (User) TableName() string {
	return "users"
}

// NormalizeEmail validates the raw address and returns its canonical
// lowercase form. Uniqueness is enforced on the normalized value.
func NormalizeEmail(rawInput string) (string, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidEmail)
	}
	if len(trimmed) > maxEmailLength {
		return "", fmt.Errorf("%w: exceeds %d characters", ErrInvalidEmail, maxEmailLength)
	}
	lowered := strings.ToLower(trimmed)
	if !emailPattern.MatchString(lowered) {
		return "", fmt.Errorf("%w: malformed", ErrInvalidEmail)
	}
	return lowered, nil
}

// ValidatePassword enforces the minimum credential policy for new accounts.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: minimum %d characters", ErrWeakPassword, minPasswordLength)
	}
	return nil
}
