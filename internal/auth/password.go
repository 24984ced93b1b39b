package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the work factor applied to new credential hashes.
const bcryptCost = 12

// ErrPasswordTooLong indicates the plaintext exceeds bcrypt's 72-byte input bound.
var ErrPasswordTooLong = errors.New("auth: password exceeds maximum length")

// HashPassword derives an irreversible hash of the plaintext credential.
// The returned value is opaque and must never be serialized outward.
func HashPassword(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext matches the stored hash.
// Comparison timing is governed by bcrypt itself and does not short-circuit
// on prefix mismatch.
func CheckPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
