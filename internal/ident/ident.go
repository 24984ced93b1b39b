// Package ident issues the short public identifiers that back shareable
// list links. Edit and view identifiers share one format so a URL never
// reveals which permission tier it grants.
package ident

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

const (
	// Length is the exact number of characters in a link identifier.
	Length = 9

	alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// New returns a fresh link identifier: Length characters drawn uniformly
// from the lowercase alphanumeric alphabet using crypto-strong randomness.
// The modulo mapping over 36 symbols carries a bias below 2^-59 per
// character, which is negligible for this identifier space. Callers retry
// on collision, so New may be invoked repeatedly for a single record.
func New() (string, error) {
	buf := make([]byte, Length*8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("ident: read random bytes: %w", err)
	}
	out := make([]byte, Length)
	for i := range out {
		word := binary.BigEndian.Uint64(buf[i*8:])
		out[i] = alphabet[word%uint64(len(alphabet))]
	}
	return string(out), nil
}

// IsValid reports whether the supplied string has the exact shape of a
// link identifier. It is a cheap format gate used to reject malformed path
// segments before any store lookup.
func IsValid(candidate string) bool {
	if len(candidate) != Length {
		return false
	}
	for i := 0; i < len(candidate); i++ {
		c := candidate[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
