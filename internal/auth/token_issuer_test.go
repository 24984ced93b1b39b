package auth

import (
	"errors"
	"testing"
	"time"
)

const testIssuer = "listlink-api"

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestIssueAndValidateTokenRoundTrip(t *testing.T) {
	now := time.Unix(1750000000, 0).UTC()
	issuer := NewTokenIssuer(TokenIssuerConfig{
		SigningSecret: []byte("test-secret"),
		Issuer:        testIssuer,
		Clock:         fixedClock(now),
	})

	token, err := issuer.IssueToken("user-1", "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected issue error: %v", err)
	}

	identity, err := issuer.ValidateToken(token)
	if err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if identity.UserID != "user-1" {
		t.Fatalf("unexpected user id: %q", identity.UserID)
	}
	if identity.Email != "alice@example.com" {
		t.Fatalf("unexpected email: %q", identity.Email)
	}
}

func TestValidateTokenRejectsExpiredToken(t *testing.T) {
	issuedAt := time.Unix(1750000000, 0).UTC()
	issuer := NewTokenIssuer(TokenIssuerConfig{
		SigningSecret: []byte("test-secret"),
		Issuer:        testIssuer,
		TokenTTL:      time.Hour,
		Clock:         fixedClock(issuedAt),
	})

	token, err := issuer.IssueToken("user-1", "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected issue error: %v", err)
	}

	later := NewTokenIssuer(TokenIssuerConfig{
		SigningSecret: []byte("test-secret"),
		Issuer:        testIssuer,
		TokenTTL:      time.Hour,
		Clock:         fixedClock(issuedAt.Add(2 * time.Hour)),
	})
	if _, err := later.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestValidateTokenRejectsTamperedSignature(t *testing.T) {
	now := time.Unix(1750000000, 0).UTC()
	issuer := NewTokenIssuer(TokenIssuerConfig{
		SigningSecret: []byte("test-secret"),
		Issuer:        testIssuer,
		Clock:         fixedClock(now),
	})

	token, err := issuer.IssueToken("user-1", "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected issue error: %v", err)
	}

	other := NewTokenIssuer(TokenIssuerConfig{
		SigningSecret: []byte("different-secret"),
		Issuer:        testIssuer,
		Clock:         fixedClock(now),
	})
	if _, err := other.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestValidateTokenRejectsMalformedInput(t *testing.T) {
	issuer := NewTokenIssuer(TokenIssuerConfig{
		SigningSecret: []byte("test-secret"),
		Issuer:        testIssuer,
	})

	for _, candidate := range []string{"", "   ", "not-a-token", "a.b.c"} {
		if _, err := issuer.ValidateToken(candidate); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", candidate, err)
		}
	}
}

func TestTokenLifetimeDefaultsToTwentyFourHours(t *testing.T) {
	issuer := NewTokenIssuer(TokenIssuerConfig{
		SigningSecret: []byte("test-secret"),
		Issuer:        testIssuer,
	})
	if issuer.TokenTTL() != 24*time.Hour {
		t.Fatalf("expected 24h default lifetime, got %s", issuer.TokenTTL())
	}
}

func TestHashPasswordRejectsOverlongInput(t *testing.T) {
	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := HashPassword(string(long)); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}

func TestCheckPasswordMatchesOnlyOriginalPlaintext(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("unexpected hash error: %v", err)
	}
	if !CheckPassword("correct horse battery", hash) {
		t.Fatalf("expected original plaintext to verify")
	}
	if CheckPassword("correct horse staple", hash) {
		t.Fatalf("expected different plaintext to fail")
	}
	if CheckPassword("correct horse battery", "not-a-hash") {
		t.Fatalf("expected malformed hash to fail")
	}
}
