package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = 24 * time.Hour

var (
	errMissingSigningSecret = errors.New("auth: signing secret must be provided")

	// ErrInvalidToken covers expired, tampered, and malformed session tokens.
	// Read paths that accept optional identity treat it as "no identity",
	// never as a hard failure.
	ErrInvalidToken = errors.New("auth: invalid session token")
)

// SessionClaims is the payload embedded in issued session tokens.
type SessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Identity is the verified result of token validation.
type Identity struct {
	UserID string
	Email  string
}

// TokenIssuerConfig configures the session token issuer.
type TokenIssuerConfig struct {
	SigningSecret []byte
	Issuer        string
	TokenTTL      time.Duration
	Clock         func() time.Time
}

// TokenIssuer issues and validates HS256 session tokens for signed-in users.
type TokenIssuer struct {
	signingSecret []byte
	issuer        string
	tokenTTL      time.Duration
	clock         func() time.Time
}

// NewTokenIssuer constructs a TokenIssuer with sane defaults.
func NewTokenIssuer(cfg TokenIssuerConfig) *TokenIssuer {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &TokenIssuer{
		signingSecret: append([]byte(nil), cfg.SigningSecret...),
		issuer:        cfg.Issuer,
		tokenTTL:      ttl,
		clock:         clock,
	}
}

// TokenTTL returns the configured session lifetime.
func (i *TokenIssuer) TokenTTL() time.Duration {
	return i.tokenTTL
}

// IssueToken produces a signed session token for the user.
func (i *TokenIssuer) IssueToken(userID, email string) (string, error) {
	if len(i.signingSecret) == 0 {
		return "", errMissingSigningSecret
	}
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}

	now := i.clock().UTC()
	claims := SessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.signingSecret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies the signature, expiry, and issuer of the supplied
// token and returns the embedded identity.
func (i *TokenIssuer) ValidateToken(tokenString string) (Identity, error) {
	if len(i.signingSecret) == 0 {
		return Identity{}, errMissingSigningSecret
	}
	if strings.TrimSpace(tokenString) == "" {
		return Identity{}, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, fmt.Errorf("%w: unexpected signing algorithm %s", ErrInvalidToken, t.Method.Alg())
			}
			return i.signingSecret, nil
		},
		jwt.WithIssuer(i.issuer),
		jwt.WithTimeFunc(i.clock),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if parsed == nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return Identity{UserID: claims.Subject, Email: claims.Email}, nil
}
