package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/driftboard/listlink/internal/auth"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Throttle policies. Signup is keyed by caller network origin, signin by the
// normalized account email. Both are enforced before any store access.
const (
	signupAttemptLimit = 3
	signupWindow       = time.Hour
	signinAttemptLimit = 5
	signinWindow       = 15 * time.Minute
)

var (
	errMissingDatabase   = errors.New("users: database handle is required")
	errMissingThrottle   = errors.New("users: attempt throttle is required")
	errMissingIDProvider = errors.New("users: id provider is required")

	// ErrEmailTaken indicates an account already exists for the address.
	ErrEmailTaken = errors.New("users: email already registered")
	// ErrInvalidCredentials is returned for both unknown accounts and wrong
	// passwords so that signin failures never reveal whether an address is
	// registered.
	ErrInvalidCredentials = errors.New("users: invalid credentials")
	// ErrRateLimited indicates the attempt throttle rejected the call.
	ErrRateLimited = errors.New("users: too many attempts")
)

// AttemptThrottle bounds repeated attempts per key (see internal/ratelimit).
type AttemptThrottle interface {
	CheckAndConsume(key string, limit int, window time.Duration) bool
}

// IDProvider issues identifiers for new accounts.
type IDProvider interface {
	NewID() (string, error)
}

// ServiceConfig describes the dependencies of the account service.
type ServiceConfig struct {
	Database   *gorm.DB
	Throttle   AttemptThrottle
	IDProvider IDProvider
	Logger     *zap.Logger
}

// Service manages account signup and credential verification.
type Service struct {
	db         *gorm.DB
	throttle   AttemptThrottle
	idProvider IDProvider
	logger     *zap.Logger
}

// NewService constructs the account service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	if cfg.Throttle == nil {
		return nil, errMissingThrottle
	}
	if cfg.IDProvider == nil {
		return nil, errMissingIDProvider
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:         cfg.Database,
		throttle:   cfg.Throttle,
		idProvider: cfg.IDProvider,
		logger:     logger,
	}, nil
}

// SignUp registers a new account. Attempts are throttled per caller network
// origin before any validation or store access.
func (s *Service) SignUp(ctx context.Context, email, password, clientIP string) (*User, error) {
	if !s.throttle.CheckAndConsume("signup:"+clientIP, signupAttemptLimit, signupWindow) {
		return nil, ErrRateLimited
	}

	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	var existing User
	err = s.db.WithContext(ctx).Where("email = ?", normalized).Take(&existing).Error
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("users: lookup account: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	userID, err := s.idProvider.NewID()
	if err != nil {
		return nil, fmt.Errorf("users: generate account id: %w", err)
	}

	user := User{
		ID:             userID,
		Email:          normalized,
		CredentialHash: hash,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// The unique index closes the race between the explicit lookup and
		// this insert; map it to the same duplicate-email outcome.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("users: create account: %w", err)
	}

	s.logger.Info("account created", zap.String("user_id", user.ID))
	return &user, nil
}

// SignIn verifies the supplied credentials and returns the account.
// Unknown addresses and wrong passwords produce the identical
// ErrInvalidCredentials outcome. Attempts are throttled per account email.
func (s *Service) SignIn(ctx context.Context, email, password string) (*User, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !s.throttle.CheckAndConsume("signin:"+normalized, signinAttemptLimit, signinWindow) {
		return nil, ErrRateLimited
	}

	var user User
	err = s.db.WithContext(ctx).Where("email = ?", normalized).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("users: lookup account: %w", err)
	}

	if !auth.CheckPassword(password, user.CredentialHash) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// GetByID returns the account for a verified identity.
func (s *Service) GetByID(ctx context.Context, userID string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("id = ?", userID).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("users: lookup account: %w", err)
	}
	return &user, nil
}
