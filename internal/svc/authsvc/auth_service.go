package authsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkrupp/cryptotracker/internal/domain"
	"github.com/mkrupp/cryptotracker/internal/infra/logging"
	"github.com/mkrupp/cryptotracker/internal/repo/user"
	"github.com/mkrupp/cryptotracker/internal/svc/authsvc/authclient"
)

// insecureSecret is only used when AllowInsecureSecret is set.
const insecureSecret = "changeme"

// AuthConfig contains configuration parameters for the authentication service.
type AuthConfig struct {
	// Secret is the HMAC key used to sign session tokens
	Secret string `env:"SECRET" envAlias:"JWT_SECRET" default:""`

	// AllowInsecureSecret permits starting without a secret, using a well-known development key
	AllowInsecureSecret bool `env:"ALLOW_INSECURE_SECRET" default:"false"`

	// TokenDuration is the validity duration of auth tokens in seconds
	TokenDuration int64 `env:"TOKEN_DURATION" default:"604800"` // 7d

	// BcryptCost is the work factor for password hashes
	BcryptCost int `env:"BCRYPT_COST" default:"10"`
}

// AuthService provides authentication and user management functionality.
// It handles user registration, login, and token validation.
type AuthService struct {
	Config   AuthConfig
	UserRepo user.Repository
	Tokens   *TokenIssuer
	Log      logging.Logger

	// dummyHash is compared against when the user does not exist, so unknown
	// usernames cost as much as wrong passwords.
	dummyHash []byte
}

var _ authclient.AuthClient = (*AuthService)(nil)

// NewAuthService creates a new AuthService with the given user repository and configuration.
// Returns domain.ErrNoSigningSecret if no secret is configured and insecure mode is off.
func NewAuthService(ctx context.Context, userRepo user.Repository, cfg AuthConfig) (*AuthService, error) {
	log := logging.GetLogger("svc.authsvc.auth_service")

	secret := cfg.Secret
	if secret == "" {
		if !cfg.AllowInsecureSecret {
			return nil, domain.ErrNoSigningSecret
		}

		log.WarnContext(ctx, "no token secret configured, using insecure development secret")

		secret = insecureSecret
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	dummyHash, err := bcrypt.GenerateFromPassword([]byte(insecureSecret), cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("generate dummy hash: %w", err)
	}

	return &AuthService{
		Config:    cfg,
		UserRepo:  userRepo,
		Tokens:    NewTokenIssuer([]byte(secret), time.Duration(cfg.TokenDuration)*time.Second),
		Log:       log,
		dummyHash: dummyHash,
	}, nil
}

// Register creates a new user account and returns a session token for it.
// Returns domain.ErrUserAlreadyExists if the username is taken and
// domain.ErrPasswordTooLong if the password cannot be hashed.
func (s *AuthService) Register(ctx context.Context, username, password string) (_ string, err error) {
	log := s.Log.With(logging.Group("user", "username", username))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "register user failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}()

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), s.Config.BcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			err = errors.Join(domain.ErrPasswordTooLong, err)
		}

		return "", fmt.Errorf("hash password: %w", err)
	}

	userID, err := s.UserRepo.CreateUser(ctx, username, passwordHash)
	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}

	log = log.With(logging.Group("user", "id", userID))

	token, err := s.Tokens.Issue(userID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	return token, nil
}

// Login authenticates a user and returns a session token.
// Unknown users and wrong passwords both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (_ string, err error) {
	log := s.Log.With(logging.Group("user", "username", username))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "login failed", "error", err)
		} else {
			log.DebugContext(ctx, "login successful")
		}
	}()

	user, ok, err := s.UserRepo.GetUserByUsername(ctx, username)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return "", fmt.Errorf("get user: %w", err)
	}

	if err != nil || !ok {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))

		return "", errors.Join(domain.ErrInvalidCredentials, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return "", errors.Join(domain.ErrInvalidCredentials, err)
	}

	log = log.With(logging.Group("user", "id", user.ID))

	token, err := s.Tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	return token, nil
}

// ValidateToken verifies a session token and returns the user ID it carries.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (int64, error) {
	userID, err := s.Tokens.Verify(token)
	if err != nil {
		s.Log.DebugContext(ctx, "token rejected", "error", err)

		return 0, fmt.Errorf("verify token: %w", err)
	}

	return userID, nil
}

// Validate implements authclient.AuthClient. Invalid tokens are reported
// through the boolean, not as errors.
func (s *AuthService) Validate(ctx context.Context, token string) (int64, bool, error) {
	userID, err := s.ValidateToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAuthToken) {
			return 0, false, nil
		}

		return 0, false, err
	}

	return userID, true, nil
}
