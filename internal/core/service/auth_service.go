package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bookshelf/library-api/internal/core/domain"
	"github.com/bookshelf/library-api/internal/core/ports"
)

// timingPassword seeds the digest compared against when the username is
// unknown, so a miss costs the same bcrypt work as a wrong password.
const timingPassword = "library-api/timing-equalizer"

// AuthService implements login and bearer token resolution.
type AuthService struct {
	users       ports.UserRepository
	hasher      ports.PasswordHasher
	tokens      ports.TokenService
	log         zerolog.Logger
	dummyDigest string
}

func NewAuthService(users ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenService, log zerolog.Logger) *AuthService {
	dummy, err := hasher.Hash(timingPassword)
	if err != nil {
		log.Warn().Err(err).Msg("could not prepare timing digest")
	}
	return &AuthService{
		users:       users,
		hasher:      hasher,
		tokens:      tokens,
		log:         log,
		dummyDigest: dummy,
	}
}

// Login verifies username and password and issues an access token. Unknown
// users, wrong passwords and disabled accounts all yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.hasher.Verify(password, s.dummyDigest)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if user.Disabled {
		s.log.Info().Str("username", username).Msg("login refused for disabled user")
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Username, 0)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("access token issued")

	return &ports.LoginResult{
		AccessToken: token.Value,
		TokenType:   ports.TokenTypeBearer,
		ExpiresAt:   token.ExpiresAt,
	}, nil
}

// Authenticate validates token and loads its subject. Any token or account
// problem is reported as ErrUnauthorized; store failures are returned as is.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	subject, err := s.tokens.Validate(token)
	if err != nil {
		s.log.Debug().Err(err).Msg("token rejected")
		return nil, domain.ErrUnauthorized
	}

	user, err := s.users.FindByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.Debug().Str("subject", subject).Msg("token subject no longer exists")
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if user.Disabled {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}
