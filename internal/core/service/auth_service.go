package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tasktracker/task-api/internal/core/domain"
	"github.com/tasktracker/task-api/internal/core/ports"
)

// AuthService implements registration and login. Token issuance happens in
// the transport layer from the returned projection.
type AuthService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	logger zerolog.Logger
}

func NewAuthService(users ports.UserRepository, hasher ports.PasswordHasher, logger zerolog.Logger) *AuthService {
	return &AuthService{users: users, hasher: hasher, logger: logger}
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.PublicUser, error) {
	user, err := s.create(ctx, email, password, domain.RoleUser)
	if err != nil {
		return nil, err
	}
	public := user.Public()
	return &public, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.PublicUser, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if s.hasher.Compare(user.PasswordHash, password) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	public := user.Public()
	return &public, nil
}

// EnsureAdmin creates an ADMIN account for email unless one with that email
// already exists. An existing account is left as it is, whatever its role.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (*domain.PublicUser, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		if existing.Role != domain.RoleAdmin {
			s.logger.Warn().Str("email", email).Msg("bootstrap admin email belongs to a non-admin account")
		}
		public := existing.Public()
		return &public, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("ensure admin: %w", err)
	}

	user, err := s.create(ctx, email, password, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", user.ID).Msg("bootstrap admin created")
	public := user.Public()
	return &public, nil
}

func (s *AuthService) create(ctx context.Context, email, password string, role domain.Role) (*domain.User, error) {
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailAlreadyExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The store's unique index still catches a concurrent registration.
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			return nil, domain.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", string(role)).Msg("user registered")
	return user, nil
}

var _ ports.AuthService = (*AuthService)(nil)
