package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/sweet-shop/internal/core/domain"
	"github.com/rl1809/sweet-shop/internal/port"
)

type AuthService struct {
	users  port.UserRepository
	hasher port.PasswordHasher
	tokens port.TokenService
}

func NewAuthService(users port.UserRepository, hasher port.PasswordHasher, tokens port.TokenService) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register creates a new user. The pre-insert existence check produces the
// friendly conflict message on the common path; the store's unique index on
// email is the authoritative guard against concurrent registrations.
func (s *AuthService) Register(ctx context.Context, username, email, password string, isAdmin bool) error {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || len(username) > 50 {
		return domain.Invalid("username must be 1-50 characters")
	}
	if email == "" || !strings.Contains(email, "@") {
		return domain.Invalid("a valid email is required")
	}
	if password == "" {
		return domain.Invalid("password is required")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return domain.ErrUserExists
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		Password:  hash,
		IsAdmin:   isAdmin,
		CreatedAt: time.Now(),
	}

	return s.users.Insert(ctx, user)
}

// Login verifies credentials and issues a token with the role derived from
// the stored admin flag. Role changes take effect on the next login.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, domain.Role, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", "", fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return "", "", domain.ErrUserNotFound
	}

	if !s.hasher.Verify(password, user.Password) {
		return "", "", domain.ErrBadCredentials
	}

	role := user.Role()
	token, err := s.tokens.Issue(domain.Identity{Subject: user.Email, Role: role})
	if err != nil {
		return "", "", fmt.Errorf("issue token: %w", err)
	}

	return token, role, nil
}
