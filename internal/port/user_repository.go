package port

import (
	"context"

	"github.com/rl1809/sweet-shop/internal/core/domain"
)

type UserRepository interface {
	// FindByEmail returns (nil, nil) when no user matches. Email matching is
	// exact and case-sensitive.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// Insert persists a new user, returning domain.ErrUserExists when the
	// store's email uniqueness constraint rejects the write.
	Insert(ctx context.Context, user *domain.User) error
}
