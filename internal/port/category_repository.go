package port

import (
	"context"

	"github.com/rl1809/sweet-shop/internal/core/domain"
)

type CategoryRepository interface {
	// Insert persists a new category, returning domain.ErrCategoryExists when
	// the store's name uniqueness constraint rejects the write.
	Insert(ctx context.Context, category *domain.Category) error

	// List returns all categories in natural store order.
	List(ctx context.Context) ([]domain.Category, error)

	// FindByName returns (nil, nil) when no category matches. Name matching
	// is exact and case-sensitive.
	FindByName(ctx context.Context, name string) (*domain.Category, error)

	// GetByID returns (nil, nil) when no category matches.
	GetByID(ctx context.Context, id string) (*domain.Category, error)
}
