package port

import (
	"context"
	"time"

	"github.com/rl1809/sweet-shop/internal/core/domain"
)

// SweetFilter holds optional, conjunctive search criteria. Zero/nil fields
// are ignored.
type SweetFilter struct {
	Name        string // case-insensitive substring
	CategoryID  string // exact
	MinPrice    *float64
	MaxPrice    *float64
	MinQuantity *int
}

// SweetUpdate carries a partial update; nil fields are left untouched.
type SweetUpdate struct {
	Name       *string
	CategoryID *string
	Price      *float64
	Quantity   *int
	ExpiresAt  *time.Time
}

type SweetRepository interface {
	// Insert persists a new sweet. The sweet's Category.ID must reference an
	// existing category; domain.ErrCategoryNotFound is returned otherwise.
	Insert(ctx context.Context, sweet *domain.Sweet) error

	// GetByID returns the sweet with its category expanded, or (nil, nil)
	// when no sweet matches.
	GetByID(ctx context.Context, id string) (*domain.Sweet, error)

	// List returns every sweet with its category expanded.
	List(ctx context.Context) ([]domain.Sweet, error)

	// Search returns sweets matching all set filter fields, categories
	// expanded.
	Search(ctx context.Context, filter SweetFilter) ([]domain.Sweet, error)

	// Update applies the set fields of upd. Returns domain.ErrSweetNotFound
	// or domain.ErrCategoryNotFound on unresolvable references.
	Update(ctx context.Context, id string, upd SweetUpdate) error

	// Delete removes the sweet, returning domain.ErrSweetNotFound if absent.
	Delete(ctx context.Context, id string) error

	// DecrementQuantity atomically decreases stock as a single conditional
	// store operation: the decrement applies only if quantity >= qty.
	// Returns domain.ErrInsufficientStock when the condition fails and
	// domain.ErrSweetNotFound when the sweet does not exist.
	DecrementQuantity(ctx context.Context, id string, qty int) error

	// IncrementQuantity atomically increases stock. Returns
	// domain.ErrSweetNotFound when the sweet does not exist.
	IncrementQuantity(ctx context.Context, id string, qty int) error
}
