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

// SearchFilter holds the optional, conjunctive sweet search criteria as they
// arrive at the API boundary. Category is a category name; the name-to-id
// translation happens once, in Search.
type SearchFilter struct {
	Name        string
	Category    string
	MinPrice    *float64
	MaxPrice    *float64
	MinQuantity *int
}

// SweetService is the inventory ledger: CRUD and search over sweets,
// referential integrity to categories, and atomic purchase/restock.
type SweetService struct {
	sweets     port.SweetRepository
	categories port.CategoryRepository
	cache      port.CacheRepository // nil disables replay protection
}

func NewSweetService(sweets port.SweetRepository, categories port.CategoryRepository, cache port.CacheRepository) *SweetService {
	return &SweetService{
		sweets:     sweets,
		categories: categories,
		cache:      cache,
	}
}

// Add creates a sweet referencing an existing category by id.
func (s *SweetService) Add(ctx context.Context, name, categoryID string, price float64, quantity int, expiresAt *time.Time) (*domain.Sweet, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 50 {
		return nil, domain.Invalid("sweet name must be 1-50 characters")
	}
	if categoryID == "" {
		return nil, domain.Invalid("category is required")
	}
	if price < 0 {
		return nil, domain.Invalid("price must be >= 0")
	}
	if quantity < 0 {
		return nil, domain.Invalid("quantity must be >= 0")
	}

	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("resolve category: %w", err)
	}
	if category == nil {
		return nil, domain.ErrCategoryNotFound
	}

	now := time.Now()
	sweet := &domain.Sweet{
		ID:        uuid.NewString(),
		Name:      name,
		Category:  *category,
		Price:     price,
		Quantity:  quantity,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sweets.Insert(ctx, sweet); err != nil {
		return nil, err
	}

	return sweet, nil
}

func (s *SweetService) List(ctx context.Context) ([]domain.Sweet, error) {
	return s.sweets.List(ctx)
}

// Search applies the filters conjunctively. An unknown category name yields
// an empty result set rather than an error.
func (s *SweetService) Search(ctx context.Context, filter SearchFilter) ([]domain.Sweet, error) {
	repoFilter := port.SweetFilter{
		Name:        filter.Name,
		MinPrice:    filter.MinPrice,
		MaxPrice:    filter.MaxPrice,
		MinQuantity: filter.MinQuantity,
	}

	if filter.Category != "" {
		category, err := s.categories.FindByName(ctx, filter.Category)
		if err != nil {
			return nil, fmt.Errorf("resolve category: %w", err)
		}
		if category == nil {
			return []domain.Sweet{}, nil
		}
		repoFilter.CategoryID = category.ID
	}

	return s.sweets.Search(ctx, repoFilter)
}

// Update applies a partial update; nil fields are left untouched. A category
// change is re-resolved before the write.
func (s *SweetService) Update(ctx context.Context, id string, upd port.SweetUpdate) (*domain.Sweet, error) {
	if upd.Name != nil {
		trimmed := strings.TrimSpace(*upd.Name)
		if trimmed == "" || len(trimmed) > 50 {
			return nil, domain.Invalid("sweet name must be 1-50 characters")
		}
		upd.Name = &trimmed
	}
	if upd.Price != nil && *upd.Price < 0 {
		return nil, domain.Invalid("price must be >= 0")
	}
	if upd.Quantity != nil && *upd.Quantity < 0 {
		return nil, domain.Invalid("quantity must be >= 0")
	}

	if upd.CategoryID != nil {
		category, err := s.categories.GetByID(ctx, *upd.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("resolve category: %w", err)
		}
		if category == nil {
			return nil, domain.ErrCategoryNotFound
		}
	}

	if err := s.sweets.Update(ctx, id, upd); err != nil {
		return nil, err
	}

	return s.getExisting(ctx, id)
}

func (s *SweetService) Delete(ctx context.Context, id string) error {
	return s.sweets.Delete(ctx, id)
}

// Purchase decrements stock through a single conditional store operation, so
// two concurrent purchases can never drive the quantity negative.
func (s *SweetService) Purchase(ctx context.Context, requestID, id string, quantity int) (*domain.Sweet, error) {
	if quantity <= 0 {
		return nil, domain.Invalid("quantity must be > 0")
	}
	if err := s.guardReplay(ctx, "purchase", id, requestID); err != nil {
		return nil, err
	}

	if err := s.sweets.DecrementQuantity(ctx, id, quantity); err != nil {
		return nil, err
	}
	return s.getExisting(ctx, id)
}

// Restock increments stock. Admin gating happens before this call.
func (s *SweetService) Restock(ctx context.Context, requestID, id string, quantity int) (*domain.Sweet, error) {
	if quantity <= 0 {
		return nil, domain.Invalid("quantity must be > 0")
	}
	if err := s.guardReplay(ctx, "restock", id, requestID); err != nil {
		return nil, err
	}

	if err := s.sweets.IncrementQuantity(ctx, id, quantity); err != nil {
		return nil, err
	}
	return s.getExisting(ctx, id)
}

// guardReplay rejects a replayed stock mutation when the client supplied a
// request id and a cache is configured; otherwise it is a no-op.
func (s *SweetService) guardReplay(ctx context.Context, op, sweetID, requestID string) error {
	if s.cache == nil || requestID == "" {
		return nil
	}

	key := fmt.Sprintf("%s:%s:%s", op, sweetID, requestID)
	ok, err := s.cache.SetIdempotency(ctx, key)
	if err != nil {
		return fmt.Errorf("idempotency check failed: %w", err)
	}
	if !ok {
		return domain.ErrDuplicateRequest
	}
	return nil
}

func (s *SweetService) getExisting(ctx context.Context, id string) (*domain.Sweet, error) {
	sweet, err := s.sweets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sweet == nil {
		return nil, domain.ErrSweetNotFound
	}
	return sweet, nil
}
