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

type CategoryService struct {
	categories port.CategoryRepository
}

func NewCategoryService(categories port.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

// Create registers a new category. Names are trimmed and unique
// (case-sensitive exact match); the store's unique index is the
// authoritative conflict signal.
func (s *CategoryService) Create(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 30 {
		return nil, domain.Invalid("category name must be 1-30 characters")
	}

	existing, err := s.categories.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("lookup category: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrCategoryExists
	}

	category := &domain.Category{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := s.categories.Insert(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}
