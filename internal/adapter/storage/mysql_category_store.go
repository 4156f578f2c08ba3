package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/sweet-shop/internal/core/domain"
)

type CategoryStore struct {
	db *sql.DB
}

func (s *CategoryStore) Insert(ctx context.Context, category *domain.Category) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, created_at)
		VALUES (?, ?, ?)`,
		category.ID, category.Name, category.CreatedAt,
	)
	if isDuplicateEntry(err) {
		return domain.ErrCategoryExists
	}
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (s *CategoryStore) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM categories`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *CategoryStore) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	return s.get(ctx, `SELECT id, name, created_at FROM categories WHERE name = ?`, name)
}

func (s *CategoryStore) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	return s.get(ctx, `SELECT id, name, created_at FROM categories WHERE id = ?`, id)
}

func (s *CategoryStore) get(ctx context.Context, query string, arg any) (*domain.Category, error) {
	var c domain.Category
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query category: %w", err)
	}
	return &c, nil
}
