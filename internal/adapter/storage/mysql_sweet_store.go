package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rl1809/sweet-shop/internal/core/domain"
	"github.com/rl1809/sweet-shop/internal/port"
)

type SweetStore struct {
	db *sql.DB
}

const sweetColumns = `
	s.id, s.name, s.price, s.quantity, s.expires_at, s.created_at, s.updated_at,
	c.id, c.name, c.created_at`

const sweetFrom = ` FROM sweets s JOIN categories c ON c.id = s.category_id`

func scanSweet(row interface{ Scan(...any) error }) (*domain.Sweet, error) {
	var sweet domain.Sweet
	var expiresAt sql.NullTime
	err := row.Scan(
		&sweet.ID, &sweet.Name, &sweet.Price, &sweet.Quantity, &expiresAt,
		&sweet.CreatedAt, &sweet.UpdatedAt,
		&sweet.Category.ID, &sweet.Category.Name, &sweet.Category.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		sweet.ExpiresAt = &t
	}
	return &sweet, nil
}

func (s *SweetStore) Insert(ctx context.Context, sweet *domain.Sweet) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sweets (id, name, category_id, price, quantity, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sweet.ID, sweet.Name, sweet.Category.ID, sweet.Price, sweet.Quantity,
		sweet.ExpiresAt, sweet.CreatedAt, sweet.UpdatedAt,
	)
	if isForeignKeyViolation(err) {
		return domain.ErrCategoryNotFound
	}
	if err != nil {
		return fmt.Errorf("insert sweet: %w", err)
	}
	return nil
}

func (s *SweetStore) GetByID(ctx context.Context, id string) (*domain.Sweet, error) {
	row := s.db.QueryRowContext(ctx, `SELECT`+sweetColumns+sweetFrom+` WHERE s.id = ?`, id)
	sweet, err := scanSweet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query sweet: %w", err)
	}
	return sweet, nil
}

func (s *SweetStore) List(ctx context.Context) ([]domain.Sweet, error) {
	return s.query(ctx, `SELECT`+sweetColumns+sweetFrom)
}

func (s *SweetStore) Search(ctx context.Context, filter port.SweetFilter) ([]domain.Sweet, error) {
	query := `SELECT` + sweetColumns + sweetFrom
	var conds []string
	var args []any

	if filter.Name != "" {
		conds = append(conds, "LOWER(s.name) LIKE ?")
		args = append(args, "%"+strings.ToLower(filter.Name)+"%")
	}
	if filter.CategoryID != "" {
		conds = append(conds, "s.category_id = ?")
		args = append(args, filter.CategoryID)
	}
	if filter.MinPrice != nil {
		conds = append(conds, "s.price >= ?")
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		conds = append(conds, "s.price <= ?")
		args = append(args, *filter.MaxPrice)
	}
	if filter.MinQuantity != nil {
		conds = append(conds, "s.quantity >= ?")
		args = append(args, *filter.MinQuantity)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	return s.query(ctx, query, args...)
}

func (s *SweetStore) Update(ctx context.Context, id string, upd port.SweetUpdate) error {
	var sets []string
	var args []any

	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.CategoryID != nil {
		sets = append(sets, "category_id = ?")
		args = append(args, *upd.CategoryID)
	}
	if upd.Price != nil {
		sets = append(sets, "price = ?")
		args = append(args, *upd.Price)
	}
	if upd.Quantity != nil {
		sets = append(sets, "quantity = ?")
		args = append(args, *upd.Quantity)
	}
	if upd.ExpiresAt != nil {
		sets = append(sets, "expires_at = ?")
		args = append(args, *upd.ExpiresAt)
	}
	if len(sets) == 0 {
		return s.requireExists(ctx, id)
	}

	sets = append(sets, "updated_at = NOW(6)")
	args = append(args, id)

	result, err := s.db.ExecContext(ctx,
		`UPDATE sweets SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if isForeignKeyViolation(err) {
		return domain.ErrCategoryNotFound
	}
	if err != nil {
		return fmt.Errorf("update sweet: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return s.requireExists(ctx, id)
	}
	return nil
}

func (s *SweetStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sweets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete sweet: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrSweetNotFound
	}
	return nil
}

// DecrementQuantity issues the decrement as one conditional statement so the
// quantity check and the write cannot race against a concurrent purchase.
func (s *SweetStore) DecrementQuantity(ctx context.Context, id string, qty int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE sweets
		SET quantity = quantity - ?, updated_at = NOW(6)
		WHERE id = ? AND quantity >= ?`,
		qty, id, qty,
	)
	if err != nil {
		return fmt.Errorf("decrement quantity: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		if err := s.requireExists(ctx, id); err != nil {
			return err
		}
		return domain.ErrInsufficientStock
	}
	return nil
}

func (s *SweetStore) IncrementQuantity(ctx context.Context, id string, qty int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE sweets
		SET quantity = quantity + ?, updated_at = NOW(6)
		WHERE id = ?`,
		qty, id,
	)
	if err != nil {
		return fmt.Errorf("increment quantity: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return s.requireExists(ctx, id)
	}
	return nil
}

func (s *SweetStore) query(ctx context.Context, query string, args ...any) ([]domain.Sweet, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sweets: %w", err)
	}
	defer rows.Close()

	sweets := []domain.Sweet{}
	for rows.Next() {
		sweet, err := scanSweet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sweet: %w", err)
		}
		sweets = append(sweets, *sweet)
	}
	return sweets, rows.Err()
}

func (s *SweetStore) requireExists(ctx context.Context, id string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM sweets WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrSweetNotFound
	}
	if err != nil {
		return fmt.Errorf("query sweet: %w", err)
	}
	return nil
}
