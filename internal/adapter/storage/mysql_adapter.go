package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// MySQLAdapter bundles the per-entity stores over one shared connection pool.
type MySQLAdapter struct {
	db *sql.DB

	Users      *UserStore
	Categories *CategoryStore
	Sweets     *SweetStore
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{
		db:         db,
		Users:      &UserStore{db: db},
		Categories: &CategoryStore{db: db},
		Sweets:     &SweetStore{db: db},
	}
}

// InitSchema creates the tables if they do not exist. The unique indexes on
// users.email and categories.name are the authoritative conflict signals;
// the binary collation keeps both matches case-sensitive. The foreign key on
// sweets.category_id guarantees a sweet's category is always resolvable.
func (m *MySQLAdapter) InitSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id         VARCHAR(36) PRIMARY KEY,
			username   VARCHAR(50) NOT NULL,
			email      VARCHAR(255) COLLATE utf8mb4_bin NOT NULL,
			password   VARCHAR(255) NOT NULL,
			is_admin   BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME(6) NOT NULL,
			UNIQUE KEY uniq_users_email (email)
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id         VARCHAR(36) PRIMARY KEY,
			name       VARCHAR(30) COLLATE utf8mb4_bin NOT NULL,
			created_at DATETIME(6) NOT NULL,
			UNIQUE KEY uniq_categories_name (name)
		)`,
		`CREATE TABLE IF NOT EXISTS sweets (
			id          VARCHAR(36) PRIMARY KEY,
			name        VARCHAR(50) NOT NULL,
			category_id VARCHAR(36) NOT NULL,
			price       DOUBLE NOT NULL,
			quantity    INT NOT NULL,
			expires_at  DATETIME(6) NULL,
			created_at  DATETIME(6) NOT NULL,
			updated_at  DATETIME(6) NOT NULL,
			KEY idx_sweets_category (category_id),
			CONSTRAINT fk_sweets_category FOREIGN KEY (category_id) REFERENCES categories (id)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

const (
	mysqlErrDuplicateEntry  = 1062
	mysqlErrForeignKeyNoRef = 1452
)

func isDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry
}

func isForeignKeyViolation(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrForeignKeyNoRef
}
