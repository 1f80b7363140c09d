package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/core"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const categoryColumns = `id, name, type, color`

func scanCategory(s rowScanner) (core.Category, error) {
	var c core.Category
	err := s.Scan(&c.ID, &c.Name, &c.Type, &c.Color)
	return c, err
}

// ListCategories implements backend.CategoryStore
func (r *SQLiteRepository) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = ? AND deleted_at IS NULL ORDER BY name, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetCategory implements backend.CategoryStore
func (r *SQLiteRepository) GetCategory(ctx context.Context, userID, id int64) (core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		id, userID,
	)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// CreateCategory implements backend.CategoryStore
func (r *SQLiteRepository) CreateCategory(ctx context.Context, userID int64, c core.Category) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (user_id, name, type, color) VALUES (?, ?, ?, ?)`,
		userID, c.Name, string(c.Type), c.Color,
	)
	if isUniqueViolation(err) {
		return core.Category{}, core.ErrDuplicateCategory
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return core.Category{}, fmt.Errorf("category id: %w", err)
	}
	slog.InfoContext(ctx, "Category saved to SQLite", "id", c.ID, "user_id", userID, "name", c.Name)
	return c, nil
}

// UpdateCategory implements backend.CategoryStore
func (r *SQLiteRepository) UpdateCategory(ctx context.Context, userID int64, c core.Category) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, type = ?, color = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		c.Name, string(c.Type), c.Color, c.ID, userID,
	)
	if isUniqueViolation(err) {
		return core.ErrDuplicateCategory
	}
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return expectOneRow(res)
}

// DeleteCategory implements backend.CategoryStore. The name becomes free for
// reuse once the row is soft deleted.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, userID, id int64) error {
	return r.softDelete(ctx, "categories", userID, id)
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
