package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/skillbridge/tutoring-backend/internal/models"
)

// CategoryRepository handles category database operations
type CategoryRepository struct {
	db DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a category. A taken name yields ErrDuplicate.
func (r *CategoryRepository) Create(ctx context.Context, name, description string) (*models.Category, error) {
	query := `
		INSERT INTO categories (name, description)
		VALUES ($1, NULLIF($2, ''))
		RETURNING id, name, description, created_at, updated_at
	`

	var category models.Category
	if err := r.db.GetContext(ctx, &category, query, name, description); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", translate(err))
	}
	return &category, nil
}

// List returns all categories ordered by name
func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	query := `SELECT id, name, description, created_at, updated_at FROM categories ORDER BY name ASC`
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Update renames a category. Returns nil, nil when it does not exist.
func (r *CategoryRepository) Update(ctx context.Context, id int64, name, description string) (*models.Category, error) {
	query := `
		UPDATE categories SET name = $2, description = NULLIF($3, ''), updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, description, created_at, updated_at
	`

	var category models.Category
	err := r.db.GetContext(ctx, &category, query, id, name, description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update category: %w", translate(err))
	}
	return &category, nil
}

// Delete removes a category and reports whether one was removed
func (r *CategoryRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete category: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// CountExisting returns how many of the given ids exist
func (r *CategoryRepository) CountExisting(ctx context.Context, ids []int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM categories WHERE id = ANY($1)`
	if err := r.db.GetContext(ctx, &count, query, pq.Array(ids)); err != nil {
		return 0, fmt.Errorf("failed to count categories: %w", err)
	}
	return count, nil
}
