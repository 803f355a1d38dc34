package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/taskmaster/todo/internal/domain/entities"
	"github.com/taskmaster/todo/internal/infrastructure/database"
	"github.com/taskmaster/todo/internal/ports"
)

const categorySelect = `
	SELECT c.id, c.name, c.description, c.color, c.user_id, c.created_at, c.updated_at,
		(SELECT COUNT(*) FROM todo_items t WHERE t.category_id = c.id) AS todo_count
	FROM categories c`

// CategoryRepository persists categories with sqlx
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *sqlx.DB) ports.CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a category and assigns its ID.
func (r *CategoryRepository) Create(ctx context.Context, category *entities.Category) error {
	query := r.db.Rebind(`
		INSERT INTO categories (name, description, color, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`)

	category.CreatedAt = entities.NormalizeTime(category.CreatedAt)
	category.UpdatedAt = entities.NormalizeTime(category.UpdatedAt)

	err := r.db.QueryRowxContext(ctx, query,
		category.Name, category.Description, category.Color,
		category.UserID, category.CreatedAt, category.UpdatedAt,
	).Scan(&category.ID)
	if err != nil {
		return mapCategoryError("create category", err)
	}

	category.TodoCount = 0
	return nil
}

// GetByID retrieves a category owned by userID
func (r *CategoryRepository) GetByID(ctx context.Context, userID string, id int64) (*entities.Category, error) {
	query := r.db.Rebind(categorySelect + ` WHERE c.id = ? AND c.user_id = ?`)

	var category entities.Category
	err := r.db.GetContext(ctx, &category, query, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	return &category, nil
}

// List returns all categories of userID ordered by name
func (r *CategoryRepository) List(ctx context.Context, userID string) ([]*entities.Category, error) {
	query := r.db.Rebind(categorySelect + ` WHERE c.user_id = ? ORDER BY LOWER(c.name), c.id`)

	categories := []*entities.Category{}
	if err := r.db.SelectContext(ctx, &categories, query, userID); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return categories, nil
}

// Update saves name, description and color of an owned category
func (r *CategoryRepository) Update(ctx context.Context, category *entities.Category) error {
	query := r.db.Rebind(`
		UPDATE categories
		SET name = ?, description = ?, color = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`)

	category.UpdatedAt = entities.NormalizeTime(category.UpdatedAt)

	result, err := r.db.ExecContext(ctx, query,
		category.Name, category.Description, category.Color, category.UpdatedAt,
		category.ID, category.UserID,
	)
	if err != nil {
		return mapCategoryError("update category", err)
	}

	return requireAffected(result, entities.ErrCategoryNotFound)
}

// Delete removes an owned category. A category still referenced by todo
// items is rejected by the foreign key.
func (r *CategoryRepository) Delete(ctx context.Context, userID string, id int64) error {
	query := r.db.Rebind(`DELETE FROM categories WHERE id = ? AND user_id = ?`)

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return entities.ErrCategoryInUse
		}
		return fmt.Errorf("delete category: %w", err)
	}

	return requireAffected(result, entities.ErrCategoryNotFound)
}

func (r *CategoryRepository) ExistsByName(ctx context.Context, userID, name string, excludeID int64) (bool, error) {
	query := r.db.Rebind(`
		SELECT COUNT(*) FROM categories
		WHERE user_id = ? AND LOWER(name) = LOWER(?) AND id <> ?`)

	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, name, excludeID); err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}

	return count > 0, nil
}

func (r *CategoryRepository) HasTodos(ctx context.Context, userID string, id int64) (bool, error) {
	query := r.db.Rebind(`SELECT COUNT(*) FROM todo_items WHERE category_id = ? AND user_id = ?`)

	var count int
	if err := r.db.GetContext(ctx, &count, query, id, userID); err != nil {
		return false, fmt.Errorf("count category todos: %w", err)
	}

	return count > 0, nil
}

func mapCategoryError(op string, err error) error {
	if database.IsUniqueViolation(err) {
		return entities.ErrCategoryNameTaken
	}
	return fmt.Errorf("%s: %w", op, err)
}

// requireAffected turns a statement that touched no rows into notFound.
func requireAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
