package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/taskmaster/todo/internal/domain/entities"
	"github.com/taskmaster/todo/internal/infrastructure/database"
	"github.com/taskmaster/todo/internal/ports"
)

const todoSelect = `
	SELECT t.id, t.title, t.description, t.is_completed, t.priority, t.due_date,
		t.category_id, t.user_id, t.created_at, t.updated_at, t.completed_at,
		c.name AS category_name, c.color AS category_color
	FROM todo_items t
	LEFT JOIN categories c ON c.id = t.category_id`

// TodoRepository persists todo items with sqlx
type TodoRepository struct {
	db *sqlx.DB
}

// NewTodoRepository creates a new todo repository
func NewTodoRepository(db *sqlx.DB) ports.TodoRepository {
	return &TodoRepository{db: db}
}

// Create inserts a todo item and assigns its ID.
func (r *TodoRepository) Create(ctx context.Context, todo *entities.TodoItem) error {
	query := r.db.Rebind(`
		INSERT INTO todo_items (title, description, is_completed, priority, due_date,
			category_id, user_id, created_at, updated_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	normalizeTodoTimes(todo)

	err := r.db.QueryRowxContext(ctx, query,
		todo.Title, todo.Description, todo.IsCompleted, todo.Priority, todo.DueDate,
		todo.CategoryID, todo.UserID, todo.CreatedAt, todo.UpdatedAt, todo.CompletedAt,
	).Scan(&todo.ID)
	if err != nil {
		return mapTodoError("create todo", err)
	}

	return nil
}

// GetByID retrieves a todo item owned by userID together with its category display fields
func (r *TodoRepository) GetByID(ctx context.Context, userID string, id int64) (*entities.TodoItem, error) {
	query := r.db.Rebind(todoSelect + ` WHERE t.id = ? AND t.user_id = ?`)

	var todo entities.TodoItem
	err := r.db.GetContext(ctx, &todo, query, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrTodoNotFound
		}
		return nil, fmt.Errorf("get todo: %w", err)
	}

	return &todo, nil
}

// List retrieves one page of the user's todo items matching filter, plus the
// size of the whole filtered set.
func (r *TodoRepository) List(ctx context.Context, userID string, filter ports.TodoFilter) ([]*entities.TodoItem, int, error) {
	// Build WHERE clause
	conditions := []string{"t.user_id = ?"}
	args := []interface{}{userID}

	if filter.IsCompleted != nil {
		conditions = append(conditions, "t.is_completed = ?")
		args = append(args, *filter.IsCompleted)
	}

	if filter.Priority != nil {
		conditions = append(conditions, "t.priority = ?")
		args = append(args, *filter.Priority)
	}

	if filter.CategoryID != nil {
		conditions = append(conditions, "t.category_id = ?")
		args = append(args, *filter.CategoryID)
	}

	if filter.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(filter.Search)) + "%"
		conditions = append(conditions,
			`(LOWER(t.title) LIKE ? ESCAPE '\' OR LOWER(t.description) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	if filter.DueBefore != nil {
		conditions = append(conditions, "t.due_date <= ?")
		args = append(args, entities.NormalizeTime(*filter.DueBefore))
	}

	if filter.DueAfter != nil {
		conditions = append(conditions, "t.due_date >= ?")
		args = append(args, entities.NormalizeTime(*filter.DueAfter))
	}

	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	// Count total records
	countQuery := r.db.Rebind("SELECT COUNT(*) FROM todo_items t " + whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count todos: %w", err)
	}

	// Compare page numbers before computing the offset so a huge page
	// cannot overflow into a valid one.
	todos := []*entities.TodoItem{}
	if total == 0 || filter.PageSize < 1 || filter.Page > (total+filter.PageSize-1)/filter.PageSize {
		return todos, total, nil
	}

	direction := "ASC"
	if filter.SortDescending {
		direction = "DESC"
	}

	query := r.db.Rebind(fmt.Sprintf(`%s
		%s
		ORDER BY %s, t.id %s
		LIMIT ? OFFSET ?`, todoSelect, whereClause, orderByClause(filter.SortBy, direction), direction))

	args = append(args, filter.PageSize, filter.Offset())

	if err := r.db.SelectContext(ctx, &todos, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list todos: %w", err)
	}

	return todos, total, nil
}

// orderByClause maps each sort field to its ORDER BY expression. Items
// without a due date sort after all dated items in either direction.
func orderByClause(field entities.SortField, direction string) string {
	switch field {
	case entities.SortByTitle:
		return "LOWER(t.title) " + direction
	case entities.SortByPriority:
		return "t.priority " + direction
	case entities.SortByDueDate:
		return "CASE WHEN t.due_date IS NULL THEN 1 ELSE 0 END, t.due_date " + direction
	case entities.SortByUpdatedAt:
		return "t.updated_at " + direction
	default:
		return "t.created_at " + direction
	}
}

// Update saves every editable field of an owned todo item
func (r *TodoRepository) Update(ctx context.Context, todo *entities.TodoItem) error {
	query := r.db.Rebind(`
		UPDATE todo_items
		SET title = ?, description = ?, is_completed = ?, priority = ?, due_date = ?,
			category_id = ?, updated_at = ?, completed_at = ?
		WHERE id = ? AND user_id = ?`)

	normalizeTodoTimes(todo)

	result, err := r.db.ExecContext(ctx, query,
		todo.Title, todo.Description, todo.IsCompleted, todo.Priority, todo.DueDate,
		todo.CategoryID, todo.UpdatedAt, todo.CompletedAt,
		todo.ID, todo.UserID,
	)
	if err != nil {
		return mapTodoError("update todo", err)
	}

	return requireAffected(result, entities.ErrTodoNotFound)
}

// Delete removes an owned todo item
func (r *TodoRepository) Delete(ctx context.Context, userID string, id int64) error {
	query := r.db.Rebind(`DELETE FROM todo_items WHERE id = ? AND user_id = ?`)

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}

	return requireAffected(result, entities.ErrTodoNotFound)
}

// ToggleCompletion flips the completion flag and its timestamp in a single
// statement, then returns the updated row.
func (r *TodoRepository) ToggleCompletion(ctx context.Context, userID string, id int64, now time.Time) (*entities.TodoItem, error) {
	now = entities.NormalizeTime(now)

	query := r.db.Rebind(fmt.Sprintf(`
		UPDATE todo_items
		SET is_completed = NOT is_completed,
			completed_at = CASE WHEN is_completed THEN NULL ELSE %s END,
			updated_at = ?
		WHERE id = ? AND user_id = ?`, r.timestampParam()))

	result, err := r.db.ExecContext(ctx, query, now, now, id, userID)
	if err != nil {
		return nil, fmt.Errorf("toggle todo: %w", err)
	}
	if err := requireAffected(result, entities.ErrTodoNotFound); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, userID, id)
}

// Stats counts the user's todo items. Pending and CompletionRate are left
// for the caller to derive.
func (r *TodoRepository) Stats(ctx context.Context, userID string, now time.Time) (*ports.TodoStats, error) {
	query := r.db.Rebind(`
		SELECT COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN is_completed THEN 1 ELSE 0 END), 0) AS completed,
			COALESCE(SUM(CASE WHEN NOT is_completed AND due_date IS NOT NULL AND due_date < ? THEN 1 ELSE 0 END), 0) AS overdue
		FROM todo_items
		WHERE user_id = ?`)

	var stats ports.TodoStats
	if err := r.db.GetContext(ctx, &stats, query, entities.NormalizeTime(now), userID); err != nil {
		return nil, fmt.Errorf("todo stats: %w", err)
	}

	return &stats, nil
}

// timestampParam is a placeholder whose type Postgres cannot infer from context.
func (r *TodoRepository) timestampParam() string {
	if r.db.DriverName() == database.DriverPostgres {
		return "CAST(? AS TIMESTAMPTZ)"
	}
	return "?"
}

func normalizeTodoTimes(todo *entities.TodoItem) {
	todo.CreatedAt = entities.NormalizeTime(todo.CreatedAt)
	todo.UpdatedAt = entities.NormalizeTime(todo.UpdatedAt)
	todo.DueDate = entities.NormalizeTimePtr(todo.DueDate)
	todo.CompletedAt = entities.NormalizeTimePtr(todo.CompletedAt)
}

func mapTodoError(op string, err error) error {
	if database.IsForeignKeyViolation(err) {
		return entities.ErrCategoryNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern using '\' as escape.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
