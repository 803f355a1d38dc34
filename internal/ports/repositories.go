package ports

import (
	"context"
	"time"

	"github.com/taskmaster/todo/internal/domain/entities"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id string) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// CategoryRepository defines the interface for category data operations.
// Every method is scoped to the owning user.
type CategoryRepository interface {
	Create(ctx context.Context, category *entities.Category) error
	GetByID(ctx context.Context, userID string, id int64) (*entities.Category, error)
	List(ctx context.Context, userID string) ([]*entities.Category, error)
	Update(ctx context.Context, category *entities.Category) error
	Delete(ctx context.Context, userID string, id int64) error
	// ExistsByName compares names case-insensitively. excludeID skips the
	// category being renamed; pass 0 to check all.
	ExistsByName(ctx context.Context, userID, name string, excludeID int64) (bool, error)
	HasTodos(ctx context.Context, userID string, id int64) (bool, error)
}

// TodoRepository defines the interface for todo item data operations.
// Every method is scoped to the owning user.
type TodoRepository interface {
	Create(ctx context.Context, todo *entities.TodoItem) error
	GetByID(ctx context.Context, userID string, id int64) (*entities.TodoItem, error)
	// List returns one page of the filtered set and the size of the whole set.
	List(ctx context.Context, userID string, filter TodoFilter) ([]*entities.TodoItem, int, error)
	Update(ctx context.Context, todo *entities.TodoItem) error
	Delete(ctx context.Context, userID string, id int64) error
	ToggleCompletion(ctx context.Context, userID string, id int64, now time.Time) (*entities.TodoItem, error)
	Stats(ctx context.Context, userID string, now time.Time) (*TodoStats, error)
}

// StatsCache stores per-user todo statistics between mutations.
// A miss is reported as (nil, nil).
type StatsCache interface {
	Get(ctx context.Context, userID string) (*TodoStats, error)
	Set(ctx context.Context, userID string, stats *TodoStats) error
	Invalidate(ctx context.Context, userID string) error
}

// TodoFilter is a normalized todo query ready for the data-access layer.
// Nil pointers impose no constraint.
type TodoFilter struct {
	IsCompleted    *bool
	Priority       *entities.Priority
	CategoryID     *int64
	Search         string
	DueBefore      *time.Time
	DueAfter       *time.Time
	SortBy         entities.SortField
	SortDescending bool
	Page           int
	PageSize       int
}

// Offset returns the number of rows preceding the requested page.
func (f TodoFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
