package ports

import (
	"context"
	"time"

	"github.com/taskmaster/todo/internal/domain/entities"
)

// AuthService interface for authentication operations
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Profile(ctx context.Context, userID string) (*entities.User, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// TodoService interface for todo item operations
type TodoService interface {
	List(ctx context.Context, userID string, query TodoQuery) (*PagedResult[TodoResponse], error)
	Get(ctx context.Context, userID string, id int64) (*TodoResponse, error)
	Create(ctx context.Context, userID string, req CreateTodoRequest) (*TodoResponse, error)
	Update(ctx context.Context, userID string, id int64, req UpdateTodoRequest) (*TodoResponse, error)
	Delete(ctx context.Context, userID string, id int64) error
	ToggleCompletion(ctx context.Context, userID string, id int64) (*TodoResponse, error)
	Stats(ctx context.Context, userID string) (*TodoStats, error)
}

// CategoryService interface for category operations
type CategoryService interface {
	List(ctx context.Context, userID string) ([]*entities.Category, error)
	Get(ctx context.Context, userID string, id int64) (*entities.Category, error)
	Create(ctx context.Context, userID string, req CreateCategoryRequest) (*entities.Category, error)
	Update(ctx context.Context, userID string, id int64, req UpdateCategoryRequest) (*entities.Category, error)
	Delete(ctx context.Context, userID string, id int64) error
}

// Request/Response Types

// Auth related types
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=256"`
	Password  string `json:"password" validate:"required,min=6,max=100"`
	FirstName string `json:"firstName" validate:"omitempty,max=100"`
	LastName  string `json:"lastName" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token     string         `json:"token"`
	TokenType string         `json:"tokenType"`
	ExpiresAt time.Time      `json:"expiresAt"`
	User      *entities.User `json:"user"`
}

// Claims is what a valid token asserts about its bearer.
type Claims struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type TokenValidationResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// Category related types
type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Color       string  `json:"color" validate:"omitempty,hexcolor6"`
}

type UpdateCategoryRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Color       string  `json:"color" validate:"omitempty,hexcolor6"`
}

// Todo related types

// CreateTodoRequest creates a todo item. A zero priority means Medium.
type CreateTodoRequest struct {
	Title       string            `json:"title" validate:"required,max=200"`
	Description *string           `json:"description" validate:"omitempty,max=1000"`
	Priority    entities.Priority `json:"priority" validate:"omitempty,min=1,max=4"`
	DueDate     *time.Time        `json:"dueDate"`
	CategoryID  *int64            `json:"categoryId" validate:"omitempty,min=1"`
}

// UpdateTodoRequest replaces every editable field of a todo item.
// A zero priority keeps the stored one.
type UpdateTodoRequest struct {
	Title       string            `json:"title" validate:"required,max=200"`
	Description *string           `json:"description" validate:"omitempty,max=1000"`
	IsCompleted bool              `json:"isCompleted"`
	Priority    entities.Priority `json:"priority" validate:"omitempty,min=1,max=4"`
	DueDate     *time.Time        `json:"dueDate"`
	CategoryID  *int64            `json:"categoryId" validate:"omitempty,min=1"`
}

// TodoQuery is the raw listing descriptor. Nil fields take their defaults.
type TodoQuery struct {
	IsCompleted    *bool
	Priority       *entities.Priority
	CategoryID     *int64
	Search         string
	DueBefore      *time.Time
	DueAfter       *time.Time
	SortBy         string
	SortDescending *bool
	Page           *int
	PageSize       *int
}

// TodoResponse is a todo item plus the fields derived from the current time.
type TodoResponse struct {
	*entities.TodoItem
	IsOverdue    bool `json:"isOverdue"`
	DaysUntilDue *int `json:"daysUntilDue"`
}

// NewTodoResponse derives the time-dependent fields of t at now.
func NewTodoResponse(t *entities.TodoItem, now time.Time) TodoResponse {
	return TodoResponse{
		TodoItem:     t,
		IsOverdue:    t.IsOverdue(now),
		DaysUntilDue: t.DaysUntilDue(now),
	}
}

// TodoStats aggregates a user's todo items.
type TodoStats struct {
	Total          int     `json:"total" db:"total"`
	Completed      int     `json:"completed" db:"completed"`
	Pending        int     `json:"pending" db:"-"`
	Overdue        int     `json:"overdue" db:"overdue"`
	CompletionRate float64 `json:"completionRate" db:"-"`
}

// PagedResult is one page of a larger ordered result set.
type PagedResult[T any] struct {
	Items           []T  `json:"items"`
	TotalCount      int  `json:"totalCount"`
	Page            int  `json:"page"`
	PageSize        int  `json:"pageSize"`
	TotalPages      int  `json:"totalPages"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	HasNextPage     bool `json:"hasNextPage"`
}

// NewPagedResult computes the page metadata for items at page of size pageSize.
func NewPagedResult[T any](items []T, totalCount, page, pageSize int) *PagedResult[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = (totalCount + pageSize - 1) / pageSize
	}
	return &PagedResult[T]{
		Items:           items,
		TotalCount:      totalCount,
		Page:            page,
		PageSize:        pageSize,
		TotalPages:      totalPages,
		HasPreviousPage: page > 1,
		HasNextPage:     page < totalPages,
	}
}
