package entities

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Common errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrTodoNotFound       = errors.New("todo item not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrCategoryNameTaken  = errors.New("a category with this name already exists")
	ErrCategoryInUse      = errors.New("category is still referenced by todo items")
	ErrEmailTaken         = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidPriority    = errors.New("invalid priority")
)

// DefaultCategoryColor is used when a category is created without a color.
const DefaultCategoryColor = "#007bff"

// Priority is the ordinal importance of a todo item.
type Priority int

const (
	PriorityLow      Priority = 1
	PriorityMedium   Priority = 2
	PriorityHigh     Priority = 3
	PriorityCritical Priority = 4
)

var priorityNames = map[Priority]string{
	PriorityLow:      "Low",
	PriorityMedium:   "Medium",
	PriorityHigh:     "High",
	PriorityCritical: "Critical",
}

// IsValid reports whether p is one of the known priorities.
func (p Priority) IsValid() bool {
	_, ok := priorityNames[p]
	return ok
}

func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return strconv.Itoa(int(p))
}

// ParsePriority accepts either the ordinal ("3") or the name ("high", case-insensitive).
func ParsePriority(s string) (Priority, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		p := Priority(n)
		if !p.IsValid() {
			return 0, fmt.Errorf("%w: %d", ErrInvalidPriority, n)
		}
		return p, nil
	}
	for p, name := range priorityNames {
		if strings.EqualFold(name, s) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidPriority, s)
}

// UnmarshalJSON accepts a number or a priority name.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*p = Priority(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidPriority
	}
	parsed, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// User represents a registered account
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"firstName" db:"first_name"`
	LastName     string    `json:"lastName" db:"last_name"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Category groups todo items of a single user
type Category struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	Color       string    `json:"color" db:"color"`
	UserID      string    `json:"-" db:"user_id"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`

	// TodoCount is computed by the repository, never stored.
	TodoCount int `json:"todoCount" db:"todo_count"`
}

// TodoItem is a single task owned by a user
type TodoItem struct {
	ID          int64      `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description" db:"description"`
	IsCompleted bool       `json:"isCompleted" db:"is_completed"`
	Priority    Priority   `json:"priority" db:"priority"`
	DueDate     *time.Time `json:"dueDate" db:"due_date"`
	CategoryID  *int64     `json:"categoryId" db:"category_id"`
	UserID      string     `json:"-" db:"user_id"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
	CompletedAt *time.Time `json:"completedAt" db:"completed_at"`

	// Joined from categories on read.
	CategoryName  *string `json:"categoryName" db:"category_name"`
	CategoryColor *string `json:"categoryColor" db:"category_color"`
}

// Touch must be called before every save. It stamps UpdatedAt and keeps
// CompletedAt non-nil exactly when the item is completed.
func (t *TodoItem) Touch(now time.Time) {
	now = NormalizeTime(now)
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	switch {
	case t.IsCompleted && t.CompletedAt == nil:
		t.CompletedAt = &now
	case !t.IsCompleted:
		t.CompletedAt = nil
	}
}

// IsOverdue reports whether the item has a due date in the past and is still open.
func (t *TodoItem) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.IsCompleted {
		return false
	}
	return t.DueDate.Before(now)
}

// DaysUntilDue returns the whole days between now and the due date, truncated
// toward zero. Negative values mean the due date has passed.
func (t *TodoItem) DaysUntilDue(now time.Time) *int {
	if t.DueDate == nil {
		return nil
	}
	days := int(t.DueDate.Sub(now).Hours() / 24)
	return &days
}

// Business logic methods for Category
func (c *Category) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Color = strings.TrimSpace(c.Color)
	if c.Color == "" {
		c.Color = DefaultCategoryColor
	}
	if c.Description != nil {
		d := strings.TrimSpace(*c.Description)
		if d == "" {
			c.Description = nil
		} else {
			c.Description = &d
		}
	}
}

// NormalizeTime converts t to UTC with second precision, which is how every
// timestamp is persisted.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// NormalizeTimePtr is NormalizeTime for optional values.
func NormalizeTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	n := NormalizeTime(*t)
	return &n
}
