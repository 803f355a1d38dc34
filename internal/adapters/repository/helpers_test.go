package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/todo/internal/domain/entities"
	"github.com/taskmaster/todo/internal/infrastructure/database/dbtest"
)

var baseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *sqlx.DB {
	return dbtest.Open(t).DB
}

func createTestUser(t *testing.T, db *sqlx.DB, email string) *entities.User {
	t.Helper()
	user := &entities.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: "hash",
		FirstName:    "Test",
		LastName:     "User",
		CreatedAt:    baseTime,
		UpdatedAt:    baseTime,
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

func createTestCategory(t *testing.T, db *sqlx.DB, userID, name string) *entities.Category {
	t.Helper()
	category := &entities.Category{
		Name:      name,
		Color:     entities.DefaultCategoryColor,
		UserID:    userID,
		CreatedAt: baseTime,
		UpdatedAt: baseTime,
	}
	require.NoError(t, NewCategoryRepository(db).Create(context.Background(), category))
	return category
}

type todoOption func(*entities.TodoItem)

func withDescription(d string) todoOption {
	return func(t *entities.TodoItem) { t.Description = &d }
}

func withPriority(p entities.Priority) todoOption {
	return func(t *entities.TodoItem) { t.Priority = p }
}

func withDue(due time.Time) todoOption {
	return func(t *entities.TodoItem) { t.DueDate = &due }
}

func withCategory(id int64) todoOption {
	return func(t *entities.TodoItem) { t.CategoryID = &id }
}

func completed() todoOption {
	return func(t *entities.TodoItem) { t.IsCompleted = true }
}

func createdAt(at time.Time) todoOption {
	return func(t *entities.TodoItem) { t.CreatedAt = at }
}

func createTestTodo(t *testing.T, db *sqlx.DB, userID, title string, opts ...todoOption) *entities.TodoItem {
	t.Helper()
	todo := &entities.TodoItem{
		Title:    title,
		Priority: entities.PriorityMedium,
		UserID:   userID,
	}
	for _, opt := range opts {
		opt(todo)
	}
	if todo.CreatedAt.IsZero() {
		todo.CreatedAt = baseTime
	}
	todo.Touch(todo.CreatedAt)
	require.NoError(t, NewTodoRepository(db).Create(context.Background(), todo))
	return todo
}
