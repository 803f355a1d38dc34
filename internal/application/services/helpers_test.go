package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/todo/internal/adapters/repository"
	"github.com/taskmaster/todo/internal/domain/entities"
	"github.com/taskmaster/todo/internal/infrastructure/config"
	"github.com/taskmaster/todo/internal/infrastructure/database/dbtest"
	"github.com/taskmaster/todo/internal/infrastructure/logger"
	"github.com/taskmaster/todo/internal/ports"
)

var baseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// testClock is a settable clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock { return &testClock{now: baseTime} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeStatsCache records stored stats in memory.
type fakeStatsCache struct {
	mu          sync.Mutex
	data        map[string]ports.TodoStats
	hits        int
	invalidated int
}

func newFakeStatsCache() *fakeStatsCache {
	return &fakeStatsCache{data: make(map[string]ports.TodoStats)}
}

func (c *fakeStatsCache) Get(_ context.Context, userID string) (*ports.TodoStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats, ok := c.data[userID]
	if !ok {
		return nil, nil
	}
	c.hits++
	return &stats, nil
}

func (c *fakeStatsCache) Set(_ context.Context, userID string, stats *ports.TodoStats) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[userID] = *stats
	return nil
}

func (c *fakeStatsCache) Invalidate(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, userID)
	c.invalidated++
	return nil
}

type testEnv struct {
	db         *sqlx.DB
	clock      *testClock
	cache      *fakeStatsCache
	auth       *AuthService
	todos      *TodoService
	categories *CategoryService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := dbtest.Open(t).DB
	clock := newTestClock()
	statsCache := newFakeStatsCache()
	log := logger.NewNop()

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	todoRepo := repository.NewTodoRepository(db)

	auth := NewAuthService(userRepo, config.JWTConfig{
		Secret:    "test-secret",
		ExpiresIn: time.Hour,
		Issuer:    "todo-api",
		Audience:  "todo-app",
	}, clock, log)
	auth.bcryptCost = 4

	return &testEnv{
		db:         db,
		clock:      clock,
		cache:      statsCache,
		auth:       auth,
		todos:      NewTodoService(todoRepo, categoryRepo, statsCache, clock, log),
		categories: NewCategoryService(categoryRepo, clock, log),
	}
}

func (e *testEnv) register(t *testing.T, email string) *entities.User {
	t.Helper()
	res, err := e.auth.Register(context.Background(), ports.RegisterRequest{
		Email:     email,
		Password:  "secret123",
		FirstName: "Test",
		LastName:  "User",
	})
	require.NoError(t, err)
	return res.User
}

func (e *testEnv) createTodo(t *testing.T, userID string, req ports.CreateTodoRequest) *ports.TodoResponse {
	t.Helper()
	todo, err := e.todos.Create(context.Background(), userID, req)
	require.NoError(t, err)
	return todo
}

func (e *testEnv) createCategory(t *testing.T, userID, name string) *entities.Category {
	t.Helper()
	category, err := e.categories.Create(context.Background(), userID, ports.CreateCategoryRequest{Name: name})
	require.NoError(t, err)
	return category
}

func ptr[T any](v T) *T { return &v }

func responseTitles(items []ports.TodoResponse) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Title)
	}
	return out
}

func lower(s string) string { return strings.ToLower(s) }

func contains(s, sub string) bool { return strings.Contains(s, sub) }
