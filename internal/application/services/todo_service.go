package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/taskmaster/todo/internal/domain/entities"
	"github.com/taskmaster/todo/internal/infrastructure/cache"
	"github.com/taskmaster/todo/internal/infrastructure/logger"
	"github.com/taskmaster/todo/internal/ports"
)

// TodoService handles todo item operations
type TodoService struct {
	todoRepo     ports.TodoRepository
	categoryRepo ports.CategoryRepository
	statsCache   ports.StatsCache
	clock        entities.Clock
	logger       *logger.Logger
}

// NewTodoService creates a new todo service. A nil cache disables stats caching
// and a nil clock uses wall-clock time.
func NewTodoService(todoRepo ports.TodoRepository, categoryRepo ports.CategoryRepository, statsCache ports.StatsCache, clock entities.Clock, logger *logger.Logger) *TodoService {
	if statsCache == nil {
		statsCache = cache.NoopStatsCache{}
	}
	if clock == nil {
		clock = entities.SystemClock
	}
	return &TodoService{
		todoRepo:     todoRepo,
		categoryRepo: categoryRepo,
		statsCache:   statsCache,
		clock:        clock,
		logger:       logger.WithComponent("todo_service"),
	}
}

func (s *TodoService) now() time.Time {
	return entities.NormalizeTime(s.clock.Now())
}

// List returns one page of the user's todo items matching query
func (s *TodoService) List(ctx context.Context, userID string, query ports.TodoQuery) (*ports.PagedResult[ports.TodoResponse], error) {
	if err := validateTodoQuery(query); err != nil {
		return nil, err
	}

	filter := normalizeTodoQuery(query)

	items, total, err := s.todoRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}

	now := s.now()
	responses := make([]ports.TodoResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, ports.NewTodoResponse(item, now))
	}

	return ports.NewPagedResult(responses, total, filter.Page, filter.PageSize), nil
}

// Get retrieves a single todo item of the user
func (s *TodoService) Get(ctx context.Context, userID string, id int64) (*ports.TodoResponse, error) {
	todo, err := s.todoRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	res := ports.NewTodoResponse(todo, s.now())
	return &res, nil
}

// Create creates a new todo item
func (s *TodoService) Create(ctx context.Context, userID string, req ports.CreateTodoRequest) (*ports.TodoResponse, error) {
	todo := &entities.TodoItem{
		Title:       strings.TrimSpace(req.Title),
		Description: trimOptional(req.Description),
		Priority:    req.Priority,
		DueDate:     entities.NormalizeTimePtr(req.DueDate),
		CategoryID:  req.CategoryID,
		UserID:      userID,
	}
	if todo.Priority == 0 {
		todo.Priority = entities.PriorityMedium
	}

	if err := s.validateTodo(ctx, userID, todo); err != nil {
		return nil, err
	}

	todo.Touch(s.now())

	if err := s.todoRepo.Create(ctx, todo); err != nil {
		if errors.Is(err, entities.ErrCategoryNotFound) {
			return nil, entities.NewValidationError("categoryId", "category does not exist")
		}
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	s.invalidateStats(ctx, userID)
	s.logger.Infow("Todo created", "user_id", userID, "todo_id", todo.ID)

	return s.Get(ctx, userID, todo.ID)
}

// Update replaces the editable fields of a todo item
func (s *TodoService) Update(ctx context.Context, userID string, id int64, req ports.UpdateTodoRequest) (*ports.TodoResponse, error) {
	todo, err := s.todoRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	todo.Title = strings.TrimSpace(req.Title)
	todo.Description = trimOptional(req.Description)
	todo.IsCompleted = req.IsCompleted
	todo.DueDate = entities.NormalizeTimePtr(req.DueDate)
	todo.CategoryID = req.CategoryID
	if req.Priority != 0 {
		todo.Priority = req.Priority
	}

	if err := s.validateTodo(ctx, userID, todo); err != nil {
		return nil, err
	}

	todo.Touch(s.now())

	if err := s.todoRepo.Update(ctx, todo); err != nil {
		if errors.Is(err, entities.ErrCategoryNotFound) {
			return nil, entities.NewValidationError("categoryId", "category does not exist")
		}
		if errors.Is(err, entities.ErrTodoNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	s.invalidateStats(ctx, userID)
	s.logger.Infow("Todo updated", "user_id", userID, "todo_id", id)

	return s.Get(ctx, userID, id)
}

// Delete deletes a todo item of the user
func (s *TodoService) Delete(ctx context.Context, userID string, id int64) error {
	if err := s.todoRepo.Delete(ctx, userID, id); err != nil {
		return err
	}

	s.invalidateStats(ctx, userID)
	s.logger.Infow("Todo deleted", "user_id", userID, "todo_id", id)
	return nil
}

// ToggleCompletion flips the completion state of a todo item
func (s *TodoService) ToggleCompletion(ctx context.Context, userID string, id int64) (*ports.TodoResponse, error) {
	now := s.now()

	todo, err := s.todoRepo.ToggleCompletion(ctx, userID, id, now)
	if err != nil {
		return nil, err
	}

	s.invalidateStats(ctx, userID)
	s.logger.Infow("Todo toggled", "user_id", userID, "todo_id", id, "is_completed", todo.IsCompleted)

	res := ports.NewTodoResponse(todo, now)
	return &res, nil
}

// Stats aggregates the user's todo items. Results are served from the stats
// cache until the next mutation or TTL expiry.
func (s *TodoService) Stats(ctx context.Context, userID string) (*ports.TodoStats, error) {
	cached, err := s.statsCache.Get(ctx, userID)
	if err != nil {
		s.logger.Warnw("Stats cache read failed", "user_id", userID, "error", err)
	}
	if cached != nil {
		return cached, nil
	}

	stats, err := s.todoRepo.Stats(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to compute todo stats: %w", err)
	}
	finalizeStats(stats)

	if err := s.statsCache.Set(ctx, userID, stats); err != nil {
		s.logger.Warnw("Stats cache write failed", "user_id", userID, "error", err)
	}

	return stats, nil
}

// finalizeStats derives pending and the completion percentage rounded to one decimal.
func finalizeStats(stats *ports.TodoStats) {
	stats.Pending = stats.Total - stats.Completed
	if stats.Total == 0 {
		stats.CompletionRate = 0
		return
	}
	rate := float64(stats.Completed) / float64(stats.Total) * 100
	stats.CompletionRate = math.Round(rate*10) / 10
}

func (s *TodoService) validateTodo(ctx context.Context, userID string, todo *entities.TodoItem) error {
	verr := validateTodoFields(todo)

	if todo.CategoryID != nil && *todo.CategoryID > 0 {
		if _, err := s.categoryRepo.GetByID(ctx, userID, *todo.CategoryID); err != nil {
			if !errors.Is(err, entities.ErrCategoryNotFound) {
				return fmt.Errorf("failed to verify category: %w", err)
			}
			verr.Add("categoryId", "category does not exist")
		}
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

func (s *TodoService) invalidateStats(ctx context.Context, userID string) {
	if err := s.statsCache.Invalidate(ctx, userID); err != nil {
		s.logger.Warnw("Stats cache invalidation failed", "user_id", userID, "error", err)
	}
}
