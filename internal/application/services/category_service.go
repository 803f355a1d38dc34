package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/taskmaster/todo/internal/domain/entities"
	"github.com/taskmaster/todo/internal/infrastructure/logger"
	"github.com/taskmaster/todo/internal/ports"
)

// CategoryService handles category operations
type CategoryService struct {
	categoryRepo ports.CategoryRepository
	clock        entities.Clock
	logger       *logger.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(categoryRepo ports.CategoryRepository, clock entities.Clock, logger *logger.Logger) *CategoryService {
	if clock == nil {
		clock = entities.SystemClock
	}
	return &CategoryService{
		categoryRepo: categoryRepo,
		clock:        clock,
		logger:       logger.WithComponent("category_service"),
	}
}

// List returns every category of the user
func (s *CategoryService) List(ctx context.Context, userID string) ([]*entities.Category, error) {
	categories, err := s.categoryRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Get retrieves a category of the user
func (s *CategoryService) Get(ctx context.Context, userID string, id int64) (*entities.Category, error) {
	return s.categoryRepo.GetByID(ctx, userID, id)
}

// Create creates a new category
func (s *CategoryService) Create(ctx context.Context, userID string, req ports.CreateCategoryRequest) (*entities.Category, error) {
	category := &entities.Category{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		UserID:      userID,
	}
	category.Normalize()

	if err := s.validateCategory(ctx, category); err != nil {
		return nil, err
	}

	now := entities.NormalizeTime(s.clock.Now())
	category.CreatedAt = now
	category.UpdatedAt = now

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, entities.ErrCategoryNameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Infow("Category created", "user_id", userID, "category_id", category.ID)
	return category, nil
}

// Update replaces name, description and color of a category. An empty color
// keeps the current one.
func (s *CategoryService) Update(ctx context.Context, userID string, id int64, req ports.UpdateCategoryRequest) (*entities.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	category.Name = req.Name
	category.Description = req.Description
	if req.Color != "" {
		category.Color = req.Color
	}
	category.Normalize()

	if err := s.validateCategory(ctx, category); err != nil {
		return nil, err
	}

	category.UpdatedAt = entities.NormalizeTime(s.clock.Now())

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, entities.ErrCategoryNameTaken) || errors.Is(err, entities.ErrCategoryNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.logger.Infow("Category updated", "user_id", userID, "category_id", id)
	return s.categoryRepo.GetByID(ctx, userID, id)
}

// Delete deletes a category that no todo item references
func (s *CategoryService) Delete(ctx context.Context, userID string, id int64) error {
	if _, err := s.categoryRepo.GetByID(ctx, userID, id); err != nil {
		return err
	}

	inUse, err := s.categoryRepo.HasTodos(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("failed to check category usage: %w", err)
	}
	if inUse {
		return entities.ErrCategoryInUse
	}

	if err := s.categoryRepo.Delete(ctx, userID, id); err != nil {
		return err
	}

	s.logger.Infow("Category deleted", "user_id", userID, "category_id", id)
	return nil
}

// validateCategory checks field limits, then the per-user name uniqueness.
// Field errors are reported before the uniqueness lookup.
func (s *CategoryService) validateCategory(ctx context.Context, category *entities.Category) error {
	if verr := validateCategoryFields(category); verr.HasErrors() {
		return verr
	}

	taken, err := s.categoryRepo.ExistsByName(ctx, category.UserID, category.Name, category.ID)
	if err != nil {
		return fmt.Errorf("failed to check category name: %w", err)
	}
	if taken {
		return entities.ErrCategoryNameTaken
	}
	return nil
}
