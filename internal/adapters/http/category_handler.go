package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmaster/todo/internal/ports"
)

// CategoryHandler handles category requests
type CategoryHandler struct {
	categoryService ports.CategoryService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService ports.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// List returns all categories of the caller
// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {array} entities.Category
// @Security BearerAuth
// @Router /categories [get]
func (h *CategoryHandler) List(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	categories, err := h.categoryService.List(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, categories)
}

// Get returns a single category
// @Summary Get category by ID
// @Tags categories
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} entities.Category
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /categories/{id} [get]
func (h *CategoryHandler) Get(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	category, err := h.categoryService.Get(c.Request().Context(), userID, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, category)
}

// Create adds a category
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Param request body ports.CreateCategoryRequest true "Category data"
// @Success 201 {object} entities.Category
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /categories [post]
func (h *CategoryHandler) Create(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req ports.CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	category, err := h.categoryService.Create(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, category)
}

// Update renames or recolors a category
// @Summary Update a category
// @Tags categories
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Param request body ports.UpdateCategoryRequest true "Category data"
// @Success 200 {object} entities.Category
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /categories/{id} [put]
func (h *CategoryHandler) Update(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var req ports.UpdateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	category, err := h.categoryService.Update(c.Request().Context(), userID, id, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, category)
}

// Delete removes a category that no todo item references
// @Summary Delete a category
// @Tags categories
// @Param id path int true "Category ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /categories/{id} [delete]
func (h *CategoryHandler) Delete(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	if err := h.categoryService.Delete(c.Request().Context(), userID, id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
