package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskmaster/todo/internal/domain/entities"
	"github.com/taskmaster/todo/internal/ports"
)

// TodoHandler handles todo item requests
type TodoHandler struct {
	todoService ports.TodoService
}

// NewTodoHandler creates a new todo handler
func NewTodoHandler(todoService ports.TodoService) *TodoHandler {
	return &TodoHandler{todoService: todoService}
}

// List returns one page of the caller's todo items
// @Summary List todo items
// @Tags todo
// @Produce json
// @Param isCompleted query bool false "Completion state"
// @Param priority query string false "Priority (1-4 or Low, Medium, High, Critical)"
// @Param categoryId query int false "Category ID"
// @Param search query string false "Case-insensitive substring of title or description"
// @Param dueBefore query string false "Due on or before (RFC3339 or YYYY-MM-DD)"
// @Param dueAfter query string false "Due on or after (RFC3339 or YYYY-MM-DD)"
// @Param sortBy query string false "title, priority, duedate, updatedat or createdat"
// @Param sortDescending query bool false "Sort descending" default(true)
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} ports.PagedResult[ports.TodoResponse]
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /todo [get]
func (h *TodoHandler) List(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	query, err := parseTodoQuery(c)
	if err != nil {
		return err
	}

	result, err := h.todoService.List(c.Request().Context(), userID, query)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// Stats returns aggregate counts over the caller's todo items
// @Summary Todo statistics
// @Tags todo
// @Produce json
// @Success 200 {object} ports.TodoStats
// @Security BearerAuth
// @Router /todo/stats [get]
func (h *TodoHandler) Stats(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	stats, err := h.todoService.Stats(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, stats)
}

// Get returns a single todo item
// @Summary Get todo item by ID
// @Tags todo
// @Produce json
// @Param id path int true "Todo ID"
// @Success 200 {object} ports.TodoResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /todo/{id} [get]
func (h *TodoHandler) Get(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	todo, err := h.todoService.Get(c.Request().Context(), userID, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, todo)
}

// Create adds a todo item
// @Summary Create a todo item
// @Tags todo
// @Accept json
// @Produce json
// @Param request body ports.CreateTodoRequest true "Todo data"
// @Success 201 {object} ports.TodoResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /todo [post]
func (h *TodoHandler) Create(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req ports.CreateTodoRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	todo, err := h.todoService.Create(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, todo)
}

// Update replaces a todo item
// @Summary Update a todo item
// @Tags todo
// @Accept json
// @Produce json
// @Param id path int true "Todo ID"
// @Param request body ports.UpdateTodoRequest true "Todo data"
// @Success 200 {object} ports.TodoResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /todo/{id} [put]
func (h *TodoHandler) Update(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var req ports.UpdateTodoRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	todo, err := h.todoService.Update(c.Request().Context(), userID, id, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, todo)
}

// Delete removes a todo item
// @Summary Delete a todo item
// @Tags todo
// @Param id path int true "Todo ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /todo/{id} [delete]
func (h *TodoHandler) Delete(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	if err := h.todoService.Delete(c.Request().Context(), userID, id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// Toggle flips the completion state of a todo item
// @Summary Toggle completion
// @Tags todo
// @Produce json
// @Param id path int true "Todo ID"
// @Success 200 {object} ports.TodoResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /todo/{id}/toggle [patch]
func (h *TodoHandler) Toggle(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	todo, err := h.todoService.ToggleCompletion(c.Request().Context(), userID, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, todo)
}

// parseIDParam reads the :id path segment. Malformed IDs cannot name an
// existing row, so they are reported as not found rather than as bad input.
func parseIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "Resource not found")
	}
	return id, nil
}

// parseTodoQuery collects the listing parameters. Every malformed parameter
// is reported in a single ValidationError.
func parseTodoQuery(c echo.Context) (ports.TodoQuery, error) {
	var (
		query ports.TodoQuery
		verr  entities.ValidationError
	)

	if v := c.QueryParam("isCompleted"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			verr.Add("isCompleted", "isCompleted must be true or false")
		} else {
			query.IsCompleted = &b
		}
	}

	if v := c.QueryParam("priority"); v != "" {
		p, err := entities.ParsePriority(v)
		if err != nil {
			verr.Add("priority", "priority must be one of Low, Medium, High, Critical")
		} else {
			query.Priority = &p
		}
	}

	if v := c.QueryParam("categoryId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			verr.Add("categoryId", "categoryId must be an integer")
		} else {
			query.CategoryID = &id
		}
	}

	query.Search = strings.TrimSpace(c.QueryParam("search"))
	query.SortBy = c.QueryParam("sortBy")

	if v := c.QueryParam("sortDescending"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			verr.Add("sortDescending", "sortDescending must be true or false")
		} else {
			query.SortDescending = &b
		}
	}

	query.Page = parseIntParam(c, "page", &verr)
	query.PageSize = parseIntParam(c, "pageSize", &verr)
	query.DueBefore = parseDateParam(c, "dueBefore", &verr)
	query.DueAfter = parseDateParam(c, "dueAfter", &verr)

	if verr.HasErrors() {
		return ports.TodoQuery{}, &verr
	}
	return query, nil
}

func parseIntParam(c echo.Context, name string, verr *entities.ValidationError) *int {
	v := c.QueryParam(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		verr.Add(name, name+" must be an integer")
		return nil
	}
	return &n
}

// parseDateParam accepts RFC3339 or a bare date, which is read as midnight UTC.
func parseDateParam(c echo.Context, name string, verr *entities.ValidationError) *time.Time {
	v := c.QueryParam(name)
	if v == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t
		}
	}
	verr.Add(name, name+" must be an RFC3339 timestamp or a YYYY-MM-DD date")
	return nil
}
