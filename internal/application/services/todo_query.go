package services

import (
	"strings"

	"github.com/taskmaster/todo/internal/domain/entities"
	"github.com/taskmaster/todo/internal/ports"
)

// Listing defaults and limits
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// normalizeTodoQuery fills defaults into a raw query. Page and page size
// below 1 fall back to their defaults and page size is clamped to MaxPageSize.
func normalizeTodoQuery(q ports.TodoQuery) ports.TodoFilter {
	filter := ports.TodoFilter{
		IsCompleted:    q.IsCompleted,
		Priority:       q.Priority,
		CategoryID:     q.CategoryID,
		Search:         strings.TrimSpace(q.Search),
		DueBefore:      entities.NormalizeTimePtr(q.DueBefore),
		DueAfter:       entities.NormalizeTimePtr(q.DueAfter),
		SortBy:         entities.ParseSortField(q.SortBy),
		SortDescending: true,
		Page:           DefaultPage,
		PageSize:       DefaultPageSize,
	}

	if q.SortDescending != nil {
		filter.SortDescending = *q.SortDescending
	}
	if q.Page != nil && *q.Page >= 1 {
		filter.Page = *q.Page
	}
	if q.PageSize != nil && *q.PageSize >= 1 {
		filter.PageSize = *q.PageSize
	}
	if filter.PageSize > MaxPageSize {
		filter.PageSize = MaxPageSize
	}

	return filter
}

// validateTodoQuery rejects descriptor values that have no sensible default.
func validateTodoQuery(q ports.TodoQuery) error {
	verr := &entities.ValidationError{}
	if q.Page != nil && *q.Page < 1 {
		verr.Add("page", "must be at least 1")
	}
	if q.PageSize != nil && *q.PageSize < 1 {
		verr.Add("pageSize", "must be at least 1")
	}
	if q.Priority != nil && !q.Priority.IsValid() {
		verr.Add("priority", "must be one of Low, Medium, High, Critical")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}
