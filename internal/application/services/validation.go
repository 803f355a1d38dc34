package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/taskmaster/todo/internal/domain/entities"
)

// Field limits enforced before any write.
const (
	maxTodoTitle           = 200
	maxTodoDescription     = 1000
	maxCategoryName        = 100
	maxCategoryDescription = 500
	minPasswordLength      = 6
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// IsHexColor reports whether s is a '#' followed by exactly six hex digits.
func IsHexColor(s string) bool {
	return hexColorPattern.MatchString(s)
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func checkLength(verr *entities.ValidationError, field, value string, required bool, max int) {
	n := utf8.RuneCountInString(value)
	switch {
	case required && n == 0:
		verr.Add(field, "is required")
	case n > max:
		verr.Add(field, "must be at most "+strconv.Itoa(max)+" characters")
	}
}

func validateTodoFields(todo *entities.TodoItem) *entities.ValidationError {
	verr := &entities.ValidationError{}
	checkLength(verr, "title", todo.Title, true, maxTodoTitle)
	if todo.Description != nil {
		checkLength(verr, "description", *todo.Description, false, maxTodoDescription)
	}
	if !todo.Priority.IsValid() {
		verr.Add("priority", "must be one of Low, Medium, High, Critical")
	}
	if todo.CategoryID != nil && *todo.CategoryID < 1 {
		verr.Add("categoryId", "must be a positive identifier")
	}
	return verr
}

func validateCategoryFields(category *entities.Category) *entities.ValidationError {
	verr := &entities.ValidationError{}
	checkLength(verr, "name", category.Name, true, maxCategoryName)
	if category.Description != nil {
		checkLength(verr, "description", *category.Description, false, maxCategoryDescription)
	}
	if !IsHexColor(category.Color) {
		verr.Add("color", "must be a hex color like #1a2b3c")
	}
	return verr
}
