package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmaster/todo/internal/domain/entities"
)

// Context keys set by the authentication middleware
const (
	ContextKeyUserID    = "user"
	ContextKeyUserEmail = "user_email"
)

// MessageResponse is a plain message body
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed request. Errors is present only
// for validation failures and is keyed by JSON field name.
type ErrorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// ErrorStatus classifies err into an HTTP status and the body sent to the
// caller. Unclassified errors become a bare 500 so no internal detail leaks.
func ErrorStatus(err error) (int, ErrorResponse) {
	var (
		verr *entities.ValidationError
		herr *echo.HTTPError
	)

	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, ErrorResponse{
			Message: "One or more validation errors occurred",
			Errors:  verr.Fields,
		}
	case errors.As(err, &herr):
		return herr.Code, ErrorResponse{Message: fmt.Sprint(herr.Message)}
	case errors.Is(err, entities.ErrTodoNotFound),
		errors.Is(err, entities.ErrCategoryNotFound),
		errors.Is(err, entities.ErrUserNotFound):
		return http.StatusNotFound, ErrorResponse{Message: notFoundMessage(err)}
	case errors.Is(err, entities.ErrCategoryNameTaken),
		errors.Is(err, entities.ErrCategoryInUse),
		errors.Is(err, entities.ErrEmailTaken):
		return http.StatusConflict, ErrorResponse{Message: conflictMessage(err)}
	case errors.Is(err, entities.ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrorResponse{Message: entities.ErrInvalidCredentials.Error()}
	case errors.Is(err, entities.ErrInvalidToken):
		return http.StatusUnauthorized, ErrorResponse{Message: entities.ErrInvalidToken.Error()}
	default:
		return http.StatusInternalServerError, ErrorResponse{Message: http.StatusText(http.StatusInternalServerError)}
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, entities.ErrTodoNotFound):
		return entities.ErrTodoNotFound.Error()
	case errors.Is(err, entities.ErrCategoryNotFound):
		return entities.ErrCategoryNotFound.Error()
	default:
		return entities.ErrUserNotFound.Error()
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, entities.ErrCategoryNameTaken):
		return entities.ErrCategoryNameTaken.Error()
	case errors.Is(err, entities.ErrCategoryInUse):
		return entities.ErrCategoryInUse.Error()
	default:
		return entities.ErrEmailTaken.Error()
	}
}

// getUserIDFromContext returns the authenticated caller
func getUserIDFromContext(c echo.Context) (string, error) {
	userID, ok := c.Get(ContextKeyUserID).(string)
	if !ok || userID == "" {
		return "", entities.ErrInvalidToken
	}
	return userID, nil
}

func getUserEmailFromContext(c echo.Context) string {
	email, _ := c.Get(ContextKeyUserEmail).(string)
	return email
}

// bindError turns a body that could not be decoded into a client error.
func bindError(err error) error {
	if errors.Is(err, entities.ErrInvalidPriority) {
		return entities.NewValidationError("priority", "priority must be one of Low, Medium, High, Critical")
	}
	return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
}
