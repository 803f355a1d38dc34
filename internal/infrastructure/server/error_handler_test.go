package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/taskmaster/todo/internal/domain/entities"
	"github.com/taskmaster/todo/internal/infrastructure/logger"
)

func newErrorEcho(t *testing.T) (*echo.Echo, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	e := echo.New()
	e.HTTPErrorHandler = customErrorHandler(&logger.Logger{SugaredLogger: zap.New(core).Sugar()})
	e.Use(middleware.RequestID())
	e.GET("/boom", func(echo.Context) error { return errors.New("disk on fire") })
	e.GET("/missing", func(echo.Context) error { return entities.ErrTodoNotFound })
	return e, logs
}

func TestCustomErrorHandler_LogsInternalErrorsWithRequestID(t *testing.T) {
	e, logs := newErrorEcho(t)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk on fire")

	requestID := rec.Header().Get(echo.HeaderXRequestID)
	require.NotEmpty(t, requestID)

	entries := logs.FilterMessage("Internal server error").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, requestID, fields["request_id"])
	assert.Equal(t, "/boom", fields["path"])
	assert.Equal(t, "disk on fire", fields["error"])
}

func TestCustomErrorHandler_ClientErrorsAreNotLogged(t *testing.T) {
	e, logs := newErrorEcho(t)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, logs.Len())
}
