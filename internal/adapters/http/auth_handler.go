package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmaster/todo/internal/infrastructure/logger"
	"github.com/taskmaster/todo/internal/ports"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService ports.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService ports.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ports.RegisterRequest true "Registration data"
// @Success 201 {object} ports.AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req ports.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	response, err := h.authService.Register(c.Request().Context(), req)
	if err != nil {
		h.logger.Debugw("Registration rejected", "email", req.Email, "error", err)
		return err
	}

	return c.JSON(http.StatusCreated, response)
}

// Login handles user login
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ports.LoginRequest true "Credentials"
// @Success 200 {object} ports.AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	response, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, response)
}

// Profile returns the authenticated user
// @Summary Current user profile
// @Tags auth
// @Produce json
// @Success 200 {object} entities.User
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /auth/profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	user, err := h.authService.Profile(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

// ValidateToken confirms the bearer token. Invalid tokens never get this far.
// @Summary Validate the bearer token
// @Tags auth
// @Produce json
// @Success 200 {object} ports.TokenValidationResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /auth/validate-token [post]
func (h *AuthHandler) ValidateToken(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ports.TokenValidationResponse{
		Valid:  true,
		UserID: userID,
		Email:  getUserEmailFromContext(c),
	})
}
