package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskmaster/todo/internal/domain/entities"
	"github.com/taskmaster/todo/internal/infrastructure/config"
	"github.com/taskmaster/todo/internal/infrastructure/logger"
	"github.com/taskmaster/todo/internal/ports"
)

// Claims represents the JWT claims. The subject is the user ID.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo   ports.UserRepository
	jwtConfig  config.JWTConfig
	clock      entities.Clock
	bcryptCost int
	logger     *logger.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo ports.UserRepository, jwtConfig config.JWTConfig, clock entities.Clock, logger *logger.Logger) *AuthService {
	if clock == nil {
		clock = entities.SystemClock
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtConfig:  jwtConfig,
		clock:      clock,
		bcryptCost: bcrypt.DefaultCost,
		logger:     logger.WithComponent("auth_service"),
	}
}

// Register creates a new user account and signs the user in
func (s *AuthService) Register(ctx context.Context, req ports.RegisterRequest) (*ports.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	verr := &entities.ValidationError{}
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		verr.Add("email", "must be a valid email address")
	}
	if len(req.Password) < minPasswordLength {
		verr.Add("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if verr.HasErrors() {
		return nil, verr
	}

	// Check if user already exists
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, entities.ErrEmailTaken
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := entities.NormalizeTime(s.clock.Now())
	user := &entities.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, entities.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.LogUserAction(user.ID, "register", map[string]interface{}{"email": user.Email})

	return s.issue(user)
}

// Login authenticates a user and returns a token. Unknown emails and wrong
// passwords yield the same error.
func (s *AuthService) Login(ctx context.Context, req ports.LoginRequest) (*ports.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			s.logger.LogSecurityEvent("login_failed", "", "", map[string]interface{}{"reason": "unknown_email"})
			return nil, entities.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.LogSecurityEvent("login_failed", user.ID, "", map[string]interface{}{"reason": "wrong_password"})
		return nil, entities.ErrInvalidCredentials
	}

	s.logger.LogUserAction(user.ID, "login", nil)

	return s.issue(user)
}

// Profile returns the account of userID
func (s *AuthService) Profile(ctx context.Context, userID string) (*entities.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// ValidateToken validates a JWT token and returns claims
func (s *AuthService) ValidateToken(tokenString string) (*ports.Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
	}
	if s.jwtConfig.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.jwtConfig.Issuer))
	}
	if s.jwtConfig.Audience != "" {
		opts = append(opts, jwt.WithAudience(s.jwtConfig.Audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtConfig.Secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, entities.ErrInvalidToken
	}

	return &ports.Claims{
		UserID:    claims.Subject,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *AuthService) issue(user *entities.User) (*ports.AuthResponse, error) {
	token, expiresAt, err := s.generateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &ports.AuthResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

func (s *AuthService) generateAccessToken(user *entities.User) (string, time.Time, error) {
	now := s.clock.Now()
	expiresAt := entities.NormalizeTime(now.Add(s.jwtConfig.ExpiresIn))

	claims := &Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			Issuer:    s.jwtConfig.Issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if s.jwtConfig.Audience != "" {
		claims.Audience = jwt.ClaimStrings{s.jwtConfig.Audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}
