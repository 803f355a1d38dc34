package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/todo/internal/domain/entities"
	"github.com/taskmaster/todo/internal/ports"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.auth.Register(ctx, ports.RegisterRequest{
		Email:     " Jane@Example.com ",
		Password:  "secret123",
		FirstName: "Jane",
		LastName:  "Doe",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "Bearer", res.TokenType)
	assert.True(t, res.ExpiresAt.Equal(baseTime.Add(time.Hour)))
	assert.Equal(t, "jane@example.com", res.User.Email)
	assert.NotEqual(t, "secret123", res.User.PasswordHash)

	login, err := env.auth.Login(ctx, ports.LoginRequest{Email: "JANE@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	claims, err := env.auth.ValidateToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)

	profile, err := env.auth.Profile(ctx, claims.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", profile.FirstName)
	assert.Equal(t, "Doe", profile.LastName)
}

func TestAuthService_RegisterRejectsDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "dup@example.com")

	_, err := env.auth.Register(context.Background(), ports.RegisterRequest{Email: "DUP@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, entities.ErrEmailTaken)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Register(context.Background(), ports.RegisterRequest{Email: "not-an-email", Password: "123"})
	var verr *entities.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")
}

func TestAuthService_LoginFailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "user@example.com")

	_, wrongPassword := env.auth.Login(ctx, ports.LoginRequest{Email: "user@example.com", Password: "nope-nope"})
	_, unknownEmail := env.auth.Login(ctx, ports.LoginRequest{Email: "ghost@example.com", Password: "secret123"})

	assert.ErrorIs(t, wrongPassword, entities.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, entities.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestAuthService_ValidateTokenRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "user@example.com")

	res, err := env.auth.Login(ctx, ports.LoginRequest{Email: "user@example.com", Password: "secret123"})
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, err := env.auth.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, entities.ErrInvalidToken)
	})

	t.Run("tampered signature", func(t *testing.T) {
		parts := strings.Split(res.Token, ".")
		require.Len(t, parts, 3)
		sig := []byte(parts[2])
		if sig[0] == 'A' {
			sig[0] = 'B'
		} else {
			sig[0] = 'A'
		}
		_, err := env.auth.ValidateToken(parts[0] + "." + parts[1] + "." + string(sig))
		assert.ErrorIs(t, err, entities.ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other := NewAuthService(nil, env.auth.jwtConfig, env.clock, env.auth.logger)
		other.jwtConfig.Secret = "different"
		_, err := other.ValidateToken(res.Token)
		assert.ErrorIs(t, err, entities.ErrInvalidToken)
	})

	t.Run("other audience", func(t *testing.T) {
		other := NewAuthService(nil, env.auth.jwtConfig, env.clock, env.auth.logger)
		other.jwtConfig.Audience = "another-app"
		_, err := other.ValidateToken(res.Token)
		assert.ErrorIs(t, err, entities.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		env.clock.Advance(2 * time.Hour)
		_, err := env.auth.ValidateToken(res.Token)
		assert.ErrorIs(t, err, entities.ErrInvalidToken)
	})
}
