package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/todo/internal/domain/entities"
)

func TestUserRepository_CreateAndFetch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "Alice@Example.com")
	assert.Equal(t, "alice@example.com", user.Email)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)
	assert.Equal(t, "hash", byID.PasswordHash)
	assert.True(t, byID.CreatedAt.Equal(baseTime))

	byEmail, err := repo.GetByEmail(ctx, "  ALICE@example.COM ")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	exists, err := repo.ExistsByEmail(ctx, "alice@EXAMPLE.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	createTestUser(t, db, "bob@example.com")

	err := NewUserRepository(db).Create(context.Background(), &entities.User{
		Email:        "BOB@example.com",
		PasswordHash: "hash",
		CreatedAt:    baseTime,
		UpdatedAt:    baseTime,
	})
	assert.ErrorIs(t, err, entities.ErrEmailTaken)
}

func TestUserRepository_NotFound(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, entities.ErrUserNotFound)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, entities.ErrUserNotFound)

	exists, err := repo.ExistsByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}
