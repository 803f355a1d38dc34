package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/todo/internal/domain/entities"
)

func TestCategoryRepository_CreateListWithTodoCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()
	user := createTestUser(t, db, "a@example.com")

	work := createTestCategory(t, db, user.ID, "work")
	home := createTestCategory(t, db, user.ID, "Home")
	require.NotZero(t, work.ID)

	createTestTodo(t, db, user.ID, "report", withCategory(work.ID))
	createTestTodo(t, db, user.ID, "slides", withCategory(work.ID))

	list, err := repo.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, home.ID, list[0].ID, "ordered by name ignoring case")
	assert.Equal(t, 0, list[0].TodoCount)
	assert.Equal(t, work.ID, list[1].ID)
	assert.Equal(t, 2, list[1].TodoCount)

	got, err := repo.GetByID(ctx, user.ID, work.ID)
	require.NoError(t, err)
	assert.Equal(t, "work", got.Name)
	assert.Equal(t, entities.DefaultCategoryColor, got.Color)
	assert.Equal(t, 2, got.TodoCount)
}

func TestCategoryRepository_NameUniquePerUserIgnoringCase(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	shopping := createTestCategory(t, db, alice.ID, "Shopping")

	err := repo.Create(ctx, &entities.Category{Name: "SHOPPING", Color: "#000000", UserID: alice.ID})
	assert.ErrorIs(t, err, entities.ErrCategoryNameTaken)

	createTestCategory(t, db, bob.ID, "shopping")

	exists, err := repo.ExistsByName(ctx, alice.ID, "shopping", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByName(ctx, alice.ID, "shopping", shopping.ID)
	require.NoError(t, err)
	assert.False(t, exists, "the category itself is excluded")

	errands := createTestCategory(t, db, alice.ID, "Errands")
	errands.Name = "shopping"
	assert.ErrorIs(t, repo.Update(ctx, errands), entities.ErrCategoryNameTaken)
}

func TestCategoryRepository_NameUniqueIgnoringNonASCIICase(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice@example.com")

	ete := createTestCategory(t, db, alice.ID, "Éte")

	err := repo.Create(ctx, &entities.Category{Name: "éte", Color: "#000000", UserID: alice.ID})
	assert.ErrorIs(t, err, entities.ErrCategoryNameTaken)

	exists, err := repo.ExistsByName(ctx, alice.ID, "ÉTE", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByName(ctx, alice.ID, "éte", ete.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCategoryRepository_OwnershipScoping(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	category := createTestCategory(t, db, alice.ID, "Private")

	_, err := repo.GetByID(ctx, bob.ID, category.ID)
	assert.ErrorIs(t, err, entities.ErrCategoryNotFound)

	stolen := *category
	stolen.UserID = bob.ID
	stolen.Name = "Mine now"
	assert.ErrorIs(t, repo.Update(ctx, &stolen), entities.ErrCategoryNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, bob.ID, category.ID), entities.ErrCategoryNotFound)

	list, err := repo.List(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCategoryRepository_DeleteBlockedWhileReferenced(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepository(db)
	todos := NewTodoRepository(db)
	ctx := context.Background()
	user := createTestUser(t, db, "a@example.com")
	category := createTestCategory(t, db, user.ID, "Work")
	todo := createTestTodo(t, db, user.ID, "report", withCategory(category.ID))

	has, err := repo.HasTodos(ctx, user.ID, category.ID)
	require.NoError(t, err)
	assert.True(t, has)

	assert.ErrorIs(t, repo.Delete(ctx, user.ID, category.ID), entities.ErrCategoryInUse)

	require.NoError(t, todos.Delete(ctx, user.ID, todo.ID))
	require.NoError(t, repo.Delete(ctx, user.ID, category.ID))

	_, err = repo.GetByID(ctx, user.ID, category.ID)
	assert.ErrorIs(t, err, entities.ErrCategoryNotFound)
}
