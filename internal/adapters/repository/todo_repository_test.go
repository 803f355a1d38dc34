package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/todo/internal/domain/entities"
	"github.com/taskmaster/todo/internal/ports"
)

func defaultFilter() ports.TodoFilter {
	return ports.TodoFilter{
		SortBy:         entities.SortByCreatedAt,
		SortDescending: true,
		Page:           1,
		PageSize:       20,
	}
}

func titles(items []*entities.TodoItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Title)
	}
	return out
}

func TestTodoRepository_CreateGetUpdateDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTodoRepository(db)
	ctx := context.Background()
	user := createTestUser(t, db, "a@example.com")
	category := createTestCategory(t, db, user.ID, "Errands")

	due := baseTime.Add(72 * time.Hour)
	todo := createTestTodo(t, db, user.ID, "Buy groceries",
		withDescription("milk and eggs"), withPriority(entities.PriorityHigh),
		withDue(due), withCategory(category.ID))
	require.NotZero(t, todo.ID)

	got, err := repo.GetByID(ctx, user.ID, todo.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy groceries", got.Title)
	assert.Equal(t, entities.PriorityHigh, got.Priority)
	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(due))
	require.NotNil(t, got.CategoryName)
	assert.Equal(t, "Errands", *got.CategoryName)
	assert.Equal(t, entities.DefaultCategoryColor, *got.CategoryColor)
	assert.False(t, got.IsCompleted)
	assert.Nil(t, got.CompletedAt)

	got.Title = "Buy more groceries"
	got.IsCompleted = true
	got.CategoryID = nil
	got.Touch(baseTime.Add(time.Hour))
	require.NoError(t, repo.Update(ctx, got))

	updated, err := repo.GetByID(ctx, user.ID, todo.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy more groceries", updated.Title)
	assert.True(t, updated.IsCompleted)
	require.NotNil(t, updated.CompletedAt)
	assert.True(t, updated.CompletedAt.Equal(baseTime.Add(time.Hour)))
	assert.Nil(t, updated.CategoryID)
	assert.Nil(t, updated.CategoryName)

	require.NoError(t, repo.Delete(ctx, user.ID, todo.ID))
	_, err = repo.GetByID(ctx, user.ID, todo.ID)
	assert.ErrorIs(t, err, entities.ErrTodoNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, user.ID, todo.ID), entities.ErrTodoNotFound)
}

func TestTodoRepository_CrossUserAccessIsNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTodoRepository(db)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	todo := createTestTodo(t, db, alice.ID, "secret")

	_, err := repo.GetByID(ctx, bob.ID, todo.ID)
	assert.ErrorIs(t, err, entities.ErrTodoNotFound)

	_, err = repo.ToggleCompletion(ctx, bob.ID, todo.ID, baseTime)
	assert.ErrorIs(t, err, entities.ErrTodoNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, bob.ID, todo.ID), entities.ErrTodoNotFound)

	hijack := *todo
	hijack.UserID = bob.ID
	assert.ErrorIs(t, repo.Update(ctx, &hijack), entities.ErrTodoNotFound)

	items, total, err := repo.List(ctx, bob.ID, defaultFilter())
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
}

func TestTodoRepository_ToggleTwiceRestoresState(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTodoRepository(db)
	ctx := context.Background()
	user := createTestUser(t, db, "a@example.com")
	todo := createTestTodo(t, db, user.ID, "flip me")

	first, err := repo.ToggleCompletion(ctx, user.ID, todo.ID, baseTime.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, first.IsCompleted)
	require.NotNil(t, first.CompletedAt)
	assert.True(t, first.CompletedAt.Equal(baseTime.Add(time.Minute)))

	second, err := repo.ToggleCompletion(ctx, user.ID, todo.ID, baseTime.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, todo.IsCompleted, second.IsCompleted)
	assert.Nil(t, second.CompletedAt)
	assert.True(t, second.UpdatedAt.Equal(baseTime.Add(2*time.Minute)))
}

func TestTodoRepository_ListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTodoRepository(db)
	ctx := context.Background()
	user := createTestUser(t, db, "a@example.com")
	other := createTestUser(t, db, "b@example.com")
	work := createTestCategory(t, db, user.ID, "Work")

	createTestTodo(t, db, user.ID, "Buy groceries", withPriority(entities.PriorityLow),
		withDue(baseTime.Add(24*time.Hour)))
	createTestTodo(t, db, user.ID, "Write report", withDescription("Quarterly GROCERY budget"),
		withPriority(entities.PriorityHigh), withCategory(work.ID), withDue(baseTime.Add(48*time.Hour)))
	createTestTodo(t, db, user.ID, "Call mom", completed())
	createTestTodo(t, db, user.ID, "100% done_ish", withPriority(entities.PriorityCritical))
	createTestTodo(t, db, other.ID, "Buy groceries too")

	boolPtr := func(b bool) *bool { return &b }
	priorityPtr := func(p entities.Priority) *entities.Priority { return &p }
	timePtr := func(t time.Time) *time.Time { return &t }
	catID := work.ID

	tests := []struct {
		name   string
		mutate func(*ports.TodoFilter)
		want   []string
	}{
		{name: "no filters", mutate: func(*ports.TodoFilter) {},
			want: []string{"100% done_ish", "Call mom", "Write report", "Buy groceries"}},
		{name: "completed", mutate: func(f *ports.TodoFilter) { f.IsCompleted = boolPtr(true) },
			want: []string{"Call mom"}},
		{name: "open", mutate: func(f *ports.TodoFilter) { f.IsCompleted = boolPtr(false) },
			want: []string{"100% done_ish", "Write report", "Buy groceries"}},
		{name: "priority", mutate: func(f *ports.TodoFilter) { f.Priority = priorityPtr(entities.PriorityHigh) },
			want: []string{"Write report"}},
		{name: "category", mutate: func(f *ports.TodoFilter) { f.CategoryID = &catID },
			want: []string{"Write report"}},
		{name: "search title or description ignoring case", mutate: func(f *ports.TodoFilter) { f.Search = "groc" },
			want: []string{"Write report", "Buy groceries"}},
		{name: "search percent is literal", mutate: func(f *ports.TodoFilter) { f.Search = "0%" },
			want: []string{"100% done_ish"}},
		{name: "search underscore is literal", mutate: func(f *ports.TodoFilter) { f.Search = "e_i" },
			want: []string{"100% done_ish"}},
		{name: "due before is inclusive", mutate: func(f *ports.TodoFilter) { f.DueBefore = timePtr(baseTime.Add(24 * time.Hour)) },
			want: []string{"Buy groceries"}},
		{name: "due after is inclusive", mutate: func(f *ports.TodoFilter) { f.DueAfter = timePtr(baseTime.Add(48 * time.Hour)) },
			want: []string{"Write report"}},
		{name: "combined", mutate: func(f *ports.TodoFilter) {
			f.Search = "groc"
			f.Priority = priorityPtr(entities.PriorityLow)
		}, want: []string{"Buy groceries"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := defaultFilter()
			tt.mutate(&filter)

			items, total, err := repo.List(ctx, user.ID, filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(items))
			assert.Equal(t, len(tt.want), total)
			for _, item := range items {
				assert.Equal(t, user.ID, item.UserID)
			}
		})
	}
}

func TestTodoRepository_SearchFoldsNonASCIICase(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTodoRepository(db)
	ctx := context.Background()
	user := createTestUser(t, db, "a@example.com")

	createTestTodo(t, db, user.ID, "Éclairs kaufen")
	createTestTodo(t, db, user.ID, "Einkauf", withDescription("ÄPFEL und Birnen"))
	createTestTodo(t, db, user.ID, "Eclipse ansehen")

	for search, want := range map[string][]string{
		"éclair": {"Éclairs kaufen"},
		"ÉCLAIR": {"Éclairs kaufen"},
		"äpfel":  {"Einkauf"},
	} {
		filter := defaultFilter()
		filter.Search = search
		items, total, err := repo.List(ctx, user.ID, filter)
		require.NoError(t, err, search)
		assert.Equal(t, want, titles(items), search)
		assert.Equal(t, 1, total, search)
	}
}

func TestTodoRepository_ListSorting(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTodoRepository(db)
	ctx := context.Background()
	user := createTestUser(t, db, "a@example.com")

	createTestTodo(t, db, user.ID, "banana", withPriority(entities.PriorityHigh),
		withDue(baseTime.Add(48*time.Hour)), createdAt(baseTime.Add(1*time.Minute)))
	createTestTodo(t, db, user.ID, "Apple", withPriority(entities.PriorityLow),
		createdAt(baseTime.Add(2*time.Minute)))
	createTestTodo(t, db, user.ID, "cherry", withPriority(entities.PriorityCritical),
		withDue(baseTime.Add(24*time.Hour)), createdAt(baseTime.Add(3*time.Minute)))

	tests := []struct {
		field entities.SortField
		desc  bool
		want  []string
	}{
		{entities.SortByTitle, false, []string{"Apple", "banana", "cherry"}},
		{entities.SortByTitle, true, []string{"cherry", "banana", "Apple"}},
		{entities.SortByPriority, false, []string{"Apple", "banana", "cherry"}},
		{entities.SortByPriority, true, []string{"cherry", "banana", "Apple"}},
		{entities.SortByDueDate, false, []string{"cherry", "banana", "Apple"}},
		{entities.SortByDueDate, true, []string{"banana", "cherry", "Apple"}},
		{entities.SortByCreatedAt, true, []string{"cherry", "Apple", "banana"}},
		{entities.SortByCreatedAt, false, []string{"banana", "Apple", "cherry"}},
		{entities.SortByUpdatedAt, true, []string{"cherry", "Apple", "banana"}},
	}

	for _, tt := range tests {
		name := string(tt.field)
		if tt.desc {
			name += " desc"
		}
		t.Run(name, func(t *testing.T) {
			filter := defaultFilter()
			filter.SortBy = tt.field
			filter.SortDescending = tt.desc

			items, _, err := repo.List(ctx, user.ID, filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(items))
		})
	}
}

func TestTodoRepository_ListPagination(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTodoRepository(db)
	ctx := context.Background()
	user := createTestUser(t, db, "a@example.com")

	// Identical sort keys force the id tie-break.
	for _, title := range []string{"one", "two", "three", "four", "five", "six", "seven"} {
		createTestTodo(t, db, user.ID, title)
	}

	full := defaultFilter()
	full.PageSize = 100
	all, total, err := repo.List(ctx, user.ID, full)
	require.NoError(t, err)
	require.Equal(t, 7, total)

	for _, pageSize := range []int{1, 2, 3, 7, 10} {
		var collected []string
		pages := (total + pageSize - 1) / pageSize
		for page := 1; page <= pages; page++ {
			filter := defaultFilter()
			filter.Page = page
			filter.PageSize = pageSize

			items, pageTotal, err := repo.List(ctx, user.ID, filter)
			require.NoError(t, err)
			assert.Equal(t, total, pageTotal)
			collected = append(collected, titles(items)...)
		}
		assert.Equal(t, titles(all), collected, "page size %d", pageSize)
	}

	beyond := defaultFilter()
	beyond.Page = 9
	beyond.PageSize = 2
	items, total, err := repo.List(ctx, user.ID, beyond)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 7, total)

	huge := defaultFilter()
	huge.Page = 1 << 62
	huge.PageSize = 100
	items, total, err = repo.List(ctx, user.ID, huge)
	require.NoError(t, err)
	assert.Empty(t, items, "offset must not wrap around to the first page")
	assert.Equal(t, 7, total)
}

func TestTodoRepository_Stats(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTodoRepository(db)
	ctx := context.Background()
	user := createTestUser(t, db, "a@example.com")

	empty, err := repo.Stats(ctx, user.ID, baseTime)
	require.NoError(t, err)
	assert.Zero(t, empty.Total)
	assert.Zero(t, empty.Completed)
	assert.Zero(t, empty.Overdue)

	createTestTodo(t, db, user.ID, "low", withPriority(entities.PriorityLow))
	createTestTodo(t, db, user.ID, "medium", withPriority(entities.PriorityMedium), withDue(baseTime.Add(-time.Hour)))
	createTestTodo(t, db, user.ID, "high", withPriority(entities.PriorityHigh), completed(), withDue(baseTime.Add(-time.Hour)))
	createTestTodo(t, db, user.ID, "critical", withPriority(entities.PriorityCritical), withDue(baseTime.Add(time.Hour)))

	stats, err := repo.Stats(ctx, user.ID, baseTime)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 1, stats.Overdue)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now \\ ok`, escapeLike(`50% off_now \ ok`))
}
