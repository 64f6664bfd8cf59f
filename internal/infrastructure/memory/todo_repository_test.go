package memory

import (
	"context"
	"sync"
	"testing"

	domain_todo "github.com/hijjiri/todo-api/internal/domain/todo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTodo(t *testing.T, title, desc string, completed bool) *domain_todo.Todo {
	t.Helper()
	td, err := domain_todo.NewTodo(title, desc, completed)
	require.NoError(t, err)
	return td
}

func TestTodoRepository_InsertAssignsIncreasingIDs(t *testing.T) {
	repo := NewTodoRepository()
	ctx := context.Background()

	id1, err := repo.Insert(ctx, mustTodo(t, "a", "", false))
	require.NoError(t, err)
	id2, err := repo.Insert(ctx, mustTodo(t, "b", "", false))
	require.NoError(t, err)

	assert.Equal(t, int64(1), id1)
	assert.Equal(t, int64(2), id2)
}

func TestTodoRepository_IDsNotReusedAfterDelete(t *testing.T) {
	repo := NewTodoRepository()
	ctx := context.Background()

	id1, err := repo.Insert(ctx, mustTodo(t, "a", "", false))
	require.NoError(t, err)
	require.NoError(t, repo.DeleteByID(ctx, id1))

	id2, err := repo.Insert(ctx, mustTodo(t, "b", "", false))
	require.NoError(t, err)
	assert.Equal(t, int64(2), id2)
}

func TestTodoRepository_InsertDoesNotAliasInput(t *testing.T) {
	repo := NewTodoRepository()
	ctx := context.Background()

	in := mustTodo(t, "a", "x", false)
	id, err := repo.Insert(ctx, in)
	require.NoError(t, err)
	in.Title = "mutated"

	got, err := repo.SelectByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Title)
	assert.Equal(t, int64(0), in.ID)
}

func TestTodoRepository_SelectAllInInsertionOrder(t *testing.T) {
	repo := NewTodoRepository()
	ctx := context.Background()

	empty, err := repo.SelectAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, title := range []string{"first", "second", "third", "fourth"} {
		_, err := repo.Insert(ctx, mustTodo(t, title, "", false))
		require.NoError(t, err)
	}
	require.NoError(t, repo.DeleteByID(ctx, 2))

	list, err := repo.SelectAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "first", list[0].Title)
	assert.Equal(t, "third", list[1].Title)
	assert.Equal(t, "fourth", list[2].Title)
}

func TestTodoRepository_ReplaceByID(t *testing.T) {
	repo := NewTodoRepository()
	ctx := context.Background()

	id, err := repo.Insert(ctx, mustTodo(t, "a", "x", true))
	require.NoError(t, err)

	require.NoError(t, repo.ReplaceByID(ctx, id, mustTodo(t, "b", "y", false)))

	got, err := repo.SelectByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, &domain_todo.Todo{ID: id, Title: "b", Description: "y", Completed: false}, got)
}

func TestTodoRepository_NotFound(t *testing.T) {
	repo := NewTodoRepository()
	ctx := context.Background()

	_, err := repo.SelectByID(ctx, 42)
	assert.ErrorIs(t, err, domain_todo.ErrNotFound)
	assert.ErrorIs(t, repo.ReplaceByID(ctx, 42, mustTodo(t, "a", "", false)), domain_todo.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteByID(ctx, 42), domain_todo.ErrNotFound)
}

func TestTodoRepository_DeleteTwice(t *testing.T) {
	repo := NewTodoRepository()
	ctx := context.Background()

	id, err := repo.Insert(ctx, mustTodo(t, "a", "", false))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByID(ctx, id))
	assert.ErrorIs(t, repo.DeleteByID(ctx, id), domain_todo.ErrNotFound)
}

func TestTodoRepository_ConcurrentInsertUniqueIDs(t *testing.T) {
	repo := NewTodoRepository()
	ctx := context.Background()

	const n = 100
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := repo.Insert(ctx, &domain_todo.Todo{Title: "x"})
			assert.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool, n)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}
