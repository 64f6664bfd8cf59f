package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	domain_todo "github.com/hijjiri/todo-api/internal/domain/todo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newSQLiteRepo は :memory: の SQLite でリポジトリを作る。
// :memory: は接続ごとに別 DB になるので、プールを 1 本に絞る。
func newSQLiteRepo(t *testing.T) (*TodoRepository, *sql.DB) {
	t.Helper()

	ctx := context.Background()
	db, err := Open(ctx, SQLite, ":memory:", PoolParams{MaxOpenConns: 1}, RetryPolicy{MaxAttempts: 1}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, EnsureSchema(ctx, db, SQLite))
	return NewTodoRepository(db, SQLite, zap.NewNop()), db
}

func TestTodoRepository_InsertAndSelectByID(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	id, err := repo.Insert(ctx, &domain_todo.Todo{Title: "Buy milk", Description: "2%", Completed: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	got, err := repo.SelectByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, &domain_todo.Todo{ID: id, Title: "Buy milk", Description: "2%", Completed: true}, got)
}

func TestTodoRepository_SelectAll(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	empty, err := repo.SelectAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, title := range []string{"a", "b", "c"} {
		_, err := repo.Insert(ctx, &domain_todo.Todo{Title: title})
		require.NoError(t, err)
	}
	require.NoError(t, repo.DeleteByID(ctx, 2))

	list, err := repo.SelectAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(1), list[0].ID)
	assert.Equal(t, "a", list[0].Title)
	assert.Equal(t, int64(3), list[1].ID)
	assert.Equal(t, "c", list[1].Title)
}

func TestTodoRepository_ReplaceByID(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	id, err := repo.Insert(ctx, &domain_todo.Todo{Title: "a", Description: "x", Completed: true})
	require.NoError(t, err)

	// 同じ値での上書きも成功扱い
	require.NoError(t, repo.ReplaceByID(ctx, id, &domain_todo.Todo{Title: "a", Description: "x", Completed: true}))
	require.NoError(t, repo.ReplaceByID(ctx, id, &domain_todo.Todo{Title: "b", Description: "y"}))

	got, err := repo.SelectByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Title)
	assert.Equal(t, "y", got.Description)
	assert.False(t, got.Completed)
}

func TestTodoRepository_NotFound(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	_, err := repo.SelectByID(ctx, 99)
	assert.ErrorIs(t, err, domain_todo.ErrNotFound)
	assert.ErrorIs(t, repo.ReplaceByID(ctx, 99, &domain_todo.Todo{Title: "x"}), domain_todo.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteByID(ctx, 99), domain_todo.ErrNotFound)
}

func TestTodoRepository_DeleteTwice(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	id, err := repo.Insert(ctx, &domain_todo.Todo{Title: "x"})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByID(ctx, id))
	assert.ErrorIs(t, repo.DeleteByID(ctx, id), domain_todo.ErrNotFound)
}

func TestTodoRepository_IDsNotReusedAfterDelete(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	id1, err := repo.Insert(ctx, &domain_todo.Todo{Title: "a"})
	require.NoError(t, err)
	require.NoError(t, repo.DeleteByID(ctx, id1))

	id2, err := repo.Insert(ctx, &domain_todo.Todo{Title: "b"})
	require.NoError(t, err)
	assert.Greater(t, id2, id1)
}

func TestTodoRepository_SessionReleasedOnError(t *testing.T) {
	repo, db := newSQLiteRepo(t)
	ctx := context.Background()

	// NotFound で抜けてもセッションが返却されていれば、次の操作が詰まらない
	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, repo.DeleteByID(ctx, 1234), domain_todo.ErrNotFound)
	}
	_, err := repo.Insert(ctx, &domain_todo.Todo{Title: "still works"})
	require.NoError(t, err)
	assert.Equal(t, 0, db.Stats().InUse)
}

func TestTodoRepository_Unavailable(t *testing.T) {
	repo, db := newSQLiteRepo(t)
	ctx := context.Background()

	require.NoError(t, db.Close())

	_, err := repo.SelectAll(ctx)
	assert.ErrorIs(t, err, domain_todo.ErrUnavailable)
	assert.ErrorIs(t, repo.Ping(ctx), domain_todo.ErrUnavailable)
}

func TestTodoRepository_LockContentionIsNotUnavailable(t *testing.T) {
	repo, _ := newSQLiteRepo(t)

	err := repo.wrap("update todo", errors.New("Error 1205 (HY000): Lock wait timeout exceeded; try restarting transaction"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain_todo.ErrUnavailable)

	err = repo.wrap("update todo", errors.New("database is locked (5) (SQLITE_BUSY)"))
	assert.NotErrorIs(t, err, domain_todo.ErrUnavailable)

	err = repo.wrap("select todos", errors.New("dial tcp 10.0.0.1:3306: connect: connection refused"))
	assert.ErrorIs(t, err, domain_todo.ErrUnavailable)
}
