// Package memory はプロセス内だけで完結する Todo ストア（永続化なし）。
package memory

import (
	"context"
	"slices"
	"sync"

	domain_todo "github.com/hijjiri/todo-api/internal/domain/todo"
)

var _ domain_todo.Repository = (*TodoRepository)(nil)

// TodoRepository は ID -> Todo の map と採番カウンタを持つ。
// ID は 1 から単調増加し、削除後も再利用しない。
//
// fiber はリクエストを複数 goroutine で捌くので、map への読み書きは mu で直列化する。
// 同一 ID に対する並行 Update/Delete の順序は保証しない（後勝ち）。
type TodoRepository struct {
	mu    sync.RWMutex
	next  int64
	items map[int64]*domain_todo.Todo
}

func NewTodoRepository() *TodoRepository {
	return &TodoRepository{
		next:  1,
		items: make(map[int64]*domain_todo.Todo),
	}
}

func (r *TodoRepository) Insert(ctx context.Context, t *domain_todo.Todo) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.next
	r.next++

	stored := t.Clone()
	stored.ID = id
	r.items[id] = stored
	return id, nil
}

// SelectAll は挿入順（= ID 昇順）で返す。
func (r *TodoRepository) SelectAll(ctx context.Context) ([]*domain_todo.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.items))
	for id := range r.items {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	todos := make([]*domain_todo.Todo, 0, len(ids))
	for _, id := range ids {
		todos = append(todos, r.items[id].Clone())
	}
	return todos, nil
}

func (r *TodoRepository) SelectByID(ctx context.Context, id int64) (*domain_todo.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]
	if !ok {
		return nil, domain_todo.ErrNotFound
	}
	return t.Clone(), nil
}

func (r *TodoRepository) ReplaceByID(ctx context.Context, id int64, t *domain_todo.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.items[id]
	if !ok {
		return domain_todo.ErrNotFound
	}
	cur.Replace(t)
	return nil
}

func (r *TodoRepository) DeleteByID(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain_todo.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// Ping は常に成功する（接続先が無いため）。
func (r *TodoRepository) Ping(ctx context.Context) error {
	return nil
}
