// Package memory はプロセス内だけで完結する Todo ストア。
// テストと軽量なデプロイ向け。
package memory

import (
	"context"
	"sort"
	"sync"

	domain_todo "github.com/hijjiri/todo-api/internal/domain/todo"
)

// TodoRepository は map を RWMutex で守る実装。
// 読み取り（Find / All）は並行に走り、書き込みは排他になる。
// map そのものは外に出さない。
type TodoRepository struct {
	mu    sync.RWMutex
	next  int64
	items map[int64]domain_todo.Todo
}

var _ domain_todo.Repository = (*TodoRepository)(nil)

func NewTodoRepository() *TodoRepository {
	return &TodoRepository{
		next:  1,
		items: make(map[int64]domain_todo.Todo),
	}
}

// Create は次の ID を払い出して登録する。
// ID は件数ではなく単調増加カウンタから取るので、削除後も再利用されない。
func (r *TodoRepository) Create(ctx context.Context, in domain_todo.CreateTodo) (domain_todo.Todo, error) {
	if err := ctx.Err(); err != nil {
		return domain_todo.Todo{}, domain_todo.Unexpected("create", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.next
	r.next++

	t := domain_todo.NewTodo(id, in.Text)
	r.items[id] = t
	return t, nil
}

func (r *TodoRepository) Find(ctx context.Context, id int64) (domain_todo.Todo, error) {
	if err := ctx.Err(); err != nil {
		return domain_todo.Todo{}, domain_todo.Unexpected("find", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]
	if !ok {
		return domain_todo.Todo{}, domain_todo.NotFound(id)
	}
	return t, nil
}

// All はスナップショットを id 降順で返す（SQL 実装と揃える）。
func (r *TodoRepository) All(ctx context.Context) ([]domain_todo.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain_todo.Unexpected("all", err)
	}

	r.mu.RLock()
	todos := make([]domain_todo.Todo, 0, len(r.items))
	for _, t := range r.items {
		todos = append(todos, t)
	}
	r.mu.RUnlock()

	sort.Slice(todos, func(i, j int) bool {
		return todos[i].ID > todos[j].ID
	})
	return todos, nil
}

func (r *TodoRepository) Update(ctx context.Context, id int64, in domain_todo.UpdateTodo) (domain_todo.Todo, error) {
	if err := ctx.Err(); err != nil {
		return domain_todo.Todo{}, domain_todo.Unexpected("update", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[id]
	if !ok {
		return domain_todo.Todo{}, domain_todo.NotFound(id)
	}

	merged := current.Apply(in)
	r.items[id] = merged
	return merged, nil
}

func (r *TodoRepository) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return domain_todo.Unexpected("delete", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain_todo.NotFound(id)
	}
	delete(r.items, id)
	return nil
}

// Len は現在の件数。
func (r *TodoRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
