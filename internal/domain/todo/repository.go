package todo

import "context"

// Repository は Todo ストアが満たすべき 5 操作。
// 実装は複数の goroutine から共有されるので、並行呼び出しに安全であること。
//
// Find / Update / Delete は対象が無ければ NotFoundError を返す。
// All は id の降順で返す。
type Repository interface {
	Create(ctx context.Context, in CreateTodo) (Todo, error)
	Find(ctx context.Context, id int64) (Todo, error)
	All(ctx context.Context) ([]Todo, error)
	Update(ctx context.Context, id int64, in UpdateTodo) (Todo, error)
	Delete(ctx context.Context, id int64) error
}
