package database

import (
	"context"
	"database/sql"
	"errors"

	domain_todo "github.com/hijjiri/todo-api/internal/domain/todo"
)

// queryer は *sql.DB と *sql.Tx の共通部分
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TodoRepository は todos テーブルに対する実装。
// 文は mysql / sqlite の両方で通るものだけを使う（プレースホルダは ?）。
// 並行性はコネクションプールと DB の分離レベルに任せ、アプリ側ではロックしない。
type TodoRepository struct {
	db  *sql.DB
	txm *TxManager
}

var _ domain_todo.Repository = (*TodoRepository)(nil)

func NewTodoRepository(db *sql.DB, txm *TxManager) *TodoRepository {
	if txm == nil {
		txm = NewTxManager(db, nil)
	}
	return &TodoRepository{db: db, txm: txm}
}

// ctx に Tx があればそれを、無ければ DB を使う
func (r *TodoRepository) conn(ctx context.Context) queryer {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return r.db
}

// Create は (text, false) を INSERT して採番された ID 付きで返す
func (r *TodoRepository) Create(ctx context.Context, in domain_todo.CreateTodo) (domain_todo.Todo, error) {
	res, err := r.conn(ctx).ExecContext(
		ctx,
		"INSERT INTO todos (text, completed) VALUES (?, ?)",
		in.Text,
		false,
	)
	if err != nil {
		return domain_todo.Todo{}, domain_todo.Unexpected("create", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain_todo.Todo{}, domain_todo.Unexpected("create", err)
	}

	return domain_todo.NewTodo(id, in.Text), nil
}

// Find は 0 件なら NotFound、それ以外の失敗は Unexpected
func (r *TodoRepository) Find(ctx context.Context, id int64) (domain_todo.Todo, error) {
	return r.find(ctx, r.conn(ctx), id)
}

func (r *TodoRepository) find(ctx context.Context, q queryer, id int64) (domain_todo.Todo, error) {
	var t domain_todo.Todo
	err := q.QueryRowContext(
		ctx,
		"SELECT id, text, completed FROM todos WHERE id = ?",
		id,
	).Scan(&t.ID, &t.Text, &t.Completed)
	if errors.Is(err, sql.ErrNoRows) {
		return domain_todo.Todo{}, domain_todo.NotFound(id)
	}
	if err != nil {
		return domain_todo.Todo{}, domain_todo.Unexpected("find", err)
	}
	return t, nil
}

// All は id 降順で全件返す
func (r *TodoRepository) All(ctx context.Context) ([]domain_todo.Todo, error) {
	rows, err := r.conn(ctx).QueryContext(ctx, "SELECT id, text, completed FROM todos ORDER BY id DESC")
	if err != nil {
		return nil, domain_todo.Unexpected("all", err)
	}
	defer rows.Close()

	todos := make([]domain_todo.Todo, 0)
	for rows.Next() {
		var t domain_todo.Todo
		if err := rows.Scan(&t.ID, &t.Text, &t.Completed); err != nil {
			return nil, domain_todo.Unexpected("all", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, domain_todo.Unexpected("all", err)
	}
	return todos, nil
}

// Update は COALESCE で「指定の無いフィールドは既存値」のマージを文の中でやる。
// mysql には RETURNING が無いので、UPDATE と読み戻しを 1 つの Tx にまとめる。
// 一致 0 件は UPDATE 自体はエラーにならないので、ここで明示的に NotFound にする。
func (r *TodoRepository) Update(ctx context.Context, id int64, in domain_todo.UpdateTodo) (domain_todo.Todo, error) {
	var updated domain_todo.Todo

	err := r.txm.WithinTx(ctx, func(ctx context.Context) error {
		q := r.conn(ctx)

		res, err := q.ExecContext(
			ctx,
			"UPDATE todos SET text = COALESCE(?, text), completed = COALESCE(?, completed) WHERE id = ?",
			nullString(in.Text),
			nullBool(in.Completed),
			id,
		)
		if err != nil {
			return domain_todo.Unexpected("update", err)
		}

		matched, err := res.RowsAffected()
		if err != nil {
			return domain_todo.Unexpected("update", err)
		}
		if matched == 0 {
			return domain_todo.NotFound(id)
		}

		updated, err = r.find(ctx, q, id)
		return err
	})
	if err != nil {
		return domain_todo.Todo{}, domain_todo.Unexpected("update", err)
	}
	return updated, nil
}

// Delete は削除 0 件なら NotFound
func (r *TodoRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.conn(ctx).ExecContext(ctx, "DELETE FROM todos WHERE id = ?", id)
	if err != nil {
		return domain_todo.Unexpected("delete", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain_todo.Unexpected("delete", err)
	}
	if affected == 0 {
		return domain_todo.NotFound(id)
	}
	return nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullBool(p *bool) sql.NullBool {
	if p == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *p, Valid: true}
}
