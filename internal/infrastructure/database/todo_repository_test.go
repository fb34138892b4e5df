package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	domain_todo "github.com/hijjiri/todo-api/internal/domain/todo"
)

// db/schema/sqlite.sql と同じ定義
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS todos (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    text      TEXT    NOT NULL,
    completed BOOLEAN NOT NULL DEFAULT FALSE
);`

func ptr[T any](v T) *T { return &v }

// テストごとに独立した :memory: DB を作る
func newSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Connect(context.Background(), Config{
		Driver: DriverSQLite,
		URL:    ":memory:",
		Retry:  RetryPolicy{MaxAttempts: 1},
	}, nil)
	if err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(sqliteSchema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return db
}

func newRepo(t *testing.T) (*TodoRepository, *sql.DB) {
	t.Helper()
	db := newSQLiteDB(t)
	return NewTodoRepository(db, NewTxManager(db, nil)), db
}

func TestTodoRepository_CRUDScenario(t *testing.T) {
	t.Parallel()

	repo, db := newRepo(t)
	ctx := context.Background()
	text := "[crud_scenario] text"

	// create
	created, err := repo.Create(ctx, domain_todo.CreateTodo{Text: text})
	if err != nil {
		t.Fatalf("[create] returned error: %v", err)
	}
	if created.Text != text || created.Completed {
		t.Errorf("[create] unexpected todo: %#v", created)
	}

	// find
	found, err := repo.Find(ctx, created.ID)
	if err != nil {
		t.Fatalf("[find] returned error: %v", err)
	}
	if found != created {
		t.Errorf("[find] got %#v, want %#v", found, created)
	}

	// all
	all, err := repo.All(ctx)
	if err != nil {
		t.Fatalf("[all] returned error: %v", err)
	}
	if len(all) == 0 || all[0] != created {
		t.Errorf("[all] unexpected result: %#v", all)
	}

	// update
	updatedText := "[crud_scenario] updated text"
	updated, err := repo.Update(ctx, created.ID, domain_todo.UpdateTodo{
		Text:      ptr(updatedText),
		Completed: ptr(true),
	})
	if err != nil {
		t.Fatalf("[update] returned error: %v", err)
	}
	want := domain_todo.Todo{ID: created.ID, Text: updatedText, Completed: true}
	if updated != want {
		t.Errorf("[update] got %#v, want %#v", updated, want)
	}

	// delete
	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("[delete] returned error: %v", err)
	}
	if _, err := repo.Find(ctx, created.ID); !errors.Is(err, domain_todo.ErrNotFound) {
		t.Errorf("[delete] expected ErrNotFound, got %v", err)
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM todos WHERE id = ?", created.ID).Scan(&n); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected row to be gone, got %d", n)
	}
}

func TestTodoRepository_AscendingIDsOnEmptyStore(t *testing.T) {
	t.Parallel()

	repo, _ := newRepo(t)
	ctx := context.Background()

	a, err := repo.Create(ctx, domain_todo.CreateTodo{Text: "a"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	b, err := repo.Create(ctx, domain_todo.CreateTodo{Text: "b"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if a != (domain_todo.Todo{ID: 1, Text: "a"}) || b != (domain_todo.Todo{ID: 2, Text: "b"}) {
		t.Errorf("unexpected ids: %#v %#v", a, b)
	}
}

func TestTodoRepository_AllDescending(t *testing.T) {
	t.Parallel()

	repo, _ := newRepo(t)
	ctx := context.Background()

	for _, text := range []string{"a", "b", "c"} {
		if _, err := repo.Create(ctx, domain_todo.CreateTodo{Text: text}); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}

	all, err := repo.All(ctx)
	if err != nil {
		t.Fatalf("All returned error: %v", err)
	}
	if len(all) != 3 || all[0].ID != 3 || all[1].ID != 2 || all[2].ID != 1 {
		t.Errorf("expected ids 3,2,1 got %#v", all)
	}
}

func TestTodoRepository_AllEmpty(t *testing.T) {
	t.Parallel()

	repo, _ := newRepo(t)

	all, err := repo.All(context.Background())
	if err != nil {
		t.Fatalf("All returned error: %v", err)
	}
	if all == nil || len(all) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", all)
	}
}

func TestTodoRepository_PartialUpdate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   domain_todo.UpdateTodo
		want domain_todo.Todo
	}{
		{
			name: "text only",
			in:   domain_todo.UpdateTodo{Text: ptr("y")},
			want: domain_todo.Todo{ID: 1, Text: "y", Completed: false},
		},
		{
			name: "completed only",
			in:   domain_todo.UpdateTodo{Completed: ptr(true)},
			want: domain_todo.Todo{ID: 1, Text: "x", Completed: true},
		},
		{
			// 値が変わらなくても「一致 1 件」なので NotFound にはならない
			name: "no-op",
			in:   domain_todo.UpdateTodo{Text: ptr("x")},
			want: domain_todo.Todo{ID: 1, Text: "x", Completed: false},
		},
		{
			name: "nothing specified",
			in:   domain_todo.UpdateTodo{},
			want: domain_todo.Todo{ID: 1, Text: "x", Completed: false},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo, _ := newRepo(t)
			ctx := context.Background()
			if _, err := repo.Create(ctx, domain_todo.CreateTodo{Text: "x"}); err != nil {
				t.Fatalf("Create returned error: %v", err)
			}

			got, err := repo.Update(ctx, 1, tt.in)
			if err != nil {
				t.Fatalf("Update returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Update() = %#v, want %#v", got, tt.want)
			}

			stored, err := repo.Find(ctx, 1)
			if err != nil {
				t.Fatalf("Find returned error: %v", err)
			}
			if stored != tt.want {
				t.Errorf("stored = %#v, want %#v", stored, tt.want)
			}
		})
	}
}

func TestTodoRepository_AbsentIDNotFound(t *testing.T) {
	t.Parallel()

	repo, _ := newRepo(t)
	ctx := context.Background()
	if _, err := repo.Create(ctx, domain_todo.CreateTodo{Text: "keep"}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	const missing = int64(404)

	_, findErr := repo.Find(ctx, missing)
	_, updateErr := repo.Update(ctx, missing, domain_todo.UpdateTodo{Completed: ptr(true)})
	deleteErr := repo.Delete(ctx, missing)

	for op, err := range map[string]error{"find": findErr, "update": updateErr, "delete": deleteErr} {
		var nf *domain_todo.NotFoundError
		if !errors.As(err, &nf) {
			t.Errorf("%s: expected NotFoundError, got %v", op, err)
			continue
		}
		if nf.ID != missing {
			t.Errorf("%s: expected id=%d, got %d", op, missing, nf.ID)
		}
		if errors.Is(err, domain_todo.ErrUnexpected) {
			t.Errorf("%s: NotFound must not be wrapped as unexpected", op)
		}
	}

	all, _ := repo.All(ctx)
	if len(all) != 1 || all[0] != (domain_todo.Todo{ID: 1, Text: "keep"}) {
		t.Errorf("store mutated: %#v", all)
	}
}

func TestTodoRepository_IDsNotReusedAfterDelete(t *testing.T) {
	t.Parallel()

	repo, _ := newRepo(t)
	ctx := context.Background()

	repo.Create(ctx, domain_todo.CreateTodo{Text: "a"})
	repo.Create(ctx, domain_todo.CreateTodo{Text: "b"})
	if err := repo.Delete(ctx, 2); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	c, err := repo.Create(ctx, domain_todo.CreateTodo{Text: "c"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if c.ID != 3 {
		t.Errorf("expected id=3, got %d", c.ID)
	}
}

func TestTodoRepository_BackendFailureIsUnexpected(t *testing.T) {
	t.Parallel()

	repo, db := newRepo(t)
	if _, err := db.Exec("DROP TABLE todos"); err != nil {
		t.Fatalf("drop failed: %v", err)
	}

	ctx := context.Background()
	_, createErr := repo.Create(ctx, domain_todo.CreateTodo{Text: "x"})
	_, findErr := repo.Find(ctx, 1)
	_, allErr := repo.All(ctx)
	_, updateErr := repo.Update(ctx, 1, domain_todo.UpdateTodo{Text: ptr("y")})
	deleteErr := repo.Delete(ctx, 1)

	for op, err := range map[string]error{
		"create": createErr, "find": findErr, "all": allErr, "update": updateErr, "delete": deleteErr,
	} {
		if !errors.Is(err, domain_todo.ErrUnexpected) {
			t.Errorf("%s: expected ErrUnexpected, got %v", op, err)
		}
	}
}

func TestTodoRepository_UsesTxFromContext(t *testing.T) {
	t.Parallel()

	repo, db := newRepo(t)
	txm := NewTxManager(db, nil)
	ctx := context.Background()

	rollback := errors.New("rollback please")
	err := txm.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := repo.Create(ctx, domain_todo.CreateTodo{Text: "in tx"}); err != nil {
			return err
		}
		// Update は外側の Tx に相乗りする
		if _, err := repo.Update(ctx, 1, domain_todo.UpdateTodo{Completed: ptr(true)}); err != nil {
			return err
		}
		return rollback
	})
	if !errors.Is(err, rollback) {
		t.Fatalf("expected rollback error, got %v", err)
	}

	all, err := repo.All(ctx)
	if err != nil {
		t.Fatalf("All returned error: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("expected rollback to discard rows, got %#v", all)
	}
}

func TestTodoRepository_ScenarioBuyMilk(t *testing.T) {
	t.Parallel()

	repo, _ := newRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, domain_todo.CreateTodo{Text: "buy milk"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created != (domain_todo.Todo{ID: 1, Text: "buy milk"}) {
		t.Fatalf("unexpected created: %#v", created)
	}

	updated, err := repo.Update(ctx, 1, domain_todo.UpdateTodo{Completed: ptr(true)})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated != (domain_todo.Todo{ID: 1, Text: "buy milk", Completed: true}) {
		t.Fatalf("unexpected updated: %#v", updated)
	}

	if err := repo.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	_, err = repo.Find(ctx, 1)
	var nf *domain_todo.NotFoundError
	if !errors.As(err, &nf) || nf.ID != 1 {
		t.Fatalf("expected NotFound(1), got %v", err)
	}
}
