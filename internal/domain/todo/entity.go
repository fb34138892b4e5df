package todo

// Todo は永続化される Todo レコード。
// 比較は全フィールドの構造的一致（== が使える）。
type Todo struct {
	ID        int64
	Text      string
	Completed bool
}

// CreateTodo は新規作成の入力。ID と Completed はストア側で決める。
type CreateTodo struct {
	Text string
}

// UpdateTodo は部分更新の入力。
// nil のフィールドは「指定なし」で、既存の値をそのまま残す。
type UpdateTodo struct {
	Text      *string
	Completed *bool
}

// NewTodo は作成直後の Todo（completed=false）を組み立てる。
func NewTodo(id int64, text string) Todo {
	return Todo{
		ID:   id,
		Text: text,
	}
}

// Apply は UpdateTodo をフィールド単位でマージした新しい Todo を返す。
// レシーバ自体は書き換えない。
func (t Todo) Apply(in UpdateTodo) Todo {
	merged := t
	if in.Text != nil {
		merged.Text = *in.Text
	}
	if in.Completed != nil {
		merged.Completed = *in.Completed
	}
	return merged
}

// IsEmpty はどのフィールドも指定されていない更新かどうか。
func (u UpdateTodo) IsEmpty() bool {
	return u.Text == nil && u.Completed == nil
}
