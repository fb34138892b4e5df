package httpadapter

import (
	domain_todo "github.com/hijjiri/todo-api/internal/domain/todo"
)

// TodoResponse は JSON 上の Todo 表現
type TodoResponse struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

type CreateTodoRequest struct {
	Text string `json:"text" binding:"required"`
}

// UpdateTodoRequest は省略したフィールドを変更しない。
// body に id が入っていても無視する（パスの id が正）。
type UpdateTodoRequest struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

func toResponse(t domain_todo.Todo) TodoResponse {
	return TodoResponse{
		ID:        t.ID,
		Text:      t.Text,
		Completed: t.Completed,
	}
}

func toResponses(list []domain_todo.Todo) []TodoResponse {
	out := make([]TodoResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toResponse(t))
	}
	return out
}

func (r UpdateTodoRequest) toDomain() domain_todo.UpdateTodo {
	return domain_todo.UpdateTodo{
		Text:      r.Text,
		Completed: r.Completed,
	}
}
