package todo_usecase

import (
	"context"
	"errors"
	"strings"

	domain_todo "github.com/hijjiri/todo-api/internal/domain/todo"
	"github.com/hijjiri/todo-api/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ===== エラー定数（Handler側からも使う） =====

var (
	ErrEmptyText = errors.New("text is empty")
	ErrInvalidID = errors.New("invalid id")

	// Repository のエラーはそのまま返すので、判定はドメインの sentinel で行う
	ErrNotFound = domain_todo.ErrNotFound
)

// ===== 外部に公開する Usecase インターフェース =====

type Usecase interface {
	Create(ctx context.Context, text string) (domain_todo.Todo, error)
	Find(ctx context.Context, id int64) (domain_todo.Todo, error)
	List(ctx context.Context) ([]domain_todo.Todo, error)
	Update(ctx context.Context, id int64, in domain_todo.UpdateTodo) (domain_todo.Todo, error)
	Delete(ctx context.Context, id int64) error
}

// ===== 実装 =====

type usecase struct {
	repo   domain_todo.Repository
	logger *zap.Logger
	tracer trace.Tracer
}

func New(repo domain_todo.Repository, logger *zap.Logger) Usecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &usecase{
		repo:   repo,
		logger: logger,
		tracer: otel.Tracer("github.com/hijjiri/todo-api/internal/usecase/todo"),
	}
}

// Create ユースケース
func (u *usecase) Create(ctx context.Context, text string) (domain_todo.Todo, error) {
	ctx, span := u.tracer.Start(ctx, "todo.Create")
	defer span.End()

	text = strings.TrimSpace(text)
	if text == "" {
		return domain_todo.Todo{}, u.fail(ctx, span, "create", ErrEmptyText)
	}

	t, err := u.repo.Create(ctx, domain_todo.CreateTodo{Text: text})
	if err != nil {
		return domain_todo.Todo{}, u.fail(ctx, span, "create", err)
	}

	span.SetAttributes(attribute.Int64("todo.id", t.ID))
	u.logger.Info("todo created", append(logging.Fields(ctx), zap.Int64("id", t.ID))...)
	return t, nil
}

// Find ユースケース
func (u *usecase) Find(ctx context.Context, id int64) (domain_todo.Todo, error) {
	ctx, span := u.tracer.Start(ctx, "todo.Find", trace.WithAttributes(attribute.Int64("todo.id", id)))
	defer span.End()

	if id <= 0 {
		return domain_todo.Todo{}, u.fail(ctx, span, "find", ErrInvalidID)
	}

	t, err := u.repo.Find(ctx, id)
	if err != nil {
		return domain_todo.Todo{}, u.fail(ctx, span, "find", err)
	}
	return t, nil
}

// List ユースケース（id 降順）
func (u *usecase) List(ctx context.Context) ([]domain_todo.Todo, error) {
	ctx, span := u.tracer.Start(ctx, "todo.List")
	defer span.End()

	todos, err := u.repo.All(ctx)
	if err != nil {
		return nil, u.fail(ctx, span, "list", err)
	}

	span.SetAttributes(attribute.Int("todo.count", len(todos)))
	return todos, nil
}

// Update ユースケース（部分更新）
func (u *usecase) Update(ctx context.Context, id int64, in domain_todo.UpdateTodo) (domain_todo.Todo, error) {
	ctx, span := u.tracer.Start(ctx, "todo.Update", trace.WithAttributes(attribute.Int64("todo.id", id)))
	defer span.End()

	if id <= 0 {
		return domain_todo.Todo{}, u.fail(ctx, span, "update", ErrInvalidID)
	}
	if in.Text != nil {
		trimmed := strings.TrimSpace(*in.Text)
		if trimmed == "" {
			return domain_todo.Todo{}, u.fail(ctx, span, "update", ErrEmptyText)
		}
		in.Text = &trimmed
	}

	t, err := u.repo.Update(ctx, id, in)
	if err != nil {
		return domain_todo.Todo{}, u.fail(ctx, span, "update", err)
	}

	u.logger.Info("todo updated", append(logging.Fields(ctx), zap.Int64("id", id))...)
	return t, nil
}

// Delete ユースケース
func (u *usecase) Delete(ctx context.Context, id int64) error {
	ctx, span := u.tracer.Start(ctx, "todo.Delete", trace.WithAttributes(attribute.Int64("todo.id", id)))
	defer span.End()

	if id <= 0 {
		return u.fail(ctx, span, "delete", ErrInvalidID)
	}

	if err := u.repo.Delete(ctx, id); err != nil {
		return u.fail(ctx, span, "delete", err)
	}

	u.logger.Info("todo deleted", append(logging.Fields(ctx), zap.Int64("id", id))...)
	return nil
}

// fail は span にエラーを記録し、想定外のものだけ Error ログに残す。
// エラーは包まずにそのまま返す（上位で errors.Is できるように）。
func (u *usecase) fail(ctx context.Context, span trace.Span, op string, err error) error {
	span.RecordError(err)

	switch {
	case errors.Is(err, ErrEmptyText), errors.Is(err, ErrInvalidID), errors.Is(err, ErrNotFound):
		// クライアント起因なので span は Error にしない
		u.logger.Debug("todo request rejected",
			append(logging.Fields(ctx), zap.String("op", op), zap.Error(err))...)
	default:
		span.SetStatus(codes.Error, err.Error())
		u.logger.Error("todo usecase failed",
			append(logging.Fields(ctx), zap.String("op", op), zap.Error(err))...)
	}
	return err
}
