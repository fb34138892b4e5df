package grpcadapter

import (
	"context"
	"errors"

	todo_usecase "github.com/hijjiri/todo-api/internal/usecase/todo"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type TodoHandler struct {
	uc     todo_usecase.Usecase
	logger *zap.Logger
}

var _ TodoServiceServer = (*TodoHandler)(nil)

func NewTodoHandler(uc todo_usecase.Usecase, logger *zap.Logger) *TodoHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TodoHandler{uc: uc, logger: logger}
}

// --- Create ---
func (h *TodoHandler) CreateTodo(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	t, err := h.uc.Create(ctx, req.GetValue())
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(t), nil
}

// --- Get ---
func (h *TodoHandler) GetTodo(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	t, err := h.uc.Find(ctx, req.GetValue())
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(t), nil
}

// --- List ---
func (h *TodoHandler) ListTodos(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	list, err := h.uc.List(ctx)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toListValue(list), nil
}

// --- Update ---
func (h *TodoHandler) UpdateTodo(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, in, err := updateFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	t, err := h.uc.Update(ctx, id, in)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(t), nil
}

// --- Delete ---
func (h *TodoHandler) DeleteTodo(ctx context.Context, req *wrapperspb.Int64Value) (*emptypb.Empty, error) {
	if err := h.uc.Delete(ctx, req.GetValue()); err != nil {
		return nil, toGRPCError(err)
	}
	return &emptypb.Empty{}, nil
}

// ListTodos と同じ usecase を呼んで、返ってきた slice を 1 件ずつ stream.Send する
func (h *TodoHandler) ListTodosStream(_ *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	ctx := stream.Context()

	todos, err := h.uc.List(ctx)
	if err != nil {
		return toGRPCError(err)
	}

	for _, t := range todos {
		if err := stream.Send(toStruct(t)); err != nil {
			// クライアント側が切断した場合など
			h.logger.Warn("failed to send todo (stream)", zap.Int64("id", t.ID), zap.Error(err))
			return err
		}
	}

	return nil
}

// --- error mapper ---
func toGRPCError(err error) error {
	switch {
	case errors.Is(err, todo_usecase.ErrEmptyText):
		return status.Error(codes.InvalidArgument, "text is required")

	case errors.Is(err, todo_usecase.ErrInvalidID):
		return status.Error(codes.InvalidArgument, "invalid id")

	case errors.Is(err, todo_usecase.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())

	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timeout")

	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")

	default:
		// Internal詳細はログ側にだけ残す（usecase と interceptor で）
		return status.Error(codes.Internal, "internal error")
	}
}
