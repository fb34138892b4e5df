package grpcadapter

import (
	"context"
	"errors"
	"io"

	domain_todo "github.com/hijjiri/todo-api/internal/domain/todo"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// todo.v1.TodoService は .proto を持たず、well-known types だけでメッセージを組む。
// Todo は {"id": number, "text": string, "completed": bool} の Struct。
const TodoServiceName = "todo.v1.TodoService"

const (
	TodoService_CreateTodo_FullMethodName      = "/" + TodoServiceName + "/CreateTodo"
	TodoService_GetTodo_FullMethodName         = "/" + TodoServiceName + "/GetTodo"
	TodoService_ListTodos_FullMethodName       = "/" + TodoServiceName + "/ListTodos"
	TodoService_UpdateTodo_FullMethodName      = "/" + TodoServiceName + "/UpdateTodo"
	TodoService_DeleteTodo_FullMethodName      = "/" + TodoServiceName + "/DeleteTodo"
	TodoService_ListTodosStream_FullMethodName = "/" + TodoServiceName + "/ListTodosStream"
)

type TodoServiceServer interface {
	CreateTodo(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	GetTodo(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	ListTodos(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	// UpdateTodo の入力は {"id": number, "text"?: string, "completed"?: bool}
	UpdateTodo(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteTodo(context.Context, *wrapperspb.Int64Value) (*emptypb.Empty, error)
	ListTodosStream(*emptypb.Empty, grpc.ServerStreamingServer[structpb.Struct]) error
}

func RegisterTodoServiceServer(s grpc.ServiceRegistrar, srv TodoServiceServer) {
	s.RegisterService(&TodoService_ServiceDesc, srv)
}

// unary は生成コードの _Handler と同じ流れ（decode → interceptor → 実装）を型引数でまとめたもの
func unary[Req any](method string, call func(TodoServiceServer, context.Context, *Req) (any, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}

		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(TodoServiceServer), ctx, req.(*Req))
		}
		if interceptor == nil {
			return handler(ctx, in)
		}

		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		return interceptor(ctx, in, info, handler)
	}
}

func listTodosStreamHandler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(TodoServiceServer).ListTodosStream(in, &grpc.GenericServerStream[emptypb.Empty, structpb.Struct]{ServerStream: stream})
}

var TodoService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: TodoServiceName,
	HandlerType: (*TodoServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateTodo",
			Handler: unary(TodoService_CreateTodo_FullMethodName,
				func(s TodoServiceServer, ctx context.Context, in *wrapperspb.StringValue) (any, error) {
					return s.CreateTodo(ctx, in)
				}),
		},
		{
			MethodName: "GetTodo",
			Handler: unary(TodoService_GetTodo_FullMethodName,
				func(s TodoServiceServer, ctx context.Context, in *wrapperspb.Int64Value) (any, error) {
					return s.GetTodo(ctx, in)
				}),
		},
		{
			MethodName: "ListTodos",
			Handler: unary(TodoService_ListTodos_FullMethodName,
				func(s TodoServiceServer, ctx context.Context, in *emptypb.Empty) (any, error) {
					return s.ListTodos(ctx, in)
				}),
		},
		{
			MethodName: "UpdateTodo",
			Handler: unary(TodoService_UpdateTodo_FullMethodName,
				func(s TodoServiceServer, ctx context.Context, in *structpb.Struct) (any, error) {
					return s.UpdateTodo(ctx, in)
				}),
		},
		{
			MethodName: "DeleteTodo",
			Handler: unary(TodoService_DeleteTodo_FullMethodName,
				func(s TodoServiceServer, ctx context.Context, in *wrapperspb.Int64Value) (any, error) {
					return s.DeleteTodo(ctx, in)
				}),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "ListTodosStream",
			Handler:       listTodosStreamHandler,
			ServerStreams: true,
		},
	},
	// .proto ファイルは無い
	Metadata: "",
}

// ---- client ----

// TodoServiceClient は Struct の詰め替えを隠してドメイン型で返す
type TodoServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewTodoServiceClient(cc grpc.ClientConnInterface) *TodoServiceClient {
	return &TodoServiceClient{cc: cc}
}

func (c *TodoServiceClient) CreateTodo(ctx context.Context, text string, opts ...grpc.CallOption) (domain_todo.Todo, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, TodoService_CreateTodo_FullMethodName, wrapperspb.String(text), out, opts...); err != nil {
		return domain_todo.Todo{}, err
	}
	return fromStruct(out)
}

func (c *TodoServiceClient) GetTodo(ctx context.Context, id int64, opts ...grpc.CallOption) (domain_todo.Todo, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, TodoService_GetTodo_FullMethodName, wrapperspb.Int64(id), out, opts...); err != nil {
		return domain_todo.Todo{}, err
	}
	return fromStruct(out)
}

func (c *TodoServiceClient) ListTodos(ctx context.Context, opts ...grpc.CallOption) ([]domain_todo.Todo, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, TodoService_ListTodos_FullMethodName, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return fromListValue(out)
}

func (c *TodoServiceClient) UpdateTodo(ctx context.Context, id int64, in domain_todo.UpdateTodo, opts ...grpc.CallOption) (domain_todo.Todo, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, TodoService_UpdateTodo_FullMethodName, updateToStruct(id, in), out, opts...); err != nil {
		return domain_todo.Todo{}, err
	}
	return fromStruct(out)
}

func (c *TodoServiceClient) DeleteTodo(ctx context.Context, id int64, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, TodoService_DeleteTodo_FullMethodName, wrapperspb.Int64(id), new(emptypb.Empty), opts...)
}

// ListTodosStream は受信した Todo を 1 件ずつ fn に渡す。fn がエラーを返したらそこで止める。
func (c *TodoServiceClient) ListTodosStream(ctx context.Context, fn func(domain_todo.Todo) error, opts ...grpc.CallOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := c.cc.NewStream(ctx, &TodoService_ServiceDesc.Streams[0], TodoService_ListTodosStream_FullMethodName, opts...)
	if err != nil {
		return err
	}
	if err := stream.SendMsg(&emptypb.Empty{}); err != nil {
		return err
	}
	if err := stream.CloseSend(); err != nil {
		return err
	}

	for {
		msg := new(structpb.Struct)
		if err := stream.RecvMsg(msg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		t, err := fromStruct(msg)
		if err != nil {
			return err
		}
		if err := fn(t); err != nil {
			return err
		}
	}
}
