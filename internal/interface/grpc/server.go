// Package grpcadapter は Todo の gRPC サービスと interceptor 群を提供する。
package grpcadapter

import (
	"time"

	todo_usecase "github.com/hijjiri/todo-api/internal/usecase/todo"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

type ServerOptions struct {
	// 0 ならタイムアウトなし
	RequestTimeout time.Duration
}

// NewServer は TodoService / Health / Reflection を登録済みの gRPC サーバを返す。
// Listen と Serve は呼び出し側で行う。
func NewServer(uc todo_usecase.Usecase, logger *zap.Logger, opts ServerOptions) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// 外側から: request id → ログ → panic 回復 → タイムアウト
	unaryInterceptors := []grpc.UnaryServerInterceptor{
		NewRequestIDUnaryInterceptor(),
		NewLoggingUnaryInterceptor(logger),
		NewRecoveryUnaryInterceptor(logger),
		NewTimeoutUnaryInterceptor(logger, opts.RequestTimeout),
	}

	streamInterceptors := []grpc.StreamServerInterceptor{
		NewRequestIDStreamInterceptor(),
		NewLoggingStreamInterceptor(logger),
		NewRecoveryStreamInterceptor(logger),
		NewTimeoutStreamInterceptor(logger, opts.RequestTimeout),
	}

	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(unaryInterceptors...),
		grpc.ChainStreamInterceptor(streamInterceptors...),
	)

	// ---- Health & Reflection ----
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(srv, healthSrv)
	reflection.Register(srv)

	// ---- Todo Service ----
	RegisterTodoServiceServer(srv, NewTodoHandler(uc, logger))
	healthSrv.SetServingStatus(TodoServiceName, healthpb.HealthCheckResponse_SERVING)

	return srv, healthSrv
}
