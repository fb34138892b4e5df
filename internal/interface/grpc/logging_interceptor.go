package grpcadapter

import (
	"context"
	"time"

	"github.com/hijjiri/todo-api/internal/logging"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewLoggingUnaryInterceptor logs unary RPCs with method, code, duration, error and request_id.
func NewLoggingUnaryInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		logRPC(ctx, logger, "gRPC unary request", info.FullMethod, time.Since(start), err)
		return resp, err
	}
}

// NewLoggingStreamInterceptor logs stream RPCs with method, code, duration, error and request_id.
func NewLoggingStreamInterceptor(logger *zap.Logger) grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		start := time.Now()

		err := handler(srv, ss)

		logRPC(ss.Context(), logger, "gRPC stream request", info.FullMethod, time.Since(start), err)
		return err
	}
}

func logRPC(ctx context.Context, logger *zap.Logger, msg, method string, d time.Duration, err error) {
	code := status.Code(err)

	fields := append(logging.Fields(ctx),
		zap.String("method", method),
		zap.String("code", code.String()),
		zap.Duration("duration", d),
	)

	switch code {
	case codes.OK:
		logger.Info(msg, fields...)
	case codes.InvalidArgument, codes.NotFound, codes.Canceled, codes.DeadlineExceeded:
		// クライアント起因は Warn に留める
		logger.Warn(msg, append(fields, zap.Error(err))...)
	default:
		logger.Error(msg, append(fields, zap.Error(err))...)
	}
}
