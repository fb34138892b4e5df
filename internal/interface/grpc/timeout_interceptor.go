package grpcadapter

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewTimeoutUnaryInterceptor は、各 unary RPC にタイムアウトを付与する interceptor。
// - timeout <= 0 の場合は何もしない
// - 既に ctx に deadline がある場合は「より短い方」を優先（上書き事故を防ぐ）
//
// 目的：handler/usecase/repo まで ctx deadline を伝播させ、DB 等のブロックを切る
func NewTimeoutUnaryInterceptor(logger *zap.Logger, timeout time.Duration) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx2, cancel, applied := withShorterTimeout(ctx, timeout)
		if !applied {
			return handler(ctx, req)
		}
		defer cancel()

		resp, err := handler(ctx2, req)

		if timedOut(ctx2, err) {
			logger.Warn("request timeout",
				zap.String("method", info.FullMethod),
				zap.Duration("timeout", timeout),
			)
			return nil, status.Error(codes.DeadlineExceeded, "request timeout")
		}

		return resp, err
	}
}

// NewTimeoutStreamInterceptor は stream 全体（送信し終わるまで）に同じ上限をかける
func NewTimeoutStreamInterceptor(logger *zap.Logger, timeout time.Duration) grpc.StreamServerInterceptor {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx2, cancel, applied := withShorterTimeout(ss.Context(), timeout)
		if !applied {
			return handler(srv, ss)
		}
		defer cancel()

		err := handler(srv, &contextStream{ServerStream: ss, ctx: ctx2})

		if timedOut(ctx2, err) {
			logger.Warn("stream timeout",
				zap.String("method", info.FullMethod),
				zap.Duration("timeout", timeout),
			)
			return status.Error(codes.DeadlineExceeded, "request timeout")
		}
		return err
	}
}

func withShorterTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc, bool) {
	if timeout <= 0 {
		return ctx, nil, false
	}

	// 既に deadline があるなら、より短い方を採用
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) <= timeout {
		return ctx, nil, false
	}

	ctx2, cancel := context.WithTimeout(ctx, timeout)
	return ctx2, cancel, true
}

// タイムアウト時は gRPC の DeadlineExceeded に寄せる（上位で統一）
func timedOut(ctx context.Context, err error) bool {
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || status.Code(err) == codes.DeadlineExceeded {
			return true
		}
		return false
	}
	// err が nil のパターンはほぼ無いが、ctx が切れていれば結果は返さない
	return errors.Is(ctx.Err(), context.DeadlineExceeded)
}
