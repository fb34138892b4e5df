package grpcadapter

import (
	"context"

	"github.com/google/uuid"
	"github.com/hijjiri/todo-api/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// metadata のキーは小文字
const MetadataRequestID = "x-request-id"

const maxRequestIDLen = 128

// contextStream は ServerStream の Context だけ差し替える
type contextStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *contextStream) Context() context.Context {
	return s.ctx
}

func requestIDFromMetadata(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get(MetadataRequestID); len(vals) > 0 && vals[0] != "" && len(vals[0]) <= maxRequestIDLen {
			return vals[0]
		}
	}
	return uuid.NewString()
}

// NewRequestIDUnaryInterceptor は x-request-id を引き継ぐ（無ければ採番）。
// 値は ctx に載せ、レスポンスヘッダでも返す。
func NewRequestIDUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		rid := requestIDFromMetadata(ctx)
		_ = grpc.SetHeader(ctx, metadata.Pairs(MetadataRequestID, rid))

		return handler(logging.WithRequestID(ctx, rid), req)
	}
}

func NewRequestIDStreamInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		rid := requestIDFromMetadata(ss.Context())
		_ = ss.SetHeader(metadata.Pairs(MetadataRequestID, rid))

		ctx := logging.WithRequestID(ss.Context(), rid)
		return handler(srv, &contextStream{ServerStream: ss, ctx: ctx})
	}
}
