package logging

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey string

const ctxKeyRequestID ctxKey = "request-id"

// ----- request_id -----

// WithRequestID は request_id を context に埋め込む（HTTP / gRPC 両方から使う）
func WithRequestID(ctx context.Context, rid string) context.Context {
	if rid == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKeyRequestID, rid)
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(ctxKeyRequestID)
	s, ok := v.(string)
	return s, ok
}

// Fields は ctx にぶら下がっている相関情報を zap.Field にする。
func Fields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if rid, ok := RequestIDFromContext(ctx); ok {
		fields = append(fields, zap.String("request_id", rid))
	}
	return fields
}
