package logging

import (
	"context"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level, format string
		wantErr       bool
		enabled       zapcore.Level
		disabled      zapcore.Level
	}{
		{level: "", format: "", enabled: zapcore.InfoLevel, disabled: zapcore.DebugLevel},
		{level: "DEBUG", format: "console", enabled: zapcore.DebugLevel, disabled: zapcore.DebugLevel - 1},
		{level: "error", format: "json", enabled: zapcore.ErrorLevel, disabled: zapcore.WarnLevel},
		{level: "loud", format: "json", wantErr: true},
		{level: "info", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		logger, err := New(tt.level, tt.format)
		if tt.wantErr {
			if err == nil {
				t.Errorf("New(%q, %q): expected error", tt.level, tt.format)
			}
			continue
		}
		if err != nil {
			t.Fatalf("New(%q, %q) returned error: %v", tt.level, tt.format, err)
		}
		if !logger.Core().Enabled(tt.enabled) {
			t.Errorf("New(%q, %q): expected %v enabled", tt.level, tt.format, tt.enabled)
		}
		if logger.Core().Enabled(tt.disabled) {
			t.Errorf("New(%q, %q): expected %v disabled", tt.level, tt.format, tt.disabled)
		}
	}
}

func TestRequestIDContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if _, ok := RequestIDFromContext(ctx); ok {
		t.Fatal("expected no request id")
	}
	if len(Fields(ctx)) != 0 {
		t.Fatal("expected no fields")
	}

	if WithRequestID(ctx, "") != ctx {
		t.Error("empty id must not wrap ctx")
	}

	ctx = WithRequestID(ctx, "rid-1")
	rid, ok := RequestIDFromContext(ctx)
	if !ok || rid != "rid-1" {
		t.Errorf("expected rid-1, got %q (%v)", rid, ok)
	}

	fields := Fields(ctx)
	if len(fields) != 1 || fields[0].Key != "request_id" || fields[0].String != "rid-1" {
		t.Errorf("unexpected fields: %#v", fields)
	}
}
