package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestSetup_Disabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{Enabled: false}, nil)
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown returned error: %v", err)
	}
}

func TestSetup_ExportsSpans(t *testing.T) {
	var buf bytes.Buffer

	shutdown, err := Setup(context.Background(), Config{Enabled: true, Writer: &buf}, nil)
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}

	_, span := otel.Tracer("telemetry-test").Start(context.Background(), "test.span")
	span.End()

	// Shutdown で batcher が flush される
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown returned error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "test.span") {
		t.Errorf("expected exported span, got %q", out)
	}
	if !strings.Contains(out, ServiceName) {
		t.Errorf("expected service name in resource, got %q", out)
	}
}
