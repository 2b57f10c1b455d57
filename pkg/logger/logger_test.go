package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func decodeLast(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &rec))
	return rec
}

func TestLogger_AddsTraceIDs(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	var buf bytes.Buffer
	log := NewWithWriter(&buf, "storefront", "info")
	log.InfoContext(ctx, "hello", slog.String("k", "v"))

	rec := decodeLast(t, &buf)
	assert.Equal(t, "storefront", rec["service"])
	assert.Equal(t, "v", rec["k"])
	assert.Equal(t, span.SpanContext().TraceID().String(), rec["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), rec["span_id"])
}

func TestLogger_NoSpan(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "storefront", "info")
	log.InfoContext(context.Background(), "hello")

	rec := decodeLast(t, &buf)
	_, ok := rec["trace_id"]
	assert.False(t, ok)
}

func TestLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "storefront", "warn")
	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.With(slog.String("a", "b")).Warn("kept")
	rec := decodeLast(t, &buf)
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, "b", rec["a"])
}
