package observe

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope name for application spans.
const tracerName = "github.com/sam-brownlow/remote-doorbell-intercom"

// Tracer returns the application [trace.Tracer] from the globally registered
// [trace.TracerProvider].
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartSpan starts a new span and returns the updated context and span. The
// caller must call span.End() when done.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// Span attribute keys for detection spans.
const (
	CommandKey = attribute.Key("doorbell.command")
	InputKey   = attribute.Key("doorbell.input")
)

// StartInputSpan starts the span "doorbell.<command>" for a command consuming
// input. The span carries the command name and the input description, so a
// ring can be traced back to the file or pipe it was heard on.
func StartInputSpan(ctx context.Context, command string, input any) (context.Context, trace.Span) {
	return StartSpan(ctx, "doorbell."+command,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			CommandKey.String(command),
			InputKey.String(fmt.Sprint(input)),
		),
	)
}

// CorrelationID returns the trace ID of the active span in ctx, or "".
func CorrelationID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}

// Logger returns an [slog.Logger] enriched with trace_id and span_id from
// the OTel span context in ctx. When no active span is present, the returned
// logger is the default slog logger without extra attributes.
func Logger(ctx context.Context) *slog.Logger {
	l := slog.Default()
	sc := trace.SpanContextFromContext(ctx)
	if sc.HasTraceID() {
		l = l.With(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return l
}
