package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/medicare/storefront/internal/telemetry"

// StartSpan starts a span on the globally installed tracer provider, so
// decorators pick up whatever Initialize (or a test) registered.
func StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, spanName, opts...)
}

func AddSpanAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	if recording(span) {
		span.SetAttributes(attrs...)
	}
}

func AddSpanEvent(span trace.Span, eventName string, attrs ...attribute.KeyValue) {
	if recording(span) {
		span.AddEvent(eventName, trace.WithAttributes(attrs...))
	}
}

// RecordSpanError marks span failed. A nil err is ignored.
func RecordSpanError(span trace.Span, err error) {
	if err == nil || !recording(span) {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func SetSpanSuccess(span trace.Span) {
	if recording(span) {
		span.SetStatus(codes.Ok, "")
	}
}

// TraceIDs returns the hex trace and span ids of the span in ctx, or empty
// strings when ctx carries no valid span.
func TraceIDs(ctx context.Context) (traceID, spanID string) {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return "", ""
	}
	return sc.TraceID().String(), sc.SpanID().String()
}

func recording(span trace.Span) bool {
	return span != nil && span.IsRecording()
}
