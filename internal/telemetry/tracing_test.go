package telemetry

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTracerProvider(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exp := tracetest.NewInMemoryExporter()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(trace.NewTracerProvider(trace.WithSyncer(exp)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return exp
}

func TestStartSpanNesting(t *testing.T) {
	exp := setupTracerProvider(t)

	ctx, parent := StartSpan(context.Background(), "Checkout")
	_, child := StartSpan(ctx, "OrderAPI.CreateOrder")
	child.End()
	parent.End()

	spans := exp.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Name != "OrderAPI.CreateOrder" || spans[1].Name != "Checkout" {
		t.Errorf("unexpected span names %q, %q", spans[0].Name, spans[1].Name)
	}
	if spans[0].Parent.SpanID() != spans[1].SpanContext.SpanID() {
		t.Error("expected child span to have parent span ID")
	}
	if traceID, spanID := TraceIDs(ctx); traceID != spans[1].SpanContext.TraceID().String() || spanID != spans[1].SpanContext.SpanID().String() {
		t.Error("expected TraceIDs to read the context span")
	}
}

func TestSpanHelpers(t *testing.T) {
	exp := setupTracerProvider(t)

	_, ok := StartSpan(context.Background(), "ok")
	AddSpanAttributes(ok, attribute.String("order.id", "o1"))
	AddSpanEvent(ok, "cart.cleared", attribute.Int("cart.lines", 2))
	SetSpanSuccess(ok)
	ok.End()

	_, failed := StartSpan(context.Background(), "failed")
	RecordSpanError(failed, errors.New("order api unavailable"))
	RecordSpanError(failed, nil)
	failed.End()

	spans := exp.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}

	okSpan := spans[0]
	if okSpan.Status.Code != codes.Ok {
		t.Errorf("expected ok status, got %v", okSpan.Status.Code)
	}
	if len(okSpan.Attributes) != 1 || okSpan.Attributes[0].Value.AsString() != "o1" {
		t.Errorf("unexpected attributes %v", okSpan.Attributes)
	}
	if len(okSpan.Events) != 1 || okSpan.Events[0].Name != "cart.cleared" {
		t.Errorf("unexpected events %v", okSpan.Events)
	}

	failedSpan := spans[1]
	if failedSpan.Status.Code != codes.Error || failedSpan.Status.Description != "order api unavailable" {
		t.Errorf("unexpected status %+v", failedSpan.Status)
	}
	if len(failedSpan.Events) != 1 {
		t.Errorf("expected one recorded error event, got %d", len(failedSpan.Events))
	}
}

func TestHelpersTolerateNilSpan(t *testing.T) {
	AddSpanAttributes(nil, attribute.String("k", "v"))
	AddSpanEvent(nil, "event")
	RecordSpanError(nil, errors.New("boom"))
	SetSpanSuccess(nil)

	if traceID, spanID := TraceIDs(context.Background()); traceID != "" || spanID != "" {
		t.Error("expected empty ids without a span")
	}
}
