package adapters

import (
	"context"
	"time"

	"github.com/medicare/storefront/internal/events"
	"github.com/medicare/storefront/internal/orders/ports"
	"github.com/medicare/storefront/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// ObservableEventBus traces and times every checkout event handed to bus.
type ObservableEventBus struct {
	bus     ports.EventBus
	metrics *events.Metrics
}

func NewObservableEventBus(bus ports.EventBus, metrics *events.Metrics) *ObservableEventBus {
	return &ObservableEventBus{
		bus:     bus,
		metrics: metrics,
	}
}

func (e *ObservableEventBus) PublishCheckoutCompleted(ctx context.Context, session, orderID string) error {
	return e.publish(ctx, events.TopicCheckoutCompleted, session,
		func(ctx context.Context) error { return e.bus.PublishCheckoutCompleted(ctx, session, orderID) },
		attribute.String("order.id", orderID),
	)
}

func (e *ObservableEventBus) PublishCheckoutFailed(ctx context.Context, session, reason string) error {
	return e.publish(ctx, events.TopicCheckoutFailed, session,
		func(ctx context.Context) error { return e.bus.PublishCheckoutFailed(ctx, session, reason) },
		attribute.String("failure.reason", reason),
	)
}

func (e *ObservableEventBus) publish(ctx context.Context, topic, session string, send func(context.Context) error, attrs ...attribute.KeyValue) error {
	ctx, span := telemetry.StartSpan(ctx, "EventBus.Publish "+topic)
	defer span.End()

	telemetry.AddSpanAttributes(span, append(attrs,
		attribute.String("cart.session", session),
		attribute.String("topic", topic),
	)...)

	start := time.Now()
	err := send(ctx)
	e.metrics.RecordPublish(ctx, topic, time.Since(start), err)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}
