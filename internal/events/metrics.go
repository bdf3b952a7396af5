package events

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Checkout lifecycle topics.
const (
	TopicCheckoutCompleted = "checkout.completed"
	TopicCheckoutFailed    = "checkout.failed"
)

type Metrics struct {
	publishLatency metric.Float64Histogram
	published      metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	latency, err := meter.Float64Histogram(
		"event_publish_latency_seconds",
		metric.WithDescription("Checkout event publish latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create event_publish_latency histogram: %w", err)
	}

	published, err := meter.Int64Counter(
		"events_published_total",
		metric.WithDescription("Checkout events handed to the event bus"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create events_published counter: %w", err)
	}

	return &Metrics{publishLatency: latency, published: published}, nil
}

// RecordPublish records one publish attempt on topic; err is the bus result.
func (m *Metrics) RecordPublish(ctx context.Context, topic string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("topic", topic),
		attribute.String("status", status),
	)
	m.published.Add(ctx, 1, attrs)
	m.publishLatency.Record(ctx, duration.Seconds(), attrs)
}
