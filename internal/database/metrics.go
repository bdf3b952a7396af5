package database

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics covers key-value storage round trips, whichever backend serves them.
type Metrics struct {
	queryDuration metric.Float64Histogram
	queryErrors   metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.queryDuration, err = meter.Float64Histogram(
		"storage_query_duration_seconds",
		metric.WithDescription("Cart storage operation duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create storage_query_duration histogram: %w", err)
	}

	m.queryErrors, err = meter.Int64Counter(
		"storage_query_errors_total",
		metric.WithDescription("Cart storage operations that returned an error"),
	)
	if err != nil {
		return nil, fmt.Errorf("create storage_query_errors counter: %w", err)
	}

	return m, nil
}

// RecordQuery records one storage operation. A non-nil err also bumps the
// error counter for that operation.
func (m *Metrics) RecordQuery(ctx context.Context, operation string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		m.queryErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
	}
	m.queryDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
}
