package metrics

import (
	"context"
	"fmt"

	"github.com/medicare/storefront/internal/money"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	checkoutsTotal     metric.Int64Counter
	checkoutDuration   metric.Float64Histogram
	checkoutOrderTotal metric.Float64Histogram
	orderAPIDuration   metric.Float64Histogram
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.checkoutsTotal, err = meter.Int64Counter(
		"checkouts_total",
		metric.WithDescription("Total number of checkout attempts"),
		metric.WithUnit("{checkout}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create checkouts_total counter: %w", err)
	}

	m.checkoutDuration, err = meter.Float64Histogram(
		"checkout_duration_seconds",
		metric.WithDescription("Duration of checkout operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create checkout_duration histogram: %w", err)
	}

	m.checkoutOrderTotal, err = meter.Float64Histogram(
		"checkout_order_total",
		metric.WithDescription("Grand total of placed orders"),
		metric.WithUnit("{USD}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create checkout_order_total histogram: %w", err)
	}

	m.orderAPIDuration, err = meter.Float64Histogram(
		"order_api_request_duration_seconds",
		metric.WithDescription("Order API call duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_api_request_duration histogram: %w", err)
	}

	return m, nil
}

// RecordCheckout counts a checkout attempt. status is one of success,
// invalid or error.
func (m *Metrics) RecordCheckout(ctx context.Context, status string) {
	m.checkoutsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}

func (m *Metrics) RecordCheckoutDuration(ctx context.Context, durationSeconds float64) {
	m.checkoutDuration.Record(ctx, durationSeconds)
}

func (m *Metrics) RecordOrderTotal(ctx context.Context, total money.Money) {
	m.checkoutOrderTotal.Record(ctx, total.Float())
}

func (m *Metrics) RecordOrderAPICall(ctx context.Context, operation string, durationSeconds float64, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.orderAPIDuration.Record(ctx, durationSeconds, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
}
