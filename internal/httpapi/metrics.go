package httpapi

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics describes traffic on the storefront surface.
type Metrics struct {
	requestDuration  metric.Float64Histogram
	requestsTotal    metric.Int64Counter
	requestsInFlight metric.Int64UpDownCounter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.requestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("Storefront request duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_request_duration histogram: %w", err)
	}

	m.requestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Storefront requests served"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_requests_total counter: %w", err)
	}

	m.requestsInFlight, err = meter.Int64UpDownCounter(
		"http_requests_in_flight",
		metric.WithDescription("Storefront requests currently being served"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_requests_in_flight counter: %w", err)
	}

	return m, nil
}

// RequestStarted bumps the in-flight gauge; pair it with RecordRequest.
func (m *Metrics) RequestStarted(ctx context.Context) {
	m.requestsInFlight.Add(ctx, 1)
}

// RecordRequest records one served request. route is the matched mux
// pattern, never the raw path, so cart and order ids stay out of the labels.
func (m *Metrics) RecordRequest(ctx context.Context, route string, statusCode int, duration time.Duration) {
	m.requestsInFlight.Add(ctx, -1)
	m.requestsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("route", route),
		attribute.Int("status_code", statusCode),
	))
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("route", route),
		attribute.String("status_class", statusClass(statusCode)),
	))
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}
