package adapters

import (
	"context"
	"time"

	"github.com/medicare/storefront/internal/orders/domain"
	"github.com/medicare/storefront/internal/orders/metrics"
	"github.com/medicare/storefront/internal/orders/ports"
	"github.com/medicare/storefront/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableOrderAPI struct {
	api     ports.OrderAPI
	metrics *metrics.Metrics
}

func NewObservableOrderAPI(api ports.OrderAPI, metrics *metrics.Metrics) *ObservableOrderAPI {
	return &ObservableOrderAPI{
		api:     api,
		metrics: metrics,
	}
}

func (a *ObservableOrderAPI) CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.OrderDetail, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderAPI.CreateOrder")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("operation", "create_order"),
		attribute.Int("order.item_count", len(req.Items)),
		attribute.Int64("order.total_cents", req.Total.Cents()),
	)

	start := time.Now()
	order, err := a.api.CreateOrder(ctx, req)
	a.metrics.RecordOrderAPICall(ctx, "create_order", time.Since(start).Seconds(), err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.AddSpanAttributes(span, attribute.String("order.id", order.ID))
	telemetry.SetSpanSuccess(span)
	return order, nil
}

func (a *ObservableOrderAPI) ListOrders(ctx context.Context) ([]domain.OrderSummary, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderAPI.ListOrders")
	defer span.End()

	telemetry.AddSpanAttributes(span, attribute.String("operation", "list_orders"))

	start := time.Now()
	orders, err := a.api.ListOrders(ctx)
	a.metrics.RecordOrderAPICall(ctx, "list_orders", time.Since(start).Seconds(), err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.AddSpanAttributes(span, attribute.Int("result.count", len(orders)))
	telemetry.SetSpanSuccess(span)
	return orders, nil
}

func (a *ObservableOrderAPI) GetOrder(ctx context.Context, id string) (*domain.OrderDetail, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderAPI.GetOrder")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", id),
		attribute.String("operation", "get_order"),
	)

	start := time.Now()
	order, err := a.api.GetOrder(ctx, id)
	a.metrics.RecordOrderAPICall(ctx, "get_order", time.Since(start).Seconds(), err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.SetSpanSuccess(span)
	return order, nil
}

func (a *ObservableOrderAPI) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.OrderDetail, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderAPI.UpdateOrderStatus")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", id),
		attribute.String("order.new_status", string(status)),
		attribute.String("operation", "update_order_status"),
	)

	start := time.Now()
	order, err := a.api.UpdateOrderStatus(ctx, id, status)
	a.metrics.RecordOrderAPICall(ctx, "update_order_status", time.Since(start).Seconds(), err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.SetSpanSuccess(span)
	return order, nil
}
