package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/medicare/storefront/internal/orders/domain"
	"github.com/medicare/storefront/internal/orders/metrics"
	"github.com/medicare/storefront/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableCommandHandler struct {
	handler CommandHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableCommandHandler(handler CommandHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableCommandHandler {
	return &ObservableCommandHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableCommandHandler) Handle(ctx context.Context, cmd CheckoutCommand) (*CheckoutResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "CheckoutCommand.Handle")
	defer span.End()

	start := time.Now()
	status := "error"
	defer func() {
		o.metrics.RecordCheckoutDuration(ctx, time.Since(start).Seconds())
		o.metrics.RecordCheckout(ctx, status)
	}()

	telemetry.AddSpanAttributes(span, attribute.String("cart.session", cmd.Session))
	o.logger.InfoContext(ctx, "checking out cart",
		"cart_session", cmd.Session,
		"payment_method", cmd.Payment.Method,
	)

	result, err := o.handler.Handle(ctx, cmd)

	if result == nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			status = "invalid"
			o.logger.WarnContext(ctx, "checkout rejected",
				"error", err,
				"cart_session", cmd.Session,
				"line_items", verr.LineItems,
			)
		} else {
			o.logger.ErrorContext(ctx, "checkout failed",
				"error", err,
				"cart_session", cmd.Session,
			)
		}
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	if errors.Is(err, ErrOrderUnconfirmed) {
		var nerr *domain.NetworkError
		errors.As(err, &nerr)
		o.logger.ErrorContext(ctx, "order accepted but response could not be read",
			"error", err,
			"cart_session", cmd.Session,
			"response_body", responseBody(nerr),
		)
		telemetry.AddSpanEvent(span, "order.unconfirmed")
	}
	if errors.Is(err, ErrEventNotPublished) {
		o.logger.WarnContext(ctx, "order placed but checkout event was not published",
			"error", err,
			"order_id", result.Order.ID,
		)
	}

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", result.Order.ID),
		attribute.String("order.number", result.Order.OrderNumber),
		attribute.Int("order.item_count", len(result.Request.Items)),
		attribute.Int64("order.total_cents", result.Request.Total.Cents()),
	)

	o.logger.InfoContext(ctx, "order placed successfully",
		"order_id", result.Order.ID,
		"order_number", result.Order.OrderNumber,
		"total", result.Request.Total.String(),
	)

	telemetry.AddSpanEvent(span, "cart.cleared", attribute.Int("cart.lines", len(result.Request.Items)))

	status = "success"
	o.metrics.RecordOrderTotal(ctx, result.Request.Total)
	telemetry.SetSpanSuccess(span)

	return result, err
}

func responseBody(nerr *domain.NetworkError) string {
	if nerr == nil {
		return ""
	}
	return nerr.Message
}
