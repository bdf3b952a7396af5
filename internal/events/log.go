package events

import (
	"context"
	"log/slog"
)

// LogEventBus writes checkout events to the structured log. No broker is
// involved; downstream consumers tail the log stream.
type LogEventBus struct {
	logger *slog.Logger
}

func NewLogEventBus(logger *slog.Logger) *LogEventBus {
	return &LogEventBus{logger: logger}
}

func (b *LogEventBus) PublishCheckoutCompleted(ctx context.Context, session, orderID string) error {
	b.logger.InfoContext(ctx, "event::"+TopicCheckoutCompleted,
		"cart_session", session,
		"order_id", orderID,
	)
	return nil
}

func (b *LogEventBus) PublishCheckoutFailed(ctx context.Context, session, reason string) error {
	b.logger.InfoContext(ctx, "event::"+TopicCheckoutFailed,
		"cart_session", session,
		"reason", reason,
	)
	return nil
}
