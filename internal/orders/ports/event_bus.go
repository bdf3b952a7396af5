package ports

import "context"

// EventBus defines the contract for publishing checkout lifecycle events.
type EventBus interface {
	PublishCheckoutCompleted(ctx context.Context, session, orderID string) error
	PublishCheckoutFailed(ctx context.Context, session, reason string) error
}
