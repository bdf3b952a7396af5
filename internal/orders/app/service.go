package app

import (
	"context"
	"log/slog"

	cartdomain "github.com/medicare/storefront/internal/cart/domain"
	"github.com/medicare/storefront/internal/orders/app/commands"
	"github.com/medicare/storefront/internal/orders/app/queries"
	"github.com/medicare/storefront/internal/orders/assembler"
	"github.com/medicare/storefront/internal/orders/domain"
	"github.com/medicare/storefront/internal/orders/metrics"
	"github.com/medicare/storefront/internal/orders/ports"
	"github.com/medicare/storefront/internal/pricing"
)

// Service bundles the checkout and order history use cases.
type Service struct {
	assembler           *assembler.Assembler
	idemStore           ports.IdempotencyStore
	logger              *slog.Logger
	checkoutHandler     commands.CommandHandler
	updateStatusHandler *commands.UpdateStatusCommandHandler
	getOrderHandler     *queries.GetOrderQueryHandler
	listOrdersHandler   *queries.ListOrdersQueryHandler
}

// NewService wires required dependencies.
func NewService(
	api ports.OrderAPI,
	asm *assembler.Assembler,
	events ports.EventBus,
	idem ports.IdempotencyStore,
	logger *slog.Logger,
	metrics *metrics.Metrics,
) *Service {
	coreHandler := commands.NewCheckoutCommandHandler(api, asm, events)
	observableHandler := commands.NewObservableCommandHandler(coreHandler, logger, metrics)

	return &Service{
		assembler:           asm,
		idemStore:           idem,
		logger:              logger,
		checkoutHandler:     observableHandler,
		updateStatusHandler: commands.NewUpdateStatusCommandHandler(api),
		getOrderHandler:     queries.NewGetOrderQueryHandler(api),
		listOrdersHandler:   queries.NewListOrdersQueryHandler(api),
	}
}

// CheckoutInput captures the form data submitted with a checkout.
type CheckoutInput struct {
	Shipping domain.ShippingInfo `json:"shipping"`
	Payment  domain.PaymentInfo  `json:"payment"`
}

// Checkout places an order for the cart's current contents.
func (s *Service) Checkout(ctx context.Context, session string, cart commands.Cart, input CheckoutInput) (*commands.CheckoutResult, error) {
	result, err := s.checkoutHandler.Handle(ctx, commands.CheckoutCommand{
		Session:  session,
		Cart:     cart,
		Shipping: input.Shipping,
		Payment:  input.Payment,
	})
	if result != nil {
		// the order was placed; remaining errors were logged by the handler
		return result, nil
	}
	return nil, err
}

// Quote prices a cart snapshot with the configured policy.
func (s *Service) Quote(items []cartdomain.LineItem) pricing.Result {
	return pricing.Compute(items, s.assembler.Policy())
}

// GetOrder retrieves an order by ID.
func (s *Service) GetOrder(ctx context.Context, id string) (*domain.OrderDetail, error) {
	return s.getOrderHandler.Handle(ctx, queries.GetOrderQuery{OrderID: id})
}

// ListOrders returns order summaries, optionally filtered by status.
func (s *Service) ListOrders(ctx context.Context, status string) ([]domain.OrderSummary, error) {
	return s.listOrdersHandler.Handle(ctx, queries.ListOrdersQuery{Status: status})
}

// UpdateOrderStatus moves an order to a new lifecycle state.
func (s *Service) UpdateOrderStatus(ctx context.Context, id, status string) (*domain.OrderDetail, error) {
	order, err := s.updateStatusHandler.Handle(ctx, commands.UpdateStatusCommand{OrderID: id, Status: status})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "order status updated",
		"order_id", order.ID,
		"status", string(order.Status),
	)
	return order, nil
}

// SaveIdempotentResponse writes response details for a key.
func (s *Service) SaveIdempotentResponse(ctx context.Context, key string, response ports.StoredResponse) error {
	return s.idemStore.Save(ctx, key, response)
}

// GetIdempotentResponse retrieves previously stored response data.
func (s *Service) GetIdempotentResponse(ctx context.Context, key string) (*ports.StoredResponse, error) {
	return s.idemStore.Get(ctx, key)
}
