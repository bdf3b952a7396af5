package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	cartdomain "github.com/medicare/storefront/internal/cart/domain"
	"github.com/medicare/storefront/internal/orders/assembler"
	"github.com/medicare/storefront/internal/orders/domain"
	"github.com/medicare/storefront/internal/orders/ports"
)

// ErrEventNotPublished marks a checkout whose order was placed but whose
// completion event could not be published. The returned result is valid.
var ErrEventNotPublished = errors.New("checkout event not published")

// ErrOrderUnconfirmed marks a checkout the order API accepted with a 2xx
// whose body could not be decoded. The cart is cleared and the result holds
// a pending placeholder order built from the submitted request.
var ErrOrderUnconfirmed = errors.New("order accepted but response unreadable")

// Cart is the part of a cart store checkout needs.
type Cart interface {
	Snapshot() []cartdomain.LineItem
	Clear()
}

type CheckoutCommand struct {
	Session  string
	Cart     Cart
	Shipping domain.ShippingInfo
	Payment  domain.PaymentInfo
}

func (c CheckoutCommand) Validate() error {
	if strings.TrimSpace(c.Session) == "" {
		return errors.New("cart session is required")
	}
	if c.Cart == nil {
		return errors.New("cart is required")
	}
	return nil
}

// CheckoutResult is the placed order together with the request that was
// submitted for it.
type CheckoutResult struct {
	Order   *domain.OrderDetail
	Request domain.OrderRequest
}

type CommandHandler interface {
	Handle(ctx context.Context, cmd CheckoutCommand) (*CheckoutResult, error)
}

type CheckoutCommandHandler struct {
	api       ports.OrderAPI
	assembler *assembler.Assembler
	events    ports.EventBus
}

func NewCheckoutCommandHandler(
	api ports.OrderAPI,
	asm *assembler.Assembler,
	events ports.EventBus,
) *CheckoutCommandHandler {
	return &CheckoutCommandHandler{
		api:       api,
		assembler: asm,
		events:    events,
	}
}

// Handle submits the cart as it is at call time. The cart is cleared only
// after the order API accepted the order; on any failure it is left intact.
// A non-nil result means the order was placed, and err then only carries
// ErrOrderUnconfirmed or ErrEventNotPublished.
func (h *CheckoutCommandHandler) Handle(ctx context.Context, cmd CheckoutCommand) (*CheckoutResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	snapshot := cmd.Cart.Snapshot()

	req, err := h.assembler.ToOrderRequest(snapshot, cmd.Shipping, cmd.Payment)
	if err != nil {
		h.publishFailed(ctx, cmd.Session, err)
		return nil, err
	}

	var warnings []error

	order, err := h.api.CreateOrder(ctx, *req)
	if err != nil {
		var nerr *domain.NetworkError
		if !errors.As(err, &nerr) || !nerr.Accepted() {
			h.publishFailed(ctx, cmd.Session, err)
			return nil, fmt.Errorf("create order: %w", err)
		}
		// the order exists upstream, so a retry with the same cart would duplicate it
		order = pendingOrder(req)
		warnings = append(warnings, fmt.Errorf("%w: %w", ErrOrderUnconfirmed, err))
	}

	cmd.Cart.Clear()

	result := &CheckoutResult{Order: order, Request: *req}

	if err := h.events.PublishCheckoutCompleted(ctx, cmd.Session, order.ID); err != nil {
		warnings = append(warnings, fmt.Errorf("%w: %w", ErrEventNotPublished, err))
	}

	return result, errors.Join(warnings...)
}

func pendingOrder(req *domain.OrderRequest) *domain.OrderDetail {
	subtotal, fee, tax, total := req.Subtotal, req.ShippingFee, req.Tax, req.Total
	return &domain.OrderDetail{
		Status:      domain.StatusPending,
		Items:       req.Items,
		Subtotal:    &subtotal,
		ShippingFee: &fee,
		Tax:         &tax,
		Shipping:    req.Shipping,
		Payment:     req.Payment,
		Total:       &total,
	}
}

func (h *CheckoutCommandHandler) publishFailed(ctx context.Context, session string, cause error) {
	// the checkout error is what the caller needs to see
	_ = h.events.PublishCheckoutFailed(ctx, session, cause.Error())
}
