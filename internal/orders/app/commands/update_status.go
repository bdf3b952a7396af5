package commands

import (
	"context"
	"strings"

	"github.com/medicare/storefront/internal/orders/domain"
	"github.com/medicare/storefront/internal/orders/ports"
)

type UpdateStatusCommand struct {
	OrderID string
	Status  string
}

// Validate checks the order id and that the status is one of the known
// lifecycle states, in any letter case.
func (c UpdateStatusCommand) Validate() (domain.OrderStatus, error) {
	verr := &domain.ValidationError{}
	if strings.TrimSpace(c.OrderID) == "" {
		verr.Add("order id is required")
	}
	status, ok := domain.ParseStatus(c.Status)
	if !ok {
		verr.Add("status %q is not one of pending, processing, shipped, delivered, cancelled", c.Status)
	}
	return status, verr.OrNil()
}

type UpdateStatusCommandHandler struct {
	api ports.OrderAPI
}

func NewUpdateStatusCommandHandler(api ports.OrderAPI) *UpdateStatusCommandHandler {
	return &UpdateStatusCommandHandler{api: api}
}

func (h *UpdateStatusCommandHandler) Handle(ctx context.Context, cmd UpdateStatusCommand) (*domain.OrderDetail, error) {
	status, err := cmd.Validate()
	if err != nil {
		return nil, err
	}
	return h.api.UpdateOrderStatus(ctx, strings.TrimSpace(cmd.OrderID), status)
}
