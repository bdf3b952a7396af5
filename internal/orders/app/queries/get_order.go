package queries

import (
	"context"
	"errors"
	"strings"

	"github.com/medicare/storefront/internal/orders/domain"
	"github.com/medicare/storefront/internal/orders/ports"
)

// GetOrderQuery represents a request to retrieve an order by its ID.
type GetOrderQuery struct {
	OrderID string
}

// GetOrderQueryHandler executes GetOrderQuery against the order API.
type GetOrderQueryHandler struct {
	api ports.OrderAPI
}

// NewGetOrderQueryHandler constructs a GetOrderQueryHandler.
func NewGetOrderQueryHandler(api ports.OrderAPI) *GetOrderQueryHandler {
	return &GetOrderQueryHandler{api: api}
}

// Handle executes the query and retrieves the order.
func (h *GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (*domain.OrderDetail, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return h.api.GetOrder(ctx, strings.TrimSpace(query.OrderID))
}

// Validate ensures the query has valid parameters.
func (q GetOrderQuery) Validate() error {
	if strings.TrimSpace(q.OrderID) == "" {
		return errors.New("order_id is required")
	}
	return nil
}
