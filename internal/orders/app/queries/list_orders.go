package queries

import (
	"context"
	"sort"

	"github.com/medicare/storefront/internal/orders/domain"
	"github.com/medicare/storefront/internal/orders/ports"
)

// ListOrdersQuery optionally narrows the order history to one status.
type ListOrdersQuery struct {
	Status string
}

// ListOrdersQueryHandler returns order summaries, newest first.
type ListOrdersQueryHandler struct {
	api ports.OrderAPI
}

func NewListOrdersQueryHandler(api ports.OrderAPI) *ListOrdersQueryHandler {
	return &ListOrdersQueryHandler{api: api}
}

func (h *ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) ([]domain.OrderSummary, error) {
	var filter *domain.OrderStatus
	if query.Status != "" {
		status, ok := domain.ParseStatus(query.Status)
		if !ok {
			verr := &domain.ValidationError{}
			verr.Add("status %q is not a known order status", query.Status)
			return nil, verr
		}
		filter = &status
	}

	orders, err := h.api.ListOrders(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.OrderSummary, 0, len(orders))
	for _, o := range orders {
		if filter != nil && o.Status != *filter {
			continue
		}
		result = append(result, o)
	}

	// orders without a creation time sort last
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i].CreatedAt, result[j].CreatedAt
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return a.After(*b)
	})

	return result, nil
}
