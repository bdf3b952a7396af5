package ports

import (
	"context"

	"github.com/medicare/storefront/internal/orders/domain"
)

// OrderAPI is the external order service. Implementations return
// *domain.NetworkError for transport failures and non-2xx responses, and
// *domain.NotFoundError when a specific order does not exist.
type OrderAPI interface {
	CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.OrderDetail, error)
	ListOrders(ctx context.Context) ([]domain.OrderSummary, error)
	GetOrder(ctx context.Context, id string) (*domain.OrderDetail, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.OrderDetail, error)
}
