// Package assembler converts cart snapshots into order API requests and
// normalizes order API responses for display.
package assembler

import (
	"fmt"
	"strings"

	cartdomain "github.com/medicare/storefront/internal/cart/domain"
	"github.com/medicare/storefront/internal/orders/domain"
	"github.com/medicare/storefront/internal/pricing"
)

// Assembler builds order requests priced under a fixed policy.
type Assembler struct {
	policy pricing.Policy
}

// New returns an Assembler for policy.
func New(policy pricing.Policy) *Assembler {
	return &Assembler{policy: policy}
}

// Policy returns the pricing policy requests are priced with.
func (a *Assembler) Policy() pricing.Policy {
	return a.policy
}

// ToOrderRequest builds the create-order payload for snapshot. It returns a
// *domain.ValidationError naming every offending line and missing field
// rather than producing a request the order record could not trust.
func (a *Assembler) ToOrderRequest(snapshot []cartdomain.LineItem, shipping domain.ShippingInfo, payment domain.PaymentInfo) (*domain.OrderRequest, error) {
	verr := &domain.ValidationError{}

	if len(snapshot) == 0 {
		verr.Add("cart is empty")
	}

	items := make([]domain.OrderItem, 0, len(snapshot))
	for i, line := range snapshot {
		if strings.TrimSpace(line.ProductID) == "" {
			verr.AddLine(fmt.Sprintf("#%d", i+1), "line %d has no product id", i+1)
			continue
		}
		if line.Quantity < 1 {
			verr.AddLine(line.ProductID, "quantity for %s must be at least 1, got %d", line.ProductID, line.Quantity)
			continue
		}
		items = append(items, domain.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Image:     line.Image,
			Price:     line.UnitPrice,
			Quantity:  line.Quantity,
			Subtotal:  line.LineTotal(),
		})
	}

	validateShipping(verr, shipping)
	if strings.TrimSpace(payment.Method) == "" {
		verr.Add("payment method is required")
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	totals := pricing.Compute(snapshot, a.policy)
	return &domain.OrderRequest{
		Items:       items,
		Shipping:    trimShipping(shipping),
		Payment:     domain.PaymentInfo{Method: strings.ToLower(strings.TrimSpace(payment.Method))},
		Subtotal:    totals.Subtotal,
		ShippingFee: totals.Shipping,
		Tax:         totals.Tax,
		Total:       totals.Total,
	}, nil
}

func validateShipping(verr *domain.ValidationError, s domain.ShippingInfo) {
	required := []struct {
		name  string
		value string
	}{
		{"full name", s.FullName},
		{"phone", s.Phone},
		{"address", s.Address},
		{"city", s.City},
		{"zip code", s.ZipCode},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			verr.Add("shipping %s is required", field.name)
		}
	}
}

func trimShipping(s domain.ShippingInfo) domain.ShippingInfo {
	return domain.ShippingInfo{
		FullName: strings.TrimSpace(s.FullName),
		Email:    strings.TrimSpace(s.Email),
		Phone:    strings.TrimSpace(s.Phone),
		Address:  strings.TrimSpace(s.Address),
		City:     strings.TrimSpace(s.City),
		State:    strings.TrimSpace(s.State),
		ZipCode:  strings.TrimSpace(s.ZipCode),
		Country:  strings.TrimSpace(s.Country),
		Note:     strings.TrimSpace(s.Note),
	}
}

// Summarize projects an order into its list-view summary.
func Summarize(order domain.OrderDetail) domain.OrderSummary {
	customer := order.CustomerName
	if customer == "" {
		customer = order.Shipping.FullName
	}

	count := 0
	for _, item := range order.Items {
		count += item.Quantity
	}

	return domain.OrderSummary{
		ID:           order.ID,
		OrderNumber:  order.OrderNumber,
		CustomerName: customer,
		Total:        order.Total,
		Status:       domain.NormalizeStatus(string(order.Status)),
		ItemCount:    count,
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
	}
}
