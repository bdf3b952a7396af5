// Package pricing derives order totals from a cart snapshot and a pricing policy.
package pricing

import (
	"errors"

	"github.com/medicare/storefront/internal/cart/domain"
	"github.com/medicare/storefront/internal/money"
)

// Policy holds the externally supplied pricing configuration.
type Policy struct {
	TaxRate               float64
	FlatShippingFee       money.Money
	FreeShippingThreshold money.Money
}

// DefaultPolicy matches the storefront's published rates: 8% tax and a $5
// shipping fee waived from $100.
func DefaultPolicy() Policy {
	return Policy{
		TaxRate:               0.08,
		FlatShippingFee:       money.FromCents(500),
		FreeShippingThreshold: money.FromCents(10000),
	}
}

// Validate rejects negative policy values.
func (p Policy) Validate() error {
	if p.TaxRate < 0 {
		return errors.New("tax rate must not be negative")
	}
	if p.FlatShippingFee < 0 {
		return errors.New("shipping fee must not be negative")
	}
	if p.FreeShippingThreshold < 0 {
		return errors.New("free shipping threshold must not be negative")
	}
	return nil
}

// Result is the derived price breakdown. Total always equals
// Subtotal + Shipping + Tax.
type Result struct {
	Subtotal money.Money `json:"subtotal"`
	Shipping money.Money `json:"shipping"`
	Tax      money.Money `json:"tax"`
	Total    money.Money `json:"total"`
}

// Compute derives the full breakdown for items under policy.
func Compute(items []domain.LineItem, policy Policy) Result {
	subtotal := ComputeSubtotal(items)
	shipping := ComputeShipping(subtotal, policy)
	tax := ComputeTax(subtotal, policy)

	return Result{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    ComputeTotal(subtotal, shipping, tax),
	}
}

// ComputeSubtotal sums the per-line totals.
func ComputeSubtotal(items []domain.LineItem) money.Money {
	subtotal := money.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	return subtotal
}

// ComputeShipping charges the flat fee unless the cart is empty or the
// subtotal reaches the free-shipping threshold.
func ComputeShipping(subtotal money.Money, policy Policy) money.Money {
	if subtotal.IsZero() || subtotal >= policy.FreeShippingThreshold {
		return money.Zero
	}
	return policy.FlatShippingFee
}

// ComputeTax applies the policy tax rate to the subtotal.
func ComputeTax(subtotal money.Money, policy Policy) money.Money {
	return subtotal.MulRate(policy.TaxRate)
}

// ComputeTotal adds the three components.
func ComputeTotal(subtotal, shipping, tax money.Money) money.Money {
	return subtotal.Add(shipping, tax)
}
