package domain

import (
	"strings"

	"github.com/medicare/storefront/internal/money"
)

// Product is the catalogue shape accepted when adding to a cart. Catalogue
// records carry their identity in either ID or the legacy LegacyID field, and
// may omit the price.
type Product struct {
	ID          string       `json:"id,omitempty"`
	LegacyID    string       `json:"_id,omitempty"`
	Name        string       `json:"name"`
	Price       *money.Money `json:"price,omitempty"`
	Image       string       `json:"image,omitempty"`
	Description string       `json:"description,omitempty"`
}

// LineItem is one product entry in a cart.
type LineItem struct {
	ProductID   string      `json:"productId"`
	Name        string      `json:"name"`
	UnitPrice   money.Money `json:"price"`
	Quantity    int         `json:"quantity"`
	Image       string      `json:"image,omitempty"`
	Description string      `json:"description,omitempty"`
}

// LineTotal returns the unit price multiplied by the quantity.
func (l LineItem) LineTotal() money.Money {
	return money.Multiply(l.UnitPrice, l.Quantity)
}

// ResolveID returns the product identity, preferring ID over LegacyID. The
// second result is false when neither field carries a value.
func ResolveID(p Product) (string, bool) {
	if id := strings.TrimSpace(p.ID); id != "" {
		return id, true
	}
	if id := strings.TrimSpace(p.LegacyID); id != "" {
		return id, true
	}
	return "", false
}

// NewLineItem normalizes a product into a line item with the given quantity.
// Quantities below one are raised to one.
func NewLineItem(p Product, quantity int) (LineItem, bool) {
	id, ok := ResolveID(p)
	if !ok {
		return LineItem{}, false
	}

	item := LineItem{
		ProductID:   id,
		Name:        p.Name,
		Quantity:    ClampQuantity(quantity),
		Image:       p.Image,
		Description: p.Description,
	}
	if p.Price != nil {
		item.UnitPrice = *p.Price
	}
	return item, true
}

// ClampQuantity floors a requested quantity at one.
func ClampQuantity(quantity int) int {
	if quantity < 1 {
		return 1
	}
	return quantity
}
