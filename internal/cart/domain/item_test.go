package domain_test

import (
	"testing"

	"github.com/medicare/storefront/internal/cart/domain"
	"github.com/medicare/storefront/internal/money"
)

func TestResolveID(t *testing.T) {
	tests := []struct {
		name    string
		product domain.Product
		wantID  string
		wantOK  bool
	}{
		{"primary id", domain.Product{ID: "p-1"}, "p-1", true},
		{"legacy id only", domain.Product{LegacyID: "64ab"}, "64ab", true},
		{"primary preferred over legacy", domain.Product{ID: "p-1", LegacyID: "64ab"}, "p-1", true},
		{"blank primary falls back", domain.Product{ID: "  ", LegacyID: "64ab"}, "64ab", true},
		{"no identity", domain.Product{Name: "Aspirin"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := domain.ResolveID(tt.product)
			if id != tt.wantID || ok != tt.wantOK {
				t.Errorf("ResolveID() = (%q, %v), want (%q, %v)", id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestNewLineItem(t *testing.T) {
	t.Run("missing price becomes zero", func(t *testing.T) {
		item, ok := domain.NewLineItem(domain.Product{ID: "p-1", Name: "Gauze"}, 2)
		if !ok {
			t.Fatal("expected line item")
		}
		if !item.UnitPrice.IsZero() {
			t.Errorf("expected zero price, got %s", item.UnitPrice)
		}
		if item.Quantity != 2 {
			t.Errorf("expected quantity 2, got %d", item.Quantity)
		}
	})

	t.Run("non-positive quantity clamps to one", func(t *testing.T) {
		price := money.FromFloat(3.5)
		item, _ := domain.NewLineItem(domain.Product{ID: "p-1", Price: &price}, 0)
		if item.Quantity != 1 {
			t.Errorf("expected quantity 1, got %d", item.Quantity)
		}
		if item.LineTotal() != price {
			t.Errorf("expected line total %s, got %s", price, item.LineTotal())
		}
	})

	t.Run("unresolvable identity", func(t *testing.T) {
		if _, ok := domain.NewLineItem(domain.Product{Name: "x"}, 1); ok {
			t.Error("expected no line item")
		}
	})
}
