package assembler_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	cartdomain "github.com/medicare/storefront/internal/cart/domain"
	"github.com/medicare/storefront/internal/money"
	"github.com/medicare/storefront/internal/orders/assembler"
	"github.com/medicare/storefront/internal/orders/domain"
	"github.com/medicare/storefront/internal/pricing"
)

func validShipping() domain.ShippingInfo {
	return domain.ShippingInfo{
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		Phone:    "555-0100",
		Address:  "12 Analytical Way",
		City:     "London",
		ZipCode:  "N1 9GU",
	}
}

func snapshot() []cartdomain.LineItem {
	return []cartdomain.LineItem{
		{ProductID: "p1", Name: "Paracetamol", UnitPrice: money.FromFloat(4.75), Quantity: 4},
		{ProductID: "p2", Name: "Vitamin C", UnitPrice: money.FromFloat(9.90), Quantity: 2},
	}
}

func TestToOrderRequest(t *testing.T) {
	a := assembler.New(pricing.DefaultPolicy())

	t.Run("builds priced request", func(t *testing.T) {
		req, err := a.ToOrderRequest(snapshot(), validShipping(), domain.PaymentInfo{Method: " Card "})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		wantItems := []domain.OrderItem{
			{ProductID: "p1", Name: "Paracetamol", Price: money.FromCents(475), Quantity: 4, Subtotal: money.FromCents(1900)},
			{ProductID: "p2", Name: "Vitamin C", Price: money.FromCents(990), Quantity: 2, Subtotal: money.FromCents(1980)},
		}
		if diff := cmp.Diff(wantItems, req.Items); diff != "" {
			t.Errorf("items mismatch (-want +got):\n%s", diff)
		}
		if req.Subtotal.Cents() != 3880 || req.ShippingFee.Cents() != 500 || req.Tax.Cents() != 310 || req.Total.Cents() != 4690 {
			t.Errorf("unexpected totals %s/%s/%s/%s", req.Subtotal, req.ShippingFee, req.Tax, req.Total)
		}
		if req.Payment.Method != "card" {
			t.Errorf("expected normalized payment method, got %q", req.Payment.Method)
		}
	})

	t.Run("rejects invalid lines and lists them", func(t *testing.T) {
		items := snapshot()
		items[0].Quantity = 0
		items = append(items, cartdomain.LineItem{ProductID: "p3", Quantity: -2})

		_, err := a.ToOrderRequest(items, validShipping(), domain.PaymentInfo{Method: "cod"})

		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if diff := cmp.Diff([]string{"p1", "p3"}, verr.LineItems); diff != "" {
			t.Errorf("offending lines mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("rejects missing shipping fields and payment", func(t *testing.T) {
		shipping := validShipping()
		shipping.FullName = " "
		shipping.ZipCode = ""

		_, err := a.ToOrderRequest(snapshot(), shipping, domain.PaymentInfo{})

		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		want := []string{
			"shipping full name is required",
			"shipping zip code is required",
			"payment method is required",
		}
		if diff := cmp.Diff(want, verr.Problems); diff != "" {
			t.Errorf("problems mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("rejects empty cart", func(t *testing.T) {
		_, err := a.ToOrderRequest(nil, validShipping(), domain.PaymentInfo{Method: "cod"})
		var verr *domain.ValidationError
		if !errors.As(err, &verr) || verr.Problems[0] != "cart is empty" {
			t.Errorf("expected empty cart validation error, got %v", err)
		}
	})
}

func TestSummarize(t *testing.T) {
	total := money.FromCents(4690)
	detail := domain.OrderDetail{
		ID:          "665f",
		OrderNumber: "ORD20240101120000",
		Status:      "shipped",
		Shipping:    domain.ShippingInfo{FullName: "Ada Lovelace"},
		Items: []domain.OrderItem{
			{ProductID: "p1", Quantity: 4},
			{ProductID: "p2", Quantity: 2},
		},
		Total: &total,
	}

	got := assembler.Summarize(detail)
	want := domain.OrderSummary{
		ID:           "665f",
		OrderNumber:  "ORD20240101120000",
		CustomerName: "Ada Lovelace",
		Total:        &total,
		Status:       domain.StatusShipped,
		ItemCount:    6,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}
