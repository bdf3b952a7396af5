package assembler_test

import (
	"testing"
	"time"

	"github.com/medicare/storefront/internal/money"
	"github.com/medicare/storefront/internal/orders/assembler"
	"github.com/medicare/storefront/internal/orders/domain"
)

const snakeCaseFixture = `{
	"id": "665f1c",
	"order_id": "ORD20240101120000",
	"status": "PENDING",
	"created_at": "2024-01-01T12:00:00Z",
	"updated_at": "Mon, 01 Jan 2024 13:30:00 GMT",
	"items": [
		{"product_id": "p1", "name": "Paracetamol", "price": 4.75, "quantity": 4, "subtotal": 19.0},
		{"id": "p2", "name": "Vitamin C", "price": "9.90", "quantity": "2", "thumbnail": "c.png"}
	],
	"shipping": {"full_name": "Ada Lovelace", "zip": "N1 9GU", "city": "London", "notes": "ring twice"},
	"payment": {"method": "cod", "status": "awaiting_payment"},
	"subtotal": 38.8,
	"shipping_fee": 5,
	"tax": 3.1,
	"total": 46.9,
	"activity": [
		{"at": "2024-01-01T13:00:00Z", "type": "status_change", "from": "pending", "to": "PROCESSING", "actor": "admin"},
		{"at": "2024-01-01T12:05:00Z", "type": "update", "field": "shipping.phone", "from": "1", "to": "2"},
		{"type": "note", "message": "undated"}
	]
}`

const camelCaseFixture = `{
	"order": {
		"_id": {"$oid": "665f1d"},
		"orderId": "ORD20240102090000",
		"status": "Pending",
		"createdAt": "2024-01-02T09:00:00.123456",
		"shipping": {"fullName": "Grace Hopper", "zipCode": "20500", "phone": "555-0199"},
		"payment": {"type": "paypal"},
		"shippingFee": 0,
		"total": 120.5
	}
}`

func TestDecodeOrderResponse(t *testing.T) {
	t.Run("snake case fields", func(t *testing.T) {
		detail, err := assembler.DecodeOrderResponse([]byte(snakeCaseFixture))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}

		if detail.ID != "665f1c" || detail.OrderNumber != "ORD20240101120000" {
			t.Errorf("unexpected ids %q/%q", detail.ID, detail.OrderNumber)
		}
		if detail.Status != domain.StatusPending {
			t.Errorf("expected Pending, got %q", detail.Status)
		}
		if detail.Shipping.FullName != "Ada Lovelace" || detail.Shipping.ZipCode != "N1 9GU" || detail.Shipping.Note != "ring twice" {
			t.Errorf("unexpected shipping %+v", detail.Shipping)
		}
		if detail.Payment.Method != "COD" || detail.Payment.Status != "Awaiting Payment" {
			t.Errorf("unexpected payment %+v", detail.Payment)
		}
		if detail.Total == nil || detail.Total.Cents() != 4690 {
			t.Errorf("unexpected total %v", detail.Total)
		}
		if detail.ShippingFee == nil || detail.ShippingFee.Cents() != 500 {
			t.Errorf("unexpected shipping fee %v", detail.ShippingFee)
		}

		if len(detail.Items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(detail.Items))
		}
		second := detail.Items[1]
		if second.ProductID != "p2" || second.Quantity != 2 || second.Image != "c.png" {
			t.Errorf("unexpected second item %+v", second)
		}
		if second.Subtotal != money.FromCents(1980) {
			t.Errorf("expected derived subtotal 19.80, got %s", second.Subtotal)
		}

		wantUpdated := time.Date(2024, 1, 1, 13, 30, 0, 0, time.UTC)
		if detail.UpdatedAt == nil || !detail.UpdatedAt.Equal(wantUpdated) {
			t.Errorf("unexpected updated_at %v", detail.UpdatedAt)
		}
	})

	t.Run("activity is ordered by time ascending", func(t *testing.T) {
		detail, err := assembler.DecodeOrderResponse([]byte(snakeCaseFixture))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}

		if len(detail.Activity) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(detail.Activity))
		}
		first, second, last := detail.Activity[0], detail.Activity[1], detail.Activity[2]
		if first.Type != domain.ActivityFieldUpdate || first.Field != "shipping.phone" {
			t.Errorf("unexpected first entry %+v", first)
		}
		if second.Type != domain.ActivityStatusChange || second.From != "Pending" || second.To != "Processing" {
			t.Errorf("unexpected status entry %+v", second)
		}
		if last.At != nil || last.Message != "undated" {
			t.Errorf("expected undated entry last, got %+v", last)
		}
	})

	t.Run("camel case wrapped response", func(t *testing.T) {
		detail, err := assembler.DecodeOrderResponse([]byte(camelCaseFixture))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}

		if detail.ID != "665f1d" || detail.OrderNumber != "ORD20240102090000" {
			t.Errorf("unexpected ids %q/%q", detail.ID, detail.OrderNumber)
		}
		if detail.Shipping.FullName != "Grace Hopper" || detail.Shipping.ZipCode != "20500" {
			t.Errorf("unexpected shipping %+v", detail.Shipping)
		}
		if detail.Payment.Method != "Paypal" {
			t.Errorf("unexpected payment method %q", detail.Payment.Method)
		}
		if detail.ShippingFee == nil || !detail.ShippingFee.IsZero() {
			t.Errorf("expected explicit zero shipping fee, got %v", detail.ShippingFee)
		}
		if detail.CreatedAt == nil {
			t.Error("expected created_at to parse")
		}
	})

	t.Run("missing fields become empty values", func(t *testing.T) {
		detail, err := assembler.DecodeOrderResponse([]byte(`{}`))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if detail.Total != nil || detail.Subtotal != nil || detail.CreatedAt != nil {
			t.Errorf("expected nil amounts and timestamps, got %+v", detail)
		}
		if detail.Shipping != (domain.ShippingInfo{}) {
			t.Errorf("expected empty shipping, got %+v", detail.Shipping)
		}
		if detail.Status != domain.StatusPending {
			t.Errorf("expected Pending default, got %q", detail.Status)
		}
	})

	t.Run("invalid json is an error", func(t *testing.T) {
		if _, err := assembler.DecodeOrderResponse([]byte(`{`)); err == nil {
			t.Error("expected error")
		}
	})
}

func TestSummaryStatusIsAlwaysCapitalized(t *testing.T) {
	for _, raw := range []string{"pending", "PENDING", "Pending"} {
		detail := assembler.FromOrderResponse(map[string]any{"status": raw})
		if got := assembler.Summarize(detail).Status; got != "Pending" {
			t.Errorf("status %q summarized as %q, want Pending", raw, got)
		}
	}
}
