package assembler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/medicare/storefront/internal/money"
	"github.com/medicare/storefront/internal/orders/domain"
)

// DecodeOrderResponse parses a raw order API body and normalizes it.
func DecodeOrderResponse(data []byte) (domain.OrderDetail, error) {
	raw, err := decodeObject(data)
	if err != nil {
		return domain.OrderDetail{}, err
	}
	return FromOrderResponse(raw), nil
}

func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}
	return raw, nil
}

// FromOrderResponse maps the field spellings used by the order API, such as
// fullName or full_name and zip or zipCode, into one OrderDetail. A response
// wrapped as {"order": {...}} is unwrapped. Missing values never cause an
// error.
func FromOrderResponse(raw map[string]any) domain.OrderDetail {
	if inner, ok := raw["order"].(map[string]any); ok {
		raw = inner
	}

	shipping := object(raw, "shipping", "shippingAddress", "shipping_address")
	detail := domain.OrderDetail{
		ID:          str(raw, "id", "_id"),
		OrderNumber: str(raw, "order_id", "orderId", "orderNumber", "order_number"),
		Status:      domain.NormalizeStatus(str(raw, "status")),
		Shipping:    normalizeShipping(shipping),
		Payment:     normalizePayment(object(raw, "payment")),
		Subtotal:    amount(raw, "subtotal"),
		ShippingFee: amount(raw, "shipping_fee", "shippingFee"),
		Tax:         amount(raw, "tax"),
		Total:       amount(raw, "total"),
		CreatedAt:   timestamp(raw, "created_at", "createdAt"),
		UpdatedAt:   timestamp(raw, "updated_at", "updatedAt"),
	}

	detail.CustomerName = str(raw, "customer_name", "customerName")
	if detail.CustomerName == "" {
		detail.CustomerName = str(object(raw, "user", "customer"), "name", "fullName", "full_name")
	}

	for _, item := range list(raw, "items") {
		if m, ok := item.(map[string]any); ok {
			detail.Items = append(detail.Items, normalizeItem(m))
		}
	}

	detail.Activity = normalizeActivity(list(raw, "activity", "activityLog", "activity_log"))
	return detail
}

func normalizeItem(m map[string]any) domain.OrderItem {
	price := valueOr(amount(m, "price"))
	quantity := integer(m, "quantity", "qty")

	subtotal := amount(m, "subtotal")
	if subtotal == nil {
		line := money.Multiply(price, quantity)
		subtotal = &line
	}

	return domain.OrderItem{
		ProductID: str(m, "productId", "product_id", "id", "_id"),
		Name:      str(m, "name"),
		Image:     str(m, "image", "thumbnail"),
		Price:     price,
		Quantity:  quantity,
		Subtotal:  *subtotal,
	}
}

func normalizeShipping(m map[string]any) domain.ShippingInfo {
	return domain.ShippingInfo{
		FullName: str(m, "full_name", "fullName", "recipient", "name"),
		Email:    str(m, "email"),
		Phone:    str(m, "phone"),
		Address:  str(m, "address", "street"),
		City:     str(m, "city"),
		State:    str(m, "state"),
		ZipCode:  str(m, "zip", "zipCode", "zip_code", "postalCode"),
		Country:  str(m, "country"),
		Note:     str(m, "note", "notes"),
	}
}

// normalizePayment upper-cases short method codes such as "cod" or "card"
// and title-cases longer names.
func normalizePayment(m map[string]any) domain.PaymentInfo {
	method := str(m, "method", "type")
	if method != "" {
		if len(method) <= 4 {
			method = strings.ToUpper(method)
		} else {
			method = titleCase(method)
		}
	}

	status := str(m, "status")
	if status != "" {
		status = titleCase(status)
	}
	return domain.PaymentInfo{Method: method, Status: status}
}

func normalizeActivity(entries []any) []domain.ActivityLogEntry {
	out := make([]domain.ActivityLogEntry, 0, len(entries))
	for _, e := range entries {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}

		entry := domain.ActivityLogEntry{
			At:      timestamp(m, "at", "timestamp", "created_at", "createdAt", "date"),
			Field:   str(m, "field"),
			From:    str(m, "from", "old", "previous"),
			To:      str(m, "to", "new", "value"),
			Actor:   str(m, "actor", "by", "user"),
			Message: str(m, "message", "note", "description"),
		}

		kind := strings.ToLower(str(m, "type", "kind", "action"))
		if strings.Contains(kind, "status") || strings.EqualFold(entry.Field, "status") {
			entry.Type = domain.ActivityStatusChange
			entry.Field = "status"
			if entry.From != "" {
				entry.From = string(domain.NormalizeStatus(entry.From))
			}
			if entry.To != "" {
				entry.To = string(domain.NormalizeStatus(entry.To))
			}
		} else {
			entry.Type = domain.ActivityFieldUpdate
		}
		out = append(out, entry)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].At, out[j].At
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	return out
}

func object(m map[string]any, keys ...string) map[string]any {
	for _, key := range keys {
		if v, ok := m[key].(map[string]any); ok {
			return v
		}
	}
	return nil
}

func list(m map[string]any, keys ...string) []any {
	for _, key := range keys {
		if v, ok := m[key].([]any); ok {
			return v
		}
	}
	return nil
}

// str returns the first non-empty value among keys rendered as text.
func str(m map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := m[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case json.Number:
			return v.String()
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(v)
		case map[string]any:
			// Mongo extended JSON: {"$oid": "..."}
			if oid, ok := v["$oid"].(string); ok && oid != "" {
				return oid
			}
		}
	}
	return ""
}

func amount(m map[string]any, keys ...string) *money.Money {
	for _, key := range keys {
		var (
			parsed money.Money
			err    error
		)
		switch v := m[key].(type) {
		case json.Number:
			parsed, err = money.Parse(v.String())
		case float64:
			parsed = money.FromFloat(v)
		case int:
			parsed = money.FromCents(int64(v) * 100)
		case string:
			if strings.TrimSpace(v) == "" {
				continue
			}
			parsed, err = money.Parse(strings.TrimSpace(v))
		default:
			continue
		}
		if err == nil {
			return &parsed
		}
	}
	return nil
}

func integer(m map[string]any, keys ...string) int {
	for _, key := range keys {
		switch v := m[key].(type) {
		case json.Number:
			if n, err := v.Int64(); err == nil {
				return int(n)
			}
			if f, err := v.Float64(); err == nil {
				return int(f)
			}
		case float64:
			return int(v)
		case int:
			return v
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return n
			}
		}
	}
	return 0
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC1123,
	time.RFC1123Z,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02",
}

func timestamp(m map[string]any, keys ...string) *time.Time {
	for _, key := range keys {
		var s string
		switch v := m[key].(type) {
		case string:
			s = strings.TrimSpace(v)
		case map[string]any:
			s, _ = v["$date"].(string)
		}
		if s == "" {
			continue
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				utc := t.UTC()
				return &utc
			}
		}
	}
	return nil
}

func valueOr(m *money.Money) money.Money {
	if m == nil {
		return money.Zero
	}
	return *m
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(strings.ReplaceAll(s, "_", " ")))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

