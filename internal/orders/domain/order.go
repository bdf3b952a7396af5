package domain

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/medicare/storefront/internal/money"
)

// OrderStatus is the display form of an order's lifecycle state. Values are
// always produced by NormalizeStatus.
type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

var knownStatuses = []OrderStatus{
	StatusPending,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

// NormalizeStatus capitalizes a raw status: "pending", "PENDING" and "Pending"
// all become "Pending". A blank status is treated as pending.
func NormalizeStatus(raw string) OrderStatus {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return StatusPending
	}
	if s == "canceled" {
		s = "cancelled"
	}
	r, size := utf8.DecodeRuneInString(s)
	return OrderStatus(string(unicode.ToUpper(r)) + s[size:])
}

// ParseStatus normalizes raw and reports whether it names a known status.
func ParseStatus(raw string) (OrderStatus, bool) {
	status := NormalizeStatus(raw)
	for _, known := range knownStatuses {
		if status == known {
			return status, strings.TrimSpace(raw) != ""
		}
	}
	return status, false
}

// WireValue is the lower-case form the order API accepts.
func (s OrderStatus) WireValue() string {
	return strings.ToLower(string(s))
}

// IsTerminal indicates whether no further status changes are expected.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// ShippingInfo is the delivery address captured at checkout.
type ShippingInfo struct {
	FullName string `json:"fullName"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state,omitempty"`
	ZipCode  string `json:"zipCode"`
	Country  string `json:"country,omitempty"`
	Note     string `json:"note,omitempty"`
}

// PaymentInfo names the payment method chosen at checkout ("card" or "cod").
type PaymentInfo struct {
	Method string `json:"method"`
	Status string `json:"status,omitempty"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	ProductID string      `json:"productId"`
	Name      string      `json:"name"`
	Image     string      `json:"image,omitempty"`
	Price     money.Money `json:"price"`
	Quantity  int         `json:"quantity"`
	Subtotal  money.Money `json:"subtotal"`
}

// OrderRequest is the payload sent to create an order.
type OrderRequest struct {
	Items       []OrderItem  `json:"items"`
	Shipping    ShippingInfo `json:"shipping"`
	Payment     PaymentInfo  `json:"payment"`
	Subtotal    money.Money  `json:"subtotal"`
	ShippingFee money.Money  `json:"shippingFee"`
	Tax         money.Money  `json:"tax"`
	Total       money.Money  `json:"total"`
}

// ActivityType classifies an activity log entry.
type ActivityType string

const (
	ActivityStatusChange ActivityType = "status_change"
	ActivityFieldUpdate  ActivityType = "field_update"
)

// ActivityLogEntry records one change to an order. Entries are append-only.
type ActivityLogEntry struct {
	At      *time.Time   `json:"at"`
	Type    ActivityType `json:"type"`
	Field   string       `json:"field,omitempty"`
	From    string       `json:"from,omitempty"`
	To      string       `json:"to,omitempty"`
	Actor   string       `json:"actor,omitempty"`
	Message string       `json:"message,omitempty"`
}

// OrderDetail is the normalized view of an order returned by the order API.
// Fields the server omitted are empty strings or nil.
type OrderDetail struct {
	ID           string             `json:"id"`
	OrderNumber  string             `json:"order_number"`
	CustomerName string             `json:"customer_name"`
	Status       OrderStatus        `json:"status"`
	Items        []OrderItem        `json:"items"`
	Shipping     ShippingInfo       `json:"shipping"`
	Payment      PaymentInfo        `json:"payment"`
	Subtotal     *money.Money       `json:"subtotal"`
	ShippingFee  *money.Money       `json:"shipping_fee"`
	Tax          *money.Money       `json:"tax"`
	Total        *money.Money       `json:"total"`
	Activity     []ActivityLogEntry `json:"activity"`
	CreatedAt    *time.Time         `json:"created_at"`
	UpdatedAt    *time.Time         `json:"updated_at"`
}

// OrderSummary is the compact projection used by order lists.
type OrderSummary struct {
	ID           string       `json:"id"`
	OrderNumber  string       `json:"order_number"`
	CustomerName string       `json:"customer_name"`
	Total        *money.Money `json:"total"`
	Status       OrderStatus  `json:"status"`
	ItemCount    int          `json:"item_count"`
	CreatedAt    *time.Time   `json:"created_at"`
	UpdatedAt    *time.Time   `json:"updated_at"`
}
