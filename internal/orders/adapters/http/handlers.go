package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/medicare/storefront/internal/cart/store"
	"github.com/medicare/storefront/internal/httpapi"
	"github.com/medicare/storefront/internal/orders/adapters/orderapi"
	"github.com/medicare/storefront/internal/orders/app"
	"github.com/medicare/storefront/internal/orders/ports"
)

// Carts resolves a session id to its cart store.
type Carts interface {
	Get(ctx context.Context, session string) (*store.Store, error)
}

// Handler exposes checkout and order history endpoints.
type Handler struct {
	service *app.Service
	carts   Carts
}

// NewHandler constructs a Handler.
func NewHandler(service *app.Service, carts Carts) *Handler {
	return &Handler{service: service, carts: carts}
}

// Register binds the order handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/checkout", h.checkout)
	mux.HandleFunc("GET /v1/orders", h.listOrders)
	mux.HandleFunc("GET /v1/orders/{id}", h.getOrder)
	mux.HandleFunc("PATCH /v1/admin/orders/{id}/status", h.updateStatus)
}

// withToken forwards the caller's bearer token to the order API.
func withToken(r *http.Request) context.Context {
	ctx := r.Context()
	if token := httpapi.BearerToken(r); token != "" {
		ctx = orderapi.WithBearerToken(ctx, token)
	}
	return ctx
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	ctx := withToken(r)
	idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idemKey == "" {
		httpapi.WriteError(w, http.StatusBadRequest, "Idempotency-Key header required")
		return
	}

	session, err := httpapi.Session(w, r, false)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}

	// keys are scoped to the session so two carts cannot collide
	scopedKey := session + ":" + idemKey

	if stored, err := h.service.GetIdempotentResponse(ctx, scopedKey); err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	} else if stored != nil {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Idempotent-Replayed", "true")
		w.WriteHeader(stored.StatusCode)
		_, _ = w.Write(stored.Body)
		return
	}

	var payload app.CheckoutInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	cart, err := h.carts.Get(ctx, session)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}

	result, err := h.service.Checkout(ctx, session, cart, payload)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}

	body, err := json.Marshal(map[string]any{
		"order": result.Order,
		"pricing": map[string]any{
			"subtotal": result.Request.Subtotal,
			"shipping": result.Request.ShippingFee,
			"tax":      result.Request.Tax,
			"total":    result.Request.Total,
		},
	})
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	stored := ports.StoredResponse{
		StatusCode: http.StatusCreated,
		Body:       body,
		OrderID:    result.Order.ID,
	}
	if err := h.service.SaveIdempotentResponse(ctx, scopedKey, stored); err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(body)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetOrder(withToken(r), r.PathValue("id"))
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(withToken(r), r.URL.Query().Get("status"))
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	order, err := h.service.UpdateOrderStatus(withToken(r), r.PathValue("id"), payload.Status)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"order": order})
}
