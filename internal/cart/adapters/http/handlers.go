package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/medicare/storefront/internal/cart/domain"
	"github.com/medicare/storefront/internal/cart/store"
	"github.com/medicare/storefront/internal/httpapi"
	"github.com/medicare/storefront/internal/pricing"
)

// Carts resolves a session id to its cart store. Peek reads a cart without
// registering a store for it.
type Carts interface {
	Get(ctx context.Context, session string) (*store.Store, error)
	Peek(ctx context.Context, session string) ([]domain.LineItem, error)
}

// Handler exposes the cart of the calling session.
type Handler struct {
	carts  Carts
	policy pricing.Policy
}

func NewHandler(carts Carts, policy pricing.Policy) *Handler {
	return &Handler{carts: carts, policy: policy}
}

// Register binds the cart handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/cart", h.getCart)
	mux.HandleFunc("DELETE /v1/cart", h.clearCart)
	mux.HandleFunc("POST /v1/cart/items", h.addItem)
	mux.HandleFunc("PATCH /v1/cart/items/{id}", h.updateItem)
	mux.HandleFunc("DELETE /v1/cart/items/{id}", h.removeItem)
}

type cartView struct {
	Session string            `json:"session"`
	Items   []domain.LineItem `json:"items"`
	Pricing pricing.Result    `json:"pricing"`
}

type addItemRequest struct {
	Product  domain.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	session, err := httpapi.Session(w, r, true)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}

	items, err := h.carts.Peek(r.Context(), session)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}
	h.writeCart(w, session, items)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	h.withCart(w, r, func(s *store.Store) int {
		s.Clear()
		return http.StatusOK
	})
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var payload addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if _, ok := domain.ResolveID(payload.Product); !ok {
		httpapi.WriteError(w, http.StatusBadRequest, "product id is required")
		return
	}

	h.withCart(w, r, func(s *store.Store) int {
		s.AddItem(payload.Product, payload.Quantity)
		return http.StatusOK
	})
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))

	var payload updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Quantity == nil {
		httpapi.WriteError(w, http.StatusBadRequest, "quantity is required")
		return
	}

	h.withCart(w, r, func(s *store.Store) int {
		if !s.Contains(id) {
			return http.StatusNotFound
		}
		s.UpdateQuantity(id, *payload.Quantity)
		return http.StatusOK
	})
}

// removeItem is idempotent: removing a line that is already gone is not an
// error.
func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	h.withCart(w, r, func(s *store.Store) int {
		s.RemoveItem(id)
		return http.StatusOK
	})
}

// withCart resolves the session's cart, applies fn and writes the resulting
// cart. fn returns the status to answer with; anything but 200 is written as
// an error without a cart body.
func (h *Handler) withCart(w http.ResponseWriter, r *http.Request, fn func(*store.Store) int) {
	session, err := httpapi.Session(w, r, true)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}

	cart, err := h.carts.Get(r.Context(), session)
	if err != nil {
		httpapi.WriteDomainError(w, err)
		return
	}

	if status := fn(cart); status != http.StatusOK {
		httpapi.WriteError(w, status, http.StatusText(status))
		return
	}

	h.writeCart(w, session, cart.Snapshot())
}

func (h *Handler) writeCart(w http.ResponseWriter, session string, items []domain.LineItem) {
	if items == nil {
		items = []domain.LineItem{}
	}
	httpapi.WriteJSON(w, http.StatusOK, cartView{
		Session: session,
		Items:   items,
		Pricing: pricing.Compute(items, h.policy),
	})
}
