// Package httpapi holds what the storefront HTTP handlers share: JSON
// responses, error mapping, cart sessions and request metrics.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/medicare/storefront/internal/cart/store"
	"github.com/medicare/storefront/internal/orders/domain"
)

func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]any{"error": message})
}

// WriteDomainError maps err to a status code and writes it.
//
//	*domain.ValidationError        400 with problems and offending line items
//	domain.ErrNotFound             404
//	store.ErrInvalidSession        400
//	*domain.NetworkError           401/403 passed through, otherwise 502
//	anything else                  500
func WriteDomainError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		WriteJSON(w, http.StatusBadRequest, map[string]any{
			"error":      verr.Error(),
			"problems":   verr.Problems,
			"line_items": verr.LineItems,
		})
		return
	}

	if errors.Is(err, domain.ErrNotFound) {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	if errors.Is(err, store.ErrInvalidSession) {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var nerr *domain.NetworkError
	if errors.As(err, &nerr) {
		switch nerr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			WriteError(w, nerr.StatusCode, nerr.Error())
		default:
			WriteError(w, http.StatusBadGateway, nerr.Error())
		}
		return
	}

	WriteError(w, http.StatusInternalServerError, err.Error())
}
