package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/medicare/storefront/internal/cart/store"
)

// SessionHeader carries the cart session id in both directions.
const SessionHeader = "X-Cart-Session"

// Session returns the request's cart session. When the request has none and
// mint is set, a new id is generated. The id is echoed in the response
// header either way.
func Session(w http.ResponseWriter, r *http.Request, mint bool) (string, error) {
	raw := strings.TrimSpace(r.Header.Get(SessionHeader))
	if raw == "" {
		if !mint {
			return "", fmt.Errorf("%w: %s header required", store.ErrInvalidSession, SessionHeader)
		}
		raw = uuid.NewString()
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", store.ErrInvalidSession, err)
	}

	session := id.String()
	w.Header().Set(SessionHeader, session)
	return session, nil
}
