package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/medicare/storefront/internal/cart/adapters/memory"
	cartdomain "github.com/medicare/storefront/internal/cart/domain"
	"github.com/medicare/storefront/internal/cart/store"
	"github.com/medicare/storefront/internal/events"
	"github.com/medicare/storefront/internal/httpapi"
	idemmemory "github.com/medicare/storefront/internal/idempotency/memory"
	"github.com/medicare/storefront/internal/money"
	ordershttp "github.com/medicare/storefront/internal/orders/adapters/http"
	"github.com/medicare/storefront/internal/orders/adapters/orderapi"
	"github.com/medicare/storefront/internal/orders/app"
	"github.com/medicare/storefront/internal/orders/assembler"
	"github.com/medicare/storefront/internal/orders/metrics"
	"github.com/medicare/storefront/internal/pricing"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// fakeBackend plays the external order API.
type fakeBackend struct {
	mu        sync.Mutex
	created   int
	lastAuth  string
	lastTotal float64
	status    string
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastAuth = r.Header.Get("Authorization")

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/orders":
		var body struct {
			Total float64 `json:"total"`
		}
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)
		b.created++
		b.lastTotal = body.Total
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"order":{"_id":"o1","orderId":"ORD20240301120000","status":"pending","total":46.9}}`))
	case r.Method == http.MethodGet && r.URL.Path == "/api/orders":
		_, _ = w.Write([]byte(`{"orders":[{"_id":"o1","status":"shipped","total":46.9,"shipping":{"fullName":"Ada"}}]}`))
	case r.Method == http.MethodGet && r.URL.Path == "/api/orders/o1":
		_, _ = w.Write([]byte(`{"_id":"o1","status":"shipped"}`))
	case r.Method == http.MethodPatch && r.URL.Path == "/api/admin/orders/o1/status":
		var body struct {
			Status string `json:"status"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.status = body.Status
		_, _ = w.Write([]byte(`{"_id":"o1","status":"` + body.Status + `"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Order not found"}`))
	}
}

type backendState struct {
	created   int
	lastAuth  string
	lastTotal float64
	status    string
}

func (b *fakeBackend) state() backendState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return backendState{created: b.created, lastAuth: b.lastAuth, lastTotal: b.lastTotal, status: b.status}
}

type fixture struct {
	t        *testing.T
	mux      *http.ServeMux
	backend  *fakeBackend
	registry *store.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	backend := &fakeBackend{}
	upstream := httptest.NewServer(backend)
	t.Cleanup(upstream.Close)

	m, err := metrics.NewMetrics(sdkmetric.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() failed: %v", err)
	}

	registry := store.NewRegistry(memory.NewStorage(), logger)
	t.Cleanup(func() { _ = registry.Close(context.Background()) })

	service := app.NewService(
		orderapi.NewClient(upstream.URL, 2*time.Second),
		assembler.New(pricing.DefaultPolicy()),
		events.NewLogEventBus(logger),
		idemmemory.NewStore(time.Hour),
		logger,
		m,
	)

	mux := http.NewServeMux()
	ordershttp.NewHandler(service, registry).Register(mux)
	return &fixture{t: t, mux: mux, backend: backend, registry: registry}
}

func (f *fixture) fillCart(session string) *store.Store {
	f.t.Helper()
	cart, err := f.registry.Get(context.Background(), session)
	if err != nil {
		f.t.Fatalf("failed to get cart: %v", err)
	}
	p1, p2 := money.FromFloat(4.75), money.FromFloat(9.90)
	cart.AddItem(cartdomain.Product{ID: "p1", Name: "Paracetamol", Price: &p1}, 4)
	cart.AddItem(cartdomain.Product{ID: "p2", Name: "Vitamin C", Price: &p2}, 2)
	return cart
}

func (f *fixture) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

const checkoutBody = `{
	"shipping": {"fullName":"Ada Lovelace","phone":"555-0100","address":"12 Analytical Way","city":"London","zipCode":"N1 9GU"},
	"payment": {"method":"cod"}
}`

func checkoutRequest(session, key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/v1/checkout", bytes.NewBufferString(body))
	req.Header.Set(httpapi.SessionHeader, session)
	req.Header.Set("Authorization", "Bearer tok")
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req
}

func TestCheckout(t *testing.T) {
	t.Run("places order, clears cart and replays duplicates", func(t *testing.T) {
		f := newFixture(t)
		session := uuid.NewString()
		cart := f.fillCart(session)

		rec := f.serve(checkoutRequest(session, "k1", checkoutBody))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp struct {
			Order struct {
				ID          string `json:"id"`
				OrderNumber string `json:"order_number"`
				Status      string `json:"status"`
			} `json:"order"`
			Pricing struct {
				Total float64 `json:"total"`
			} `json:"pricing"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid JSON response: %v", err)
		}
		if resp.Order.ID != "o1" || resp.Order.Status != "Pending" || resp.Pricing.Total != 46.9 {
			t.Errorf("unexpected response %+v", resp)
		}
		if st := f.backend.state(); st.lastTotal != 46.9 || st.lastAuth != "Bearer tok" {
			t.Errorf("unexpected upstream call total=%v auth=%q", st.lastTotal, st.lastAuth)
		}
		if cart.Len() != 0 {
			t.Errorf("expected cart cleared, got %d lines", cart.Len())
		}

		replay := f.serve(checkoutRequest(session, "k1", checkoutBody))
		if replay.Code != http.StatusCreated || replay.Header().Get("Idempotent-Replayed") != "true" {
			t.Errorf("expected replayed 201, got %d", replay.Code)
		}
		if replay.Body.String() != rec.Body.String() {
			t.Error("expected replay to return the original body")
		}
		if created := f.backend.state().created; created != 1 {
			t.Errorf("expected one upstream order, got %d", created)
		}
	})

	t.Run("rejects empty cart with line details", func(t *testing.T) {
		f := newFixture(t)

		rec := f.serve(checkoutRequest(uuid.NewString(), "k1", checkoutBody))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if f.backend.state().created != 0 {
			t.Error("expected no upstream call")
		}
	})

	tests := []struct {
		name       string
		session    string
		key        string
		body       string
		wantStatus int
	}{
		{name: "missing idempotency key", session: uuid.NewString(), body: checkoutBody, wantStatus: http.StatusBadRequest},
		{name: "missing session", key: "k1", body: checkoutBody, wantStatus: http.StatusBadRequest},
		{name: "invalid JSON", session: uuid.NewString(), key: "k1", body: "{", wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rec := f.serve(checkoutRequest(tt.session, tt.key, tt.body))
			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestOrderEndpoints(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{name: "list orders", method: http.MethodGet, path: "/v1/orders", wantStatus: http.StatusOK, wantBody: `"customer_name":"Ada"`},
		{name: "list orders by status", method: http.MethodGet, path: "/v1/orders?status=SHIPPED", wantStatus: http.StatusOK, wantBody: `"status":"Shipped"`},
		{name: "list orders unknown status", method: http.MethodGet, path: "/v1/orders?status=lost", wantStatus: http.StatusBadRequest},
		{name: "get order", method: http.MethodGet, path: "/v1/orders/o1", wantStatus: http.StatusOK, wantBody: `"status":"Shipped"`},
		{name: "get missing order", method: http.MethodGet, path: "/v1/orders/missing", wantStatus: http.StatusNotFound},
		{name: "update status", method: http.MethodPatch, path: "/v1/admin/orders/o1/status", body: `{"status":"Delivered"}`, wantStatus: http.StatusOK, wantBody: `"status":"Delivered"`},
		{name: "update to unknown status", method: http.MethodPatch, path: "/v1/admin/orders/o1/status", body: `{"status":"lost"}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			rec := f.serve(req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantBody != "" && !bytes.Contains(rec.Body.Bytes(), []byte(tt.wantBody)) {
				t.Errorf("expected body to contain %s, got %s", tt.wantBody, rec.Body.String())
			}
		})
	}

	if status := f.backend.state().status; status != "delivered" {
		t.Errorf("expected lower-case status sent upstream, got %q", status)
	}
}
