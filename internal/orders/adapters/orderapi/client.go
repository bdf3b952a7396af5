// Package orderapi is the HTTP client for the external order service.
package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/medicare/storefront/internal/orders/assembler"
	"github.com/medicare/storefront/internal/orders/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxErrorBody = 4 << 10

type tokenKey struct{}

// WithBearerToken returns a context whose order API calls carry token.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func bearerToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Client calls the order API over JSON/HTTP. It does not retry.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for baseURL whose requests time out after timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewClientWithHTTP(baseURL, &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
}

// NewClientWithHTTP returns a client that sends requests through hc.
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

// CreateOrder submits req and returns the created order.
func (c *Client) CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.OrderDetail, error) {
	body, err := c.do(ctx, "create order", http.MethodPost, "/api/orders", req)
	if err != nil {
		return nil, err
	}
	return decodeDetail("create order", body)
}

// ListOrders returns the caller's orders as summaries.
func (c *Client) ListOrders(ctx context.Context) ([]domain.OrderSummary, error) {
	body, err := c.do(ctx, "list orders", http.MethodGet, "/api/orders", nil)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, &domain.NetworkError{Op: "list orders", StatusCode: http.StatusOK, Err: fmt.Errorf("decode response: %w", err)}
	}

	var entries []any
	switch v := raw.(type) {
	case []any:
		entries = v
	case map[string]any:
		entries, _ = v["orders"].([]any)
	}

	summaries := make([]domain.OrderSummary, 0, len(entries))
	for _, entry := range entries {
		if m, ok := entry.(map[string]any); ok {
			summaries = append(summaries, assembler.Summarize(assembler.FromOrderResponse(m)))
		}
	}
	return summaries, nil
}

// GetOrder fetches one order.
func (c *Client) GetOrder(ctx context.Context, id string) (*domain.OrderDetail, error) {
	body, err := c.do(ctx, "get order", http.MethodGet, "/api/orders/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, notFound(err, id)
	}
	return decodeDetail("get order", body)
}

// UpdateOrderStatus changes an order's status through the admin endpoint.
func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.OrderDetail, error) {
	payload := map[string]string{"status": status.WireValue()}
	body, err := c.do(ctx, "update order status", http.MethodPatch, "/api/admin/orders/"+url.PathEscape(id)+"/status", payload)
	if err != nil {
		return nil, notFound(err, id)
	}
	return decodeDetail("update order status", body)
}

func (c *Client) do(ctx context.Context, op, method, path string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := bearerToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		limited, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.NetworkError{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(limited)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.NetworkError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	return body, nil
}

func decodeDetail(op string, body []byte) (*domain.OrderDetail, error) {
	detail, err := assembler.DecodeOrderResponse(body)
	if err != nil {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &domain.NetworkError{Op: op, StatusCode: http.StatusOK, Message: string(body), Err: err}
	}
	return &detail, nil
}

func notFound(err error, id string) error {
	var nerr *domain.NetworkError
	if errors.As(err, &nerr) && nerr.StatusCode == http.StatusNotFound {
		return &domain.NotFoundError{Resource: "order", ID: id}
	}
	return err
}

// errorMessage extracts {"error": "..."} or {"message": "..."} from an error body.
func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(body))
}
