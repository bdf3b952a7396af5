package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/medicare/storefront/internal/orders/ports"
)

// Store persists checkout responses in the checkout_idempotency table.
type Store struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

// NewStore returns a store whose rows count as absent once older than ttl.
// A zero ttl keeps rows forever.
func NewStore(pool *pgxpool.Pool, ttl time.Duration) *Store {
	return &Store{pool: pool, ttl: ttl}
}

func (s *Store) Get(ctx context.Context, key string) (*ports.StoredResponse, error) {
	query := `
		SELECT status_code, body, order_id
		FROM checkout_idempotency
		WHERE key = $1
		  AND ($2::bigint = 0 OR created_at > now() - make_interval(secs => $2::bigint))
	`

	var resp ports.StoredResponse
	err := s.pool.QueryRow(ctx, query, key, int64(s.ttl.Seconds())).Scan(
		&resp.StatusCode,
		&resp.Body,
		&resp.OrderID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select checkout idempotency key: %w", err)
	}

	return &resp, nil
}

// Save stores the response unless a live row already holds the key. Expired
// rows are overwritten.
func (s *Store) Save(ctx context.Context, key string, response ports.StoredResponse) error {
	query := `
		INSERT INTO checkout_idempotency (key, status_code, body, order_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET status_code = EXCLUDED.status_code,
		    body        = EXCLUDED.body,
		    order_id    = EXCLUDED.order_id,
		    created_at  = now()
		WHERE $5::bigint > 0
		  AND checkout_idempotency.created_at <= now() - make_interval(secs => $5::bigint)
	`

	_, err := s.pool.Exec(ctx, query, key, response.StatusCode, response.Body, response.OrderID, int64(s.ttl.Seconds()))
	if err != nil {
		return fmt.Errorf("insert checkout idempotency key: %w", err)
	}

	return nil
}
