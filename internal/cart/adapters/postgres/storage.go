package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Storage struct {
	pool *pgxpool.Pool
}

func NewStorage(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	query := `
		SELECT value
		FROM cart_storage
		WHERE key = $1
	`

	var value string
	err := s.pool.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("select cart storage key: %w", err)
	}

	return value, true, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO cart_storage (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	if _, err := s.pool.Exec(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert cart storage key: %w", err)
	}

	return nil
}

func (s *Storage) Remove(ctx context.Context, key string) error {
	query := `DELETE FROM cart_storage WHERE key = $1`

	if _, err := s.pool.Exec(ctx, query, key); err != nil {
		return fmt.Errorf("delete cart storage key: %w", err)
	}

	return nil
}
