//go:build integration

// Package postgrestest shares one migrated Postgres container across the
// integration tests of a package.
package postgrestest

import (
	"context"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/medicare/storefront/internal/database"
	"github.com/testcontainers/testcontainers-go"
	testpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	once    sync.Once
	connStr string
	initErr error
)

// NewPool returns a pool on the shared database with every storefront table
// emptied. The container itself is reaped when the test binary exits.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	once.Do(func() { connStr, initErr = start(ctx) })
	if initErr != nil {
		t.Fatalf("start postgres: %v", initErr)
	}

	pool, err := database.NewPool(ctx, connStr)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, "TRUNCATE cart_storage, checkout_idempotency"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
	return pool
}

func start(ctx context.Context) (string, error) {
	container, err := testpostgres.Run(ctx,
		"postgres:16-alpine",
		testpostgres.WithDatabase("storefront"),
		testpostgres.WithUsername("storefront"),
		testpostgres.WithPassword("storefront"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").WithOccurrence(2)),
	)
	if err != nil {
		return "", err
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return "", err
	}

	if _, err := database.RunMigrations(dsn, migrationsDir()); err != nil {
		return "", err
	}
	return dsn, nil
}

func migrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	// internal/database/postgrestest -> repository root
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")
}
