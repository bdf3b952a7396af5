package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	cartadapters "github.com/medicare/storefront/internal/cart/adapters"
	carthttp "github.com/medicare/storefront/internal/cart/adapters/http"
	cartmemory "github.com/medicare/storefront/internal/cart/adapters/memory"
	cartpostgres "github.com/medicare/storefront/internal/cart/adapters/postgres"
	"github.com/medicare/storefront/internal/cart/ports"
	"github.com/medicare/storefront/internal/cart/store"
	"github.com/medicare/storefront/internal/config"
	"github.com/medicare/storefront/internal/database"
	"github.com/medicare/storefront/internal/events"
	"github.com/medicare/storefront/internal/httpapi"
	idemmemory "github.com/medicare/storefront/internal/idempotency/memory"
	idempostgres "github.com/medicare/storefront/internal/idempotency/postgres"
	ordersadapters "github.com/medicare/storefront/internal/orders/adapters"
	ordershttp "github.com/medicare/storefront/internal/orders/adapters/http"
	"github.com/medicare/storefront/internal/orders/adapters/orderapi"
	ordersapp "github.com/medicare/storefront/internal/orders/app"
	"github.com/medicare/storefront/internal/orders/assembler"
	ordersmetrics "github.com/medicare/storefront/internal/orders/metrics"
	orderports "github.com/medicare/storefront/internal/orders/ports"
	"github.com/medicare/storefront/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

const meterName = "github.com/medicare/storefront"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := telemetry.NewLogger(os.Stdout, telemetry.ParseLevel(cfg.Telemetry.LogLevel)).With(
		"service", cfg.Service.Name,
		"version", cfg.Service.Version,
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("storefront stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	tel, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Environment:    cfg.Service.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTelEndpoint,
		EnableTracing:  cfg.Telemetry.EnableTracing,
		EnableMetrics:  cfg.Telemetry.EnableMetrics,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	meter := otel.Meter(meterName)

	dbMetrics, err := database.NewMetrics(meter)
	if err != nil {
		return err
	}
	orderMetrics, err := ordersmetrics.NewMetrics(meter)
	if err != nil {
		return err
	}
	eventMetrics, err := events.NewMetrics(meter)
	if err != nil {
		return err
	}
	httpMetrics, err := httpapi.NewMetrics(meter)
	if err != nil {
		return err
	}

	var (
		pool      *pgxpool.Pool
		storage   ports.Storage
		idemStore orderports.IdempotencyStore
	)

	switch cfg.Storage.Backend {
	case config.StoragePostgres:
		pool, err = database.NewPool(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("create database pool: %w", err)
		}
		defer pool.Close()

		if cfg.Database.AutoMigrate {
			logger.Info("running database migrations", "path", cfg.Database.MigrationsPath)
			version, err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath)
			if err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			logger.Info("migrations completed successfully", "version", version)
		}

		storage = cartadapters.NewObservableStorage(cartpostgres.NewStorage(pool), dbMetrics)
		idemStore = idempostgres.NewStore(pool, cfg.Idempotency.TTL)
	default:
		storage = cartmemory.NewStorage()
		idemStore = idemmemory.NewStore(cfg.Idempotency.TTL)
	}

	registry := store.NewRegistry(storage, logger)
	evictionDone := make(chan struct{})
	go func() {
		defer close(evictionDone)
		registry.RunEviction(ctx, cfg.Storage.IdleTTL, min(cfg.Storage.IdleTTL/2, time.Minute))
	}()

	orderAPI := ordersadapters.NewObservableOrderAPI(
		orderapi.NewClient(cfg.OrderAPI.URL, cfg.OrderAPI.Timeout),
		orderMetrics,
	)
	eventBus := ordersadapters.NewObservableEventBus(events.NewLogEventBus(logger), eventMetrics)

	service := ordersapp.NewService(
		orderAPI,
		assembler.New(cfg.Pricing),
		eventBus,
		idemStore,
		logger,
		orderMetrics,
	)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if pool != nil {
			if err := database.CheckHealth(r.Context(), pool); err != nil {
				httpapi.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
				return
			}
		}
		httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	carthttp.NewHandler(registry, cfg.Pricing).Register(mux)
	ordershttp.NewHandler(service, registry).Register(mux)

	handler := otelhttp.NewHandler(
		httpapi.WithRecovery(httpapi.WithLogging(httpapi.WithMetrics(mux, httpMetrics), logger), logger),
		"storefront",
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.OrderAPI.Timeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting",
			"port", cfg.HTTP.Port,
			"cart_storage", string(cfg.Storage.Backend),
			"order_api", cfg.OrderAPI.URL,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownGrace)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	} else {
		logger.Info("http server stopped")
	}

	// carts are written asynchronously; drain them before the pool closes
	<-evictionDone
	if err := registry.Close(shutdownCtx); err != nil {
		return fmt.Errorf("flush carts: %w", err)
	}
	logger.Info("cart sessions flushed")

	return nil
}
