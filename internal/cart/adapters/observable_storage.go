package adapters

import (
	"context"
	"time"

	"github.com/medicare/storefront/internal/cart/ports"
	"github.com/medicare/storefront/internal/database"
	"github.com/medicare/storefront/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableStorage struct {
	storage ports.Storage
	metrics *database.Metrics
}

func NewObservableStorage(storage ports.Storage, metrics *database.Metrics) *ObservableStorage {
	return &ObservableStorage{
		storage: storage,
		metrics: metrics,
	}
}

func (s *ObservableStorage) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "CartStorage.Get")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("cart.storage_key", key),
		attribute.String("operation", "get"),
	)

	start := time.Now()
	value, found, err := s.storage.Get(ctx, key)
	s.metrics.RecordQuery(ctx, "get_cart", time.Since(start), err)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return "", false, err
	}

	telemetry.AddSpanAttributes(span, attribute.Bool("cart.found", found))
	telemetry.SetSpanSuccess(span)
	return value, found, nil
}

func (s *ObservableStorage) Set(ctx context.Context, key, value string) error {
	ctx, span := telemetry.StartSpan(ctx, "CartStorage.Set")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("cart.storage_key", key),
		attribute.Int("cart.payload_bytes", len(value)),
		attribute.String("operation", "set"),
	)

	start := time.Now()
	err := s.storage.Set(ctx, key, value)
	s.metrics.RecordQuery(ctx, "set_cart", time.Since(start), err)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (s *ObservableStorage) Remove(ctx context.Context, key string) error {
	ctx, span := telemetry.StartSpan(ctx, "CartStorage.Remove")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("cart.storage_key", key),
		attribute.String("operation", "remove"),
	)

	start := time.Now()
	err := s.storage.Remove(ctx, key)
	s.metrics.RecordQuery(ctx, "remove_cart", time.Since(start), err)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}
