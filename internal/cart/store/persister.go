package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/medicare/storefront/internal/cart/domain"
	"github.com/medicare/storefront/internal/cart/ports"
)

// ErrPersisterClosed is returned by Flush after Close.
var ErrPersisterClosed = errors.New("cart persister closed")

const defaultWriteTimeout = 5 * time.Second

// Persister writes cart snapshots to storage in the background. Only the
// newest snapshot is written: pending ones are coalesced, and a snapshot whose
// version is not above the newest one seen is dropped even when it arrives
// later. Write failures are logged and never reach the code that mutated the
// cart.
type Persister struct {
	storage ports.Storage
	key     string
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending []domain.LineItem
	latest  uint64
	dirty   bool
	closed  bool
	wake    chan struct{}
	idle    *sync.Cond
	writing bool
	done    chan struct{}
}

// NewPersister starts a background writer for key. Close must be called to
// stop it.
func NewPersister(storage ports.Storage, key string, logger *slog.Logger) *Persister {
	p := &Persister{
		storage: storage,
		key:     key,
		logger:  logger,
		timeout: defaultWriteTimeout,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	p.idle = sync.NewCond(&p.mu)
	go p.run()
	return p
}

// CartChanged queues items for writing unless a newer version was already
// queued or written.
func (p *Persister) CartChanged(version uint64, items []domain.LineItem) {
	p.mu.Lock()
	if p.closed || version <= p.latest {
		p.mu.Unlock()
		return
	}
	p.latest = version
	p.pending = items
	p.dirty = true
	select {
	case p.wake <- struct{}{}:
	default:
	}
	p.mu.Unlock()
}

// Flush blocks until every queued snapshot has been written or ctx ends.
func (p *Persister) Flush(ctx context.Context) error {
	flushed := make(chan struct{})
	go func() {
		p.mu.Lock()
		for p.dirty || p.writing {
			p.idle.Wait()
		}
		p.mu.Unlock()
		close(flushed)
	}()

	select {
	case <-flushed:
		return nil
	case <-p.done:
		return ErrPersisterClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close writes any pending snapshot and stops the background writer.
func (p *Persister) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.wake)
	p.mu.Unlock()

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Persister) run() {
	defer close(p.done)
	for range p.wake {
		p.drain()
	}
	p.drain()
}

func (p *Persister) drain() {
	for {
		p.mu.Lock()
		if !p.dirty {
			p.idle.Broadcast()
			p.mu.Unlock()
			return
		}
		items := p.pending
		p.pending = nil
		p.dirty = false
		p.writing = true
		p.mu.Unlock()

		if err := p.write(items); err != nil {
			p.logger.Warn("failed to persist cart", "key", p.key, "error", err)
		}

		p.mu.Lock()
		p.writing = false
		p.mu.Unlock()
	}
}

func (p *Persister) write(items []domain.LineItem) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if len(items) == 0 {
		return p.storage.Remove(ctx, p.key)
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return p.storage.Set(ctx, p.key, string(payload))
}

// Load reads the persisted cart stored under key. A missing key yields an
// empty cart; a payload that does not decode is logged and discarded.
func Load(ctx context.Context, storage ports.Storage, key string, logger *slog.Logger) ([]domain.LineItem, error) {
	value, ok, err := storage.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load cart %s: %w", key, err)
	}
	if !ok || value == "" {
		return nil, nil
	}

	var items []domain.LineItem
	if err := json.Unmarshal([]byte(value), &items); err != nil {
		logger.WarnContext(ctx, "discarding unreadable cart", "key", key, "error", err)
		return nil, nil
	}
	return items, nil
}
