package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/medicare/storefront/internal/cart/domain"
	"github.com/medicare/storefront/internal/cart/ports"
)

// StorageKeyPrefix namespaces persisted carts in the key-value storage.
const StorageKeyPrefix = "medicare_cart:"

// ErrInvalidSession is returned for blank or malformed session ids.
var ErrInvalidSession = errors.New("invalid cart session")

// StorageKey returns the storage key for a cart session.
func StorageKey(session string) string {
	return StorageKeyPrefix + session
}

type entry struct {
	store     *Store
	persister *Persister
	lastUsed  time.Time
}

// Registry hands out one Store per cart session, hydrating it from storage on
// first use and persisting it after every change. Sessions idle for longer
// than the eviction window are flushed and dropped; their carts reload from
// storage on next use.
type Registry struct {
	storage ports.Storage
	logger  *slog.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
	closing  map[string]chan struct{}
}

// NewRegistry constructs a Registry backed by storage.
func NewRegistry(storage ports.Storage, logger *slog.Logger) *Registry {
	return &Registry{
		storage:  storage,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*entry),
		closing:  make(map[string]chan struct{}),
	}
}

// Get returns the store for session, loading and registering it on first
// access.
func (r *Registry) Get(ctx context.Context, session string) (*Store, error) {
	session = strings.TrimSpace(session)
	if session == "" {
		return nil, ErrInvalidSession
	}

	e, err := r.lookup(ctx, session)
	if err != nil {
		return nil, err
	}
	if e != nil {
		return e.store, nil
	}

	// storage is read without holding r.mu so a slow backend only delays
	// this session
	key := StorageKey(session)
	items, err := Load(ctx, r.storage, key, r.logger)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.sessions[session]; ok {
		e.lastUsed = r.now()
		return e.store, nil
	}

	s := New(items)
	p := NewPersister(r.storage, key, r.logger.With("session", session))
	s.Subscribe(p)

	r.sessions[session] = &entry{store: s, persister: p, lastUsed: r.now()}
	r.logger.DebugContext(ctx, "cart session loaded", "session", session, "lines", len(items))
	return s, nil
}

// Peek returns the session's current items without registering a store.
// Read-only callers use it so sessions that never mutate cost nothing.
func (r *Registry) Peek(ctx context.Context, session string) ([]domain.LineItem, error) {
	session = strings.TrimSpace(session)
	if session == "" {
		return nil, ErrInvalidSession
	}

	e, err := r.lookup(ctx, session)
	if err != nil {
		return nil, err
	}
	if e != nil {
		return e.store.Snapshot(), nil
	}

	items, err := Load(ctx, r.storage, StorageKey(session), r.logger)
	if err != nil {
		return nil, err
	}
	return New(items).Snapshot(), nil
}

// lookup returns the registered entry for session, or nil. A session that is
// being evicted is waited for so its final write lands before a reload.
func (r *Registry) lookup(ctx context.Context, session string) (*entry, error) {
	for {
		r.mu.Lock()
		if e, ok := r.sessions[session]; ok {
			e.lastUsed = r.now()
			r.mu.Unlock()
			return e, nil
		}
		done, evicting := r.closing[session]
		r.mu.Unlock()

		if !evicting {
			return nil, nil
		}
		select {
		case <-done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Len reports how many sessions currently hold a registered store.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// EvictIdle flushes and drops every session not used within idle. It returns
// the number of sessions evicted.
func (r *Registry) EvictIdle(ctx context.Context, idle time.Duration) int {
	r.mu.Lock()
	cutoff := r.now().Add(-idle)
	victims := make(map[string]*entry)
	for session, e := range r.sessions {
		if e.lastUsed.Before(cutoff) {
			victims[session] = e
			delete(r.sessions, session)
			r.closing[session] = make(chan struct{})
		}
	}
	r.mu.Unlock()

	for session, e := range victims {
		if err := e.persister.Close(ctx); err != nil {
			r.logger.WarnContext(ctx, "failed to flush evicted cart", "session", session, "error", err)
		}

		r.mu.Lock()
		done := r.closing[session]
		delete(r.closing, session)
		r.mu.Unlock()
		close(done)
	}
	return len(victims)
}

// RunEviction calls EvictIdle every interval until ctx is done.
func (r *Registry) RunEviction(ctx context.Context, idle, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// an eviction under way finishes its writes even if ctx ends
			if n := r.EvictIdle(context.WithoutCancel(ctx), idle); n > 0 {
				r.logger.DebugContext(ctx, "evicted idle cart sessions", "count", n)
			}
		}
	}
}

// Flush waits for every session's pending writes.
func (r *Registry) Flush(ctx context.Context) error {
	var errs []error
	for _, e := range r.entries() {
		if err := e.persister.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close drains and stops every session's persister.
func (r *Registry) Close(ctx context.Context) error {
	var errs []error
	for _, e := range r.entries() {
		if err := e.persister.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close cart persister: %w", err))
		}
	}

	r.mu.Lock()
	r.sessions = make(map[string]*entry)
	r.mu.Unlock()

	return errors.Join(errs...)
}

func (r *Registry) entries() []*entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entry, 0, len(r.sessions))
	for _, e := range r.sessions {
		out = append(out, e)
	}
	return out
}
