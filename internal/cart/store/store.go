// Package store holds the canonical cart state for a session. Store is the
// only mutator of its line items: it keeps product ids unique, keeps
// quantities at one or more, and notifies subscribers after every change.
package store

import (
	"sync"

	"github.com/medicare/storefront/internal/cart/domain"
)

// Subscriber receives a snapshot after each effective cart mutation.
// Notifications are delivered outside the store's lock, so concurrent
// mutations may arrive out of order; version increases strictly with every
// mutation and tells a subscriber which snapshot is newer.
type Subscriber interface {
	CartChanged(version uint64, items []domain.LineItem)
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(version uint64, items []domain.LineItem)

func (f SubscriberFunc) CartChanged(version uint64, items []domain.LineItem) {
	f(version, items)
}

// Store owns one cart.
type Store struct {
	mu      sync.Mutex
	items   []domain.LineItem
	version uint64
	subs    map[int]Subscriber
	nextID  int
}

// New creates a store seeded with initial. Duplicate product ids are merged
// and quantities floored at one, so persisted data of any vintage loads into
// a consistent cart.
func New(initial []domain.LineItem) *Store {
	s := &Store{subs: make(map[int]Subscriber)}
	for _, item := range initial {
		if item.ProductID == "" {
			continue
		}
		item.Quantity = domain.ClampQuantity(item.Quantity)
		if idx := s.indexOf(item.ProductID); idx >= 0 {
			s.items[idx].Quantity += item.Quantity
			continue
		}
		s.items = append(s.items, item)
	}
	return s
}

// Subscribe registers sub and returns a function that removes it.
func (s *Store) Subscribe(sub Subscriber) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = sub
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// AddItem adds quantity units of product. An existing line for the same
// product is merged by incrementing its quantity and refreshing its unit price
// when the product carries one. Products without an id are ignored.
func (s *Store) AddItem(product domain.Product, quantity int) {
	item, ok := domain.NewLineItem(product, quantity)
	if !ok {
		return
	}

	s.mutate(func() bool {
		idx := s.indexOf(item.ProductID)
		if idx < 0 {
			s.items = append(s.items, item)
			return true
		}

		line := &s.items[idx]
		line.Quantity += item.Quantity
		if product.Price != nil {
			line.UnitPrice = *product.Price
		}
		return true
	})
}

// UpdateQuantity sets the quantity of the line for id, floored at one.
// Unknown ids are ignored.
func (s *Store) UpdateQuantity(id string, quantity int) {
	quantity = domain.ClampQuantity(quantity)
	s.mutate(func() bool {
		idx := s.indexOf(id)
		if idx < 0 || s.items[idx].Quantity == quantity {
			return false
		}
		s.items[idx].Quantity = quantity
		return true
	})
}

// RemoveItem deletes the line for id if present.
func (s *Store) RemoveItem(id string) {
	s.mutate(func() bool {
		idx := s.indexOf(id)
		if idx < 0 {
			return false
		}
		s.items = append(s.items[:idx], s.items[idx+1:]...)
		return true
	})
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mutate(func() bool {
		if len(s.items) == 0 {
			return false
		}
		s.items = nil
		return true
	})
}

// Snapshot returns a copy of the line items in insertion order.
func (s *Store) Snapshot() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyItems()
}

// Contains reports whether a line for id is currently in the cart. Deferred
// removals check it before acting since the cart may have been cleared in
// between.
func (s *Store) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(id) >= 0
}

// Version returns the number of effective mutations applied so far.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Len returns the number of lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// mutate applies fn under the lock and, when fn reports a change, notifies
// subscribers with a versioned snapshot once the lock is released.
func (s *Store) mutate(fn func() bool) {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return
	}
	s.version++
	version := s.version
	snapshot := s.copyItems()
	subs := make([]Subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.CartChanged(version, cloneItems(snapshot))
	}
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ProductID == id {
			return i
		}
	}
	return -1
}

func (s *Store) copyItems() []domain.LineItem {
	return cloneItems(s.items)
}

func cloneItems(items []domain.LineItem) []domain.LineItem {
	out := make([]domain.LineItem, len(items))
	copy(out, items)
	return out
}
