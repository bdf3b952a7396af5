package store_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/medicare/storefront/internal/cart/domain"
	"github.com/medicare/storefront/internal/cart/store"
	"github.com/medicare/storefront/internal/money"
)

func product(id string, price float64) domain.Product {
	p := money.FromFloat(price)
	return domain.Product{ID: id, Name: "Product " + id, Price: &p}
}

func TestAddItem(t *testing.T) {
	t.Run("merges repeated adds into one line", func(t *testing.T) {
		s := store.New(nil)
		s.AddItem(product("p1", 4.75), 2)
		s.AddItem(product("p1", 4.75), 3)

		items := s.Snapshot()
		if len(items) != 1 {
			t.Fatalf("expected 1 line, got %d", len(items))
		}
		if items[0].Quantity != 5 {
			t.Errorf("expected quantity 5, got %d", items[0].Quantity)
		}
	})

	t.Run("refreshes unit price on merge", func(t *testing.T) {
		s := store.New(nil)
		s.AddItem(product("p1", 4.75), 1)
		s.AddItem(product("p1", 5.25), 1)

		if got := s.Snapshot()[0].UnitPrice; got != money.FromFloat(5.25) {
			t.Errorf("expected refreshed price 5.25, got %s", got)
		}
	})

	t.Run("keeps price when merged product has none", func(t *testing.T) {
		s := store.New(nil)
		s.AddItem(product("p1", 4.75), 1)
		s.AddItem(domain.Product{ID: "p1"}, 1)

		if got := s.Snapshot()[0].UnitPrice; got != money.FromFloat(4.75) {
			t.Errorf("expected price 4.75 kept, got %s", got)
		}
	})

	t.Run("legacy id and primary id address the same line", func(t *testing.T) {
		s := store.New(nil)
		s.AddItem(domain.Product{LegacyID: "64ab"}, 1)
		s.AddItem(domain.Product{ID: "64ab"}, 1)

		items := s.Snapshot()
		if len(items) != 1 || items[0].Quantity != 2 {
			t.Errorf("expected single line with quantity 2, got %+v", items)
		}
	})

	t.Run("preserves insertion order", func(t *testing.T) {
		s := store.New(nil)
		s.AddItem(product("c", 1), 1)
		s.AddItem(product("a", 1), 1)
		s.AddItem(product("b", 1), 1)
		s.AddItem(product("c", 1), 1)

		var ids []string
		for _, item := range s.Snapshot() {
			ids = append(ids, item.ProductID)
		}
		if diff := cmp.Diff([]string{"c", "a", "b"}, ids); diff != "" {
			t.Errorf("order mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("ignores products without identity", func(t *testing.T) {
		s := store.New(nil)
		notified := 0
		s.Subscribe(store.SubscriberFunc(func(uint64, []domain.LineItem) { notified++ }))

		s.AddItem(domain.Product{Name: "nameless"}, 1)

		if s.Len() != 0 {
			t.Errorf("expected empty cart, got %d lines", s.Len())
		}
		if notified != 0 {
			t.Errorf("expected no notification, got %d", notified)
		}
	})
}

func TestUpdateQuantity(t *testing.T) {
	tests := []struct {
		name string
		qty  int
		want int
	}{
		{"sets positive quantity", 7, 7},
		{"zero clamps to one", 0, 1},
		{"negative clamps to one", -5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := store.New(nil)
			s.AddItem(product("p1", 2), 3)

			s.UpdateQuantity("p1", tt.qty)

			items := s.Snapshot()
			if len(items) != 1 {
				t.Fatalf("line must never be removed by a quantity update, got %d lines", len(items))
			}
			if items[0].Quantity != tt.want {
				t.Errorf("expected quantity %d, got %d", tt.want, items[0].Quantity)
			}
		})
	}

	t.Run("unknown id is a no-op", func(t *testing.T) {
		s := store.New(nil)
		s.AddItem(product("p1", 2), 3)
		before := s.Snapshot()

		s.UpdateQuantity("missing", 9)

		if diff := cmp.Diff(before, s.Snapshot()); diff != "" {
			t.Errorf("cart changed (-before +after):\n%s", diff)
		}
	})
}

func TestRemoveItem(t *testing.T) {
	s := store.New(nil)
	s.AddItem(product("p1", 1), 1)
	s.AddItem(product("p2", 2), 1)

	s.RemoveItem("p1")
	once := s.Snapshot()
	s.RemoveItem("p1")
	twice := s.Snapshot()

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("second removal changed state (-once +twice):\n%s", diff)
	}
	if len(twice) != 1 || twice[0].ProductID != "p2" {
		t.Errorf("expected only p2 to remain, got %+v", twice)
	}
	if s.Contains("p1") {
		t.Error("p1 should be gone")
	}
}

func TestClear(t *testing.T) {
	s := store.New(nil)
	s.AddItem(product("p1", 1), 1)

	s.Clear()
	s.Clear()

	if s.Len() != 0 {
		t.Errorf("expected empty cart, got %d lines", s.Len())
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := store.New(nil)
	s.AddItem(product("p1", 1), 1)

	snap := s.Snapshot()
	snap[0].Quantity = 99
	snap[0].ProductID = "tampered"

	fresh := s.Snapshot()
	if fresh[0].Quantity != 1 || fresh[0].ProductID != "p1" {
		t.Errorf("store internals were mutated through a snapshot: %+v", fresh[0])
	}
}

func TestNewNormalizesInitialItems(t *testing.T) {
	s := store.New([]domain.LineItem{
		{ProductID: "a", Quantity: 2},
		{ProductID: "", Quantity: 4},
		{ProductID: "b", Quantity: 0},
		{ProductID: "a", Quantity: 1},
	})

	want := []domain.LineItem{
		{ProductID: "a", Quantity: 3},
		{ProductID: "b", Quantity: 1},
	}
	if diff := cmp.Diff(want, s.Snapshot()); diff != "" {
		t.Errorf("unexpected hydrated cart (-want +got):\n%s", diff)
	}
}

func TestSubscribe(t *testing.T) {
	s := store.New(nil)

	var got [][]domain.LineItem
	unsubscribe := s.Subscribe(store.SubscriberFunc(func(_ uint64, items []domain.LineItem) {
		got = append(got, items)
	}))

	s.AddItem(product("p1", 1), 1)
	s.UpdateQuantity("p1", 1)
	s.UpdateQuantity("p1", 4)
	s.RemoveItem("missing")
	s.RemoveItem("p1")

	if len(got) != 3 {
		t.Fatalf("expected 3 notifications for effective mutations, got %d", len(got))
	}
	if got[1][0].Quantity != 4 {
		t.Errorf("expected second notification to carry quantity 4, got %d", got[1][0].Quantity)
	}
	if len(got[2]) != 0 {
		t.Errorf("expected empty snapshot after removal, got %+v", got[2])
	}

	unsubscribe()
	s.AddItem(product("p2", 1), 1)
	if len(got) != 3 {
		t.Errorf("expected no notification after unsubscribe, got %d", len(got))
	}
}

func TestDeferredRemovalGuard(t *testing.T) {
	s := store.New(nil)
	s.AddItem(product("p1", 1), 1)

	armed := "p1"
	s.Clear()
	s.AddItem(product("p2", 1), 1)

	if s.Contains(armed) {
		t.Fatal("armed id should no longer exist after clear")
	}
	if s.Len() != 1 {
		t.Errorf("expected unrelated line to survive, got %d lines", s.Len())
	}
}
