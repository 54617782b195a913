// Package cart holds a visitor's shopping cart: an ordered list of product
// snapshots with quantities, persisted to session storage on every change.
package cart

import (
	"encoding/json"
	"sync"

	"github.com/shopspring/decimal"

	"souqnest/internal/domain"
	applog "souqnest/internal/log"
)

// StorageKey is the session storage key holding the serialized cart.
const StorageKey = "souqnest_cart"

// Storage is the browser-style key/value API the cart persists through.
type Storage interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// Cart is safe for concurrent use of one instance; separate Loads of the same
// storage do not coordinate. A persistence failure never surfaces to callers:
// the stored copy is dropped and the in-memory cart stays valid.
type Cart struct {
	mu    sync.Mutex
	store Storage
	items []domain.CartItem

	subMu   sync.Mutex
	subs    map[int]func([]domain.CartItem)
	nextSub int
}

// Load hydrates a cart from store. Unreadable or unparsable data is removed
// and the cart starts empty.
func Load(store Storage) *Cart {
	c := &Cart{store: store, subs: map[int]func([]domain.CartItem){}}
	raw, ok, err := store.GetItem(StorageKey)
	if err != nil {
		applog.Warn(nil, "cart.load.fail", err, nil)
		return c
	}
	if !ok || raw == "" {
		return c
	}
	var items []domain.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		applog.Warn(nil, "cart.parse.fail", err, nil)
		if rerr := store.RemoveItem(StorageKey); rerr != nil {
			applog.Error(nil, "cart.remove.fail", rerr, nil)
		}
		return c
	}
	c.items = items
	return c
}

// Items returns a copy of the cart contents in insertion order.
func (c *Cart) Items() []domain.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Count is the total number of units across all entries.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// Total sums price*quantity in currency; products without such a price count as zero.
func (c *Cart) Total(currency string) decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := decimal.Zero
	for _, it := range c.items {
		if amt, ok := it.PriceIn(currency); ok {
			total = total.Add(amt.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
	}
	return total
}

// Add appends p with quantity 1, or increments the existing entry for p.ID.
func (c *Cart) Add(p domain.Product) {
	c.mutate(func(items []domain.CartItem) []domain.CartItem {
		for i := range items {
			if items[i].ID == p.ID {
				items[i].Quantity++
				return items
			}
		}
		return append(items, domain.CartItem{Product: p, Quantity: 1})
	})
}

func (c *Cart) Increment(id string) {
	c.mutate(func(items []domain.CartItem) []domain.CartItem {
		for i := range items {
			if items[i].ID == id {
				items[i].Quantity++
			}
		}
		return items
	})
}

// Decrement lowers the quantity but never below 1; use Remove to drop an entry.
func (c *Cart) Decrement(id string) {
	c.mutate(func(items []domain.CartItem) []domain.CartItem {
		for i := range items {
			if items[i].ID == id && items[i].Quantity > 1 {
				items[i].Quantity--
			}
		}
		return items
	})
}

func (c *Cart) Remove(id string) {
	c.mutate(func(items []domain.CartItem) []domain.CartItem {
		out := items[:0]
		for _, it := range items {
			if it.ID != id {
				out = append(out, it)
			}
		}
		return out
	})
}

// UpdateQuantity sets the quantity of id; n < 1 removes the entry.
func (c *Cart) UpdateQuantity(id string, n int) {
	if n < 1 {
		c.Remove(id)
		return
	}
	c.mutate(func(items []domain.CartItem) []domain.CartItem {
		for i := range items {
			if items[i].ID == id {
				items[i].Quantity = n
			}
		}
		return items
	})
}

func (c *Cart) Clear() {
	c.mutate(func([]domain.CartItem) []domain.CartItem { return nil })
}

// Subscribe registers fn to receive the cart contents after every mutation.
// The returned func unregisters it.
func (c *Cart) Subscribe(fn func([]domain.CartItem)) func() {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()
	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

func (c *Cart) mutate(fn func([]domain.CartItem) []domain.CartItem) {
	c.mu.Lock()
	c.items = fn(c.snapshot())
	c.persist()
	items := c.snapshot()
	c.mu.Unlock()

	c.subMu.Lock()
	subs := make([]func([]domain.CartItem), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.subMu.Unlock()
	for _, fn := range subs {
		fn(items)
	}
}

// persist must be called with c.mu held.
func (c *Cart) persist() {
	items := c.items
	if items == nil {
		items = []domain.CartItem{}
	}
	b, err := json.Marshal(items)
	if err == nil {
		err = c.store.SetItem(StorageKey, string(b))
	}
	if err != nil {
		applog.Warn(nil, "cart.save.fail", err, map[string]any{"items": len(items)})
		if rerr := c.store.RemoveItem(StorageKey); rerr != nil {
			applog.Error(nil, "cart.remove.fail", rerr, nil)
		}
	}
}

func (c *Cart) snapshot() []domain.CartItem {
	out := make([]domain.CartItem, len(c.items))
	copy(out, c.items)
	return out
}
