package cart

import "bakery-service/internal/models"

// Store holds the line items of one session cart in insertion order, at
// most one item per product ID. It performs no I/O of its own; the service
// layer persists a snapshot after every mutation. The zero value is not
// usable, create stores with NewStore.
type Store struct {
	items []models.CartItem
}

// NewStore creates a cart store seeded with the given items, typically the
// rehydrated snapshot from persistence. A nil slice means an empty cart.
func NewStore(items []models.CartItem) *Store {
	s := &Store{items: make([]models.CartItem, 0, len(items))}
	s.items = append(s.items, items...)
	return s
}

// AddItem merges an item into the cart. When an item with the same ID
// already exists its quantity grows by item.Quantity and its stored name
// and price stay untouched; price is captured at first add, not refreshed.
// Otherwise the item is appended, preserving insertion order.
func (s *Store) AddItem(item models.CartItem) {
	for i := range s.items {
		if s.items[i].ID == item.ID {
			s.items[i].Quantity += item.Quantity
			return
		}
	}
	s.items = append(s.items, item)
}

// RemoveItem removes the item with the given ID. Removing an absent ID is
// a no-op, not an error.
func (s *Store) RemoveItem(id string) {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.items = s.items[:0]
}

// Total returns the sum of price times quantity over all items.
func (s *Store) Total() float64 {
	var total float64
	for _, item := range s.items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []models.CartItem {
	out := make([]models.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of distinct line items.
func (s *Store) Len() int {
	return len(s.items)
}
