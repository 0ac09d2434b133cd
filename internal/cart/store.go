package cart

import (
	"sync"

	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-cart-service/internal/models"
)

// Snapshot is an immutable view of a store's state. Revision increases by
// one per mutation, so equal revisions mean identical item sequences.
type Snapshot struct {
	Revision uint64
	Items    []models.LineItem
}

// Observer receives the new snapshot after every mutation.
type Observer func(Snapshot)

// Store is the canonical line-item container for one cart. It guarantees
// at most one line per (product, variant) identity key, and that every
// read observes the fully-applied result of all prior mutations.
//
// None of the mutators fail: unknown keys degrade to no-ops and
// non-positive quantities on UpdateQuantity mean removal. The store trusts
// its caller for type validity; AddItem expects a positive quantity.
type Store struct {
	mu        sync.Mutex
	items     []models.LineItem
	index     map[models.LineKey]int
	revision  uint64
	observers map[int]Observer
	nextObsID int
}

// NewStore creates an empty cart store.
func NewStore() *Store {
	return &Store{
		index:     make(map[models.LineKey]int),
		observers: make(map[int]Observer),
	}
}

// AddItem merges (product, variant) into the cart. If a line with the same
// identity key exists its quantity is incremented and all other fields are
// retained as first captured; price and tax metadata are not refreshed by
// a repeat add. Otherwise a new line is appended. When a variant is given,
// the stored product snapshot's price is overridden to the variant unit
// price so readers of product.price see what the line is charged at.
func (s *Store) AddItem(product models.Product, quantity int, variant *models.Variant) {
	s.mu.Lock()

	key := models.LineKey{ProductID: product.ID}
	if variant != nil {
		key.VariantID = variant.ID
	}

	if i, ok := s.index[key]; ok {
		s.items[i].Quantity += quantity
		s.finishLocked()
		return
	}

	item := models.LineItem{
		Product:        product,
		Quantity:       quantity,
		TaxRatePercent: product.TaxRatePercent,
		MRP:            product.MRP,
	}
	if variant != nil {
		unitPrice := variant.UnitPrice
		item.Product.Price = unitPrice
		item.VariantID = variant.ID
		item.VariantLabel = variant.Label
		item.UnitPrice = &unitPrice
		item.TaxRatePercent = variant.TaxRatePercent
		item.MRP = variant.MRP
	}

	s.items = append(s.items, item)
	s.index[key] = len(s.items) - 1
	s.finishLocked()
}

// UpdateQuantity sets the matching line's quantity to exactly the given
// value. A quantity of zero or less removes the line. Unknown keys are a
// no-op either way.
func (s *Store) UpdateQuantity(productID string, quantity int, variantID string) {
	s.mu.Lock()

	key := models.LineKey{ProductID: productID, VariantID: variantID}
	i, ok := s.index[key]
	if !ok {
		s.mu.Unlock()
		return
	}

	if quantity <= 0 {
		s.removeAtLocked(i, key)
	} else {
		s.items[i].Quantity = quantity
	}
	s.finishLocked()
}

// RemoveItem deletes the matching line. Removing an absent key is an
// idempotent no-op.
func (s *Store) RemoveItem(productID, variantID string) {
	s.mu.Lock()

	key := models.LineKey{ProductID: productID, VariantID: variantID}
	i, ok := s.index[key]
	if !ok {
		s.mu.Unlock()
		return
	}

	s.removeAtLocked(i, key)
	s.finishLocked()
}

// Clear resets the store to the empty cart unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.index = make(map[models.LineKey]int)
	s.finishLocked()
}

// Items returns a copy of the current line-item sequence in insertion
// order.
func (s *Store) Items() []models.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyItemsLocked()
}

// Snapshot returns the current revision together with the item sequence.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Revision: s.revision, Items: s.copyItemsLocked()}
}

// Revision returns the mutation counter.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// ItemCount is the total quantity across all lines, used for badge
// counters. Distinct from Len.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// Len is the number of distinct lines in the cart.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// TotalPayable is the tax-inclusive sum of effective price times quantity
// across all lines, in major units. Lightweight selector for display
// contexts that do not need the full pricing breakdown.
func (s *Store) TotalPayable() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.EffectiveUnitPrice().Mul(item.Quantity).Decimal())
	}
	return total
}

// Subscribe registers an observer invoked with the new snapshot after
// every mutation. The returned function unsubscribes it.
func (s *Store) Subscribe(fn Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// removeAtLocked deletes the line at index i, preserving insertion order
// of the remainder and keeping the identity index consistent.
func (s *Store) removeAtLocked(i int, key models.LineKey) {
	s.items = append(s.items[:i], s.items[i+1:]...)
	delete(s.index, key)
	for k, idx := range s.index {
		if idx > i {
			s.index[k] = idx - 1
		}
	}
}

// finishLocked bumps the revision and notifies observers with the new
// canonical snapshot. Observers run outside the lock so they can read the
// store. Must be called with the lock held; it releases it.
func (s *Store) finishLocked() {
	s.revision++
	snap := Snapshot{Revision: s.revision, Items: s.copyItemsLocked()}
	observers := make([]Observer, 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
}

func (s *Store) copyItemsLocked() []models.LineItem {
	items := make([]models.LineItem, len(s.items))
	copy(items, s.items)
	return items
}
