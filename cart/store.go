// Package cart holds a visitor's shopping cart: an ordered list of line items
// keyed by product id, persisted in full to a storage slot after every change.
//
// A Store is the only writer of its cart. Renderers and other dependents read
// it through Subscribe, which delivers a fresh Snapshot after each successful
// mutation, in the order the mutations happened.
package cart

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"farmstore-backend/storage"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Toaster shows short-lived messages to the visitor.
type Toaster interface {
	Success(message string)
	Info(message string)
	Error(message string)
}

// Listener receives a snapshot after every change. Listeners run while the
// store is still serializing the operation, so they must not call Add,
// Remove, ChangeQuantity, Clear, Load or Checkout.
type Listener func(Snapshot)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithToaster sets where success, info and error messages go.
func WithToaster(t Toaster) Option {
	return func(s *Store) {
		if t != nil {
			s.toasts = t
		}
	}
}

// Store owns one visitor's cart and the slot it is saved to.
type Store struct {
	slot   storage.Slot
	log    *zap.Logger
	toasts Toaster

	// opMu orders mutating operations and the notifications they emit.
	opMu sync.Mutex

	mu    sync.RWMutex
	items []LineItem

	subMu     sync.Mutex
	listeners map[int]Listener
	nextSub   int
}

// NewStore returns an empty Store writing to slot. Call Load to read the
// saved cart.
func NewStore(slot storage.Slot, opts ...Option) *Store {
	s := &Store{
		slot:      slot,
		log:       zap.NewNop(),
		toasts:    nopToaster{},
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory cart with the persisted snapshot. A missing,
// unreadable or corrupt snapshot yields an empty cart; Load never fails.
func (s *Store) Load(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	items := s.readSnapshot(ctx)

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()

	s.emit()
}

func (s *Store) readSnapshot(ctx context.Context) []LineItem {
	data, err := s.slot.Load(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("cart snapshot unreadable, starting empty", zap.Error(err))
		}
		return nil
	}

	items, err := decodeSnapshot(data)
	if err != nil {
		s.log.Warn("discarding corrupt cart snapshot", zap.Error(err))
		return nil
	}
	return items
}

// Add puts one unit of a product in the cart. A product already in the cart
// has its quantity incremented; the name and price captured first are kept.
// An empty name is replaced by the product id.
func (s *Store) Add(ctx context.Context, productID, name string, unitPrice decimal.Decimal) error {
	if productID == "" {
		return fmt.Errorf("%w: product id is required", ErrInvalidItem)
	}
	if unitPrice.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidItem)
	}
	if name == "" {
		name = productID
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	next := s.copyItems()
	if i := indexOf(next, productID); i >= 0 {
		if next[i].Quantity >= MaxQuantity {
			return fmt.Errorf("%w: at most %d of %q per order", ErrInvalidItem, MaxQuantity, productID)
		}
		next[i].Quantity++
	} else {
		next = append(next, LineItem{
			ID:        productID,
			Name:      name,
			UnitPrice: unitPrice,
			Quantity:  1,
		})
	}

	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.toasts.Success(fmt.Sprintf("%s added to cart!", name))
	return nil
}

// Remove drops a product from the cart. Removing an absent product is not an
// error; the cart is still saved and subscribers still notified.
func (s *Store) Remove(ctx context.Context, productID string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	return s.removeLocked(ctx, productID)
}

func (s *Store) removeLocked(ctx context.Context, productID string) error {
	current := s.copyItems()
	next := current[:0]
	for _, it := range current {
		if it.ID != productID {
			next = append(next, it)
		}
	}

	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.toasts.Info("Item removed from cart")
	return nil
}

// ChangeQuantity adds delta to a product's quantity. When the result is zero
// or less the product is removed. Unknown products are ignored. A result above
// MaxQuantity fails with ErrInvalidItem and leaves the cart unchanged.
func (s *Store) ChangeQuantity(ctx context.Context, productID string, delta int) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	next := s.copyItems()
	i := indexOf(next, productID)
	if i < 0 {
		return nil
	}

	if delta > MaxQuantity-next[i].Quantity {
		return fmt.Errorf("%w: at most %d of %q per order", ErrInvalidItem, MaxQuantity, productID)
	}
	next[i].Quantity += delta
	if next[i].Quantity <= 0 {
		return s.removeLocked(ctx, productID)
	}
	return s.commit(ctx, next)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	return s.commit(ctx, nil)
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []LineItem {
	return s.copyItems()
}

// Total is the sum of unit price times quantity, rounded to cents.
func (s *Store) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return total(s.items)
}

// ItemCount is the sum of all quantities.
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return itemCount(s.items)
}

// Snapshot returns a copy of the cart with its count and total.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]LineItem, len(s.items))
	copy(items, s.items)
	return Snapshot{
		Items:     items,
		ItemCount: itemCount(items),
		Total:     total(items),
	}
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.listeners, id)
			s.subMu.Unlock()
		})
	}
}

// Watch is Subscribe that also calls fn with the current snapshot first.
// No change can land between that call and the subscription.
func (s *Store) Watch(fn Listener) (unsubscribe func()) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	unsubscribe = s.Subscribe(fn)
	fn(s.Snapshot())
	return unsubscribe
}

// commit writes next to the slot and only then makes it the current cart.
// Must be called with opMu held.
func (s *Store) commit(ctx context.Context, next []LineItem) error {
	data, err := encodeSnapshot(next)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := s.slot.Save(ctx, data); err != nil {
		s.log.Error("failed to save cart snapshot", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}

	s.mu.Lock()
	s.items = next
	s.mu.Unlock()

	s.emit()
	return nil
}

func (s *Store) emit() {
	snap := s.Snapshot()

	s.subMu.Lock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	listeners := make([]Listener, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		listeners = append(listeners, s.listeners[id])
	}
	s.subMu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

func (s *Store) copyItems() []LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]LineItem, len(s.items))
	copy(items, s.items)
	return items
}

type nopToaster struct{}

func (nopToaster) Success(string) {}
func (nopToaster) Info(string)    {}
func (nopToaster) Error(string)   {}
