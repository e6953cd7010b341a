package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
)

var ErrPersist = errors.New("cart persist failed")

// MaxQuantity caps a single line so quantities always fit in an int32.
const MaxQuantity = math.MaxInt32

// Quantities is a sparse productID -> quantity mapping. Values are always >= 1.
type Quantities map[string]int

func (q Quantities) Quantity(productID string) int {
	return q[productID]
}

// CartEvent is emitted after every committed mutation. Seq increases by one
// per mutation of a store; listeners of one store see events in Seq order.
type CartEvent struct {
	Session   string
	Seq       uint64
	ProductID string // empty when the cart was cleared
	Quantity  int
	Cleared   bool
	Items     Quantities
}

type Listener func(ev CartEvent)

// NormalizeQuantity turns any requested value into a storable quantity:
// NaN and infinities become 0, fractions are floored, negatives clamp to 0.
func NormalizeQuantity(qty float64) int {
	if math.IsNaN(qty) || math.IsInf(qty, 0) {
		return 0
	}
	qty = math.Floor(qty)
	if qty <= 0 {
		return 0
	}
	if qty > MaxQuantity {
		return MaxQuantity
	}
	return int(qty)
}

// CartStore is the single owner of one session's selection.
type CartStore struct {
	session string
	repo    CartStateRepo
	metrics Metrics
	log     *slog.Logger

	// nmu serializes mutate+notify so listeners observe mutations in commit
	// order. It is taken before mu. Listeners must not mutate their store.
	nmu   sync.Mutex
	mu    sync.Mutex
	items Quantities
	seq   uint64

	lmu       sync.Mutex
	listeners map[int]Listener
	nextID    int

	coOnce   sync.Once
	checkout *Checkout
}

func newCartStore(session string, items Quantities, repo CartStateRepo, m Metrics, log *slog.Logger) *CartStore {
	if items == nil {
		items = Quantities{}
	}
	return &CartStore{
		session:   session,
		repo:      repo,
		metrics:   m,
		log:       log,
		items:     items,
		listeners: map[int]Listener{},
	}
}

func (s *CartStore) Session() string { return s.session }

// Quantity returns the stored quantity or 0.
func (s *CartStore) Quantity(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[productID]
}

// Snapshot returns a copy safe to read without holding the store.
func (s *CartStore) Snapshot() Quantities {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

func (s *CartStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// SetQuantity replaces the quantity for productID with the normalized value.
// A result of 0 removes the entry. The whole cart is persisted before
// returning; an error means the write failed, the in-memory change stands.
func (s *CartStore) SetQuantity(ctx context.Context, productID string, qty float64) error {
	return s.update(ctx, productID, func(int) float64 { return qty })
}

func (s *CartStore) Increment(ctx context.Context, productID string) error {
	return s.update(ctx, productID, func(cur int) float64 { return float64(cur) + 1 })
}

func (s *CartStore) Decrement(ctx context.Context, productID string) error {
	return s.update(ctx, productID, func(cur int) float64 { return float64(cur) - 1 })
}

func (s *CartStore) update(ctx context.Context, productID string, next func(cur int) float64) error {
	s.nmu.Lock()
	defer s.nmu.Unlock()

	s.mu.Lock()
	n := NormalizeQuantity(next(s.items[productID]))
	if n <= 0 {
		delete(s.items, productID)
	} else {
		s.items[productID] = n
	}
	err := s.persistLocked(ctx)
	s.seq++
	ev := CartEvent{Session: s.session, Seq: s.seq, ProductID: productID, Quantity: n, Items: s.copyLocked()}
	s.mu.Unlock()

	s.metrics.CartMutated()
	s.notify(ev)
	return err
}

// Clear empties the cart and persists it.
func (s *CartStore) Clear(ctx context.Context) error {
	s.nmu.Lock()
	defer s.nmu.Unlock()

	s.mu.Lock()
	s.items = Quantities{}
	err := s.persistLocked(ctx)
	s.seq++
	ev := CartEvent{Session: s.session, Seq: s.seq, Cleared: true, Items: Quantities{}}
	s.mu.Unlock()

	s.metrics.CartCleared()
	s.notify(ev)
	return err
}

// Subscribe registers fn for change notifications and returns its canceller.
func (s *CartStore) Subscribe(fn Listener) (unsubscribe func()) {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.lmu.Unlock()

	return func() {
		s.lmu.Lock()
		delete(s.listeners, id)
		s.lmu.Unlock()
	}
}

func (s *CartStore) notify(ev CartEvent) {
	s.lmu.Lock()
	fns := make([]Listener, 0, len(s.listeners))
	// registration order
	for i := 0; i < s.nextID; i++ {
		if fn, ok := s.listeners[i]; ok {
			fns = append(fns, fn)
		}
	}
	s.lmu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (s *CartStore) copyLocked() Quantities {
	out := make(Quantities, len(s.items))
	for k, v := range s.items {
		out[k] = v
	}
	return out
}

func (s *CartStore) persistLocked(ctx context.Context) error {
	data, err := EncodeCart(s.items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.repo.Save(ctx, s.session, data); err != nil {
		s.log.Error("cart persist failed", "session", s.session, "err", err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

// EncodeCart writes the flat {"id": qty} object.
func EncodeCart(items Quantities) ([]byte, error) {
	if items == nil {
		items = Quantities{}
	}
	return json.Marshal(map[string]int(items))
}

// DecodeCart reads a persisted cart. Anything that is not a JSON object
// yields an empty cart and ok=false. Entries that do not normalize to a
// positive quantity are dropped.
func DecodeCart(data []byte) (items Quantities, ok bool) {
	items = Quantities{}
	if len(data) == 0 {
		return items, true
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return items, false
	}
	for id, v := range raw {
		f, isNum := v.(float64)
		if !isNum {
			continue
		}
		if n := NormalizeQuantity(f); n > 0 {
			items[id] = n
		}
	}
	return items, true
}
