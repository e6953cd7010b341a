package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"
)

var ErrSessionRequired = errors.New("cart session required")

// DefaultMaxSessions bounds how many stores Carts keeps in memory.
const DefaultMaxSessions = 10000

var sessionPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidSessionID reports whether id can name a cart session.
func ValidSessionID(id string) bool {
	return sessionPattern.MatchString(id)
}

// Carts owns the open CartStores, one per session. Stores are loaded from
// the repo on first use and kept in an LRU of at most maxSessions entries.
// An evicted store is reloaded from the repo on next use; its state was
// persisted on every mutation.
type Carts struct {
	repo    CartStateRepo
	metrics Metrics
	log     *slog.Logger

	stores *lru.Cache
	loads  singleflight.Group

	// mu orders store registration against OnChange.
	mu        sync.Mutex
	listeners []Listener
}

func NewCarts(repo CartStateRepo, m Metrics, log *slog.Logger) *Carts {
	return NewCartsWithLimit(repo, m, log, DefaultMaxSessions)
}

func NewCartsWithLimit(repo CartStateRepo, m Metrics, log *slog.Logger, maxSessions int) *Carts {
	if m == nil {
		m = NopMetrics{}
	}
	if log == nil {
		log = slog.Default()
	}
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	stores, _ := lru.New(maxSessions) // only errors on a non-positive size
	return &Carts{repo: repo, metrics: m, log: log, stores: stores}
}

// OnChange attaches fn to every store, including ones opened later.
func (c *Carts) OnChange(fn Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
	for _, k := range c.stores.Keys() {
		if v, ok := c.stores.Peek(k); ok {
			v.(*CartStore).Subscribe(fn)
		}
	}
}

// Len is the number of stores held in memory.
func (c *Carts) Len() int { return c.stores.Len() }

// Open returns the store for session, loading it if needed. Concurrent opens
// of one session share a single repo load; other sessions are never blocked
// by it. A malformed persisted entry is logged and replaced by an empty cart;
// only repo failures are returned.
func (c *Carts) Open(ctx context.Context, session string) (*CartStore, error) {
	if !ValidSessionID(session) {
		return nil, ErrSessionRequired
	}
	if v, ok := c.stores.Get(session); ok {
		return v.(*CartStore), nil
	}

	v, err, _ := c.loads.Do(session, func() (any, error) {
		if v, ok := c.stores.Get(session); ok {
			return v, nil
		}
		return c.load(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	return v.(*CartStore), nil
}

func (c *Carts) load(ctx context.Context, session string) (*CartStore, error) {
	data, err := c.repo.Load(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("load cart %s: %w", session, err)
	}
	items, ok := DecodeCart(data)
	if !ok {
		c.log.Warn("malformed persisted cart, starting empty", "session", session, "bytes", len(data))
	}

	s := newCartStore(session, items, c.repo, c.metrics, c.log)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, fn := range c.listeners {
		s.Subscribe(fn)
	}
	c.stores.Add(session, s)
	return s, nil
}
