package usecase

import (
	"context"
	"errors"
	"sync"

	domain "github.com/aq2208/storefront-api/internal/entity"
)

var ErrCheckoutClosed = errors.New("checkout is not open")

// CheckoutView is everything the presentation layer needs for the checkout
// panel. It is derived fresh on every call.
type CheckoutView struct {
	Totals   domain.Totals
	Decision domain.Decision
	Note     string
	Location string
	Message  domain.Message
	Text     string
	HTML     string
	ChatURL  string
	EmailURL string
	Notice   string
}

// Storefront bundles the pure pieces that every checkout shares.
type Storefront struct {
	Catalog *domain.Catalog
	Builder MessageBuilder
	Handoff Handoff
}

// Checkout is the ephemeral fulfillment selection for one cart session.
type Checkout struct {
	store   *CartStore
	front   Storefront
	metrics Metrics

	mu     sync.Mutex // taken before the store's lock, never after
	open   bool
	sel    domain.Selection
	notice string
}

func newCheckout(store *CartStore, front Storefront, m Metrics) *Checkout {
	c := &Checkout{store: store, front: front, metrics: m, sel: domain.DefaultSelection()}
	store.Subscribe(c.onCartChange)
	return c
}

// Open starts checkout with default selection. It is refused when the cart
// has no items.
func (c *Checkout) Open() bool {
	t := ComputeTotals(c.front.Catalog, c.store.Snapshot())
	if t.ItemCount == 0 {
		c.metrics.CheckoutRefused()
		return false
	}

	c.mu.Lock()
	c.open = true
	c.sel = domain.DefaultSelection()
	c.notice = ""
	c.mu.Unlock()

	c.metrics.CheckoutOpened()
	return true
}

func (c *Checkout) Close() {
	c.mu.Lock()
	c.open = false
	c.notice = ""
	c.mu.Unlock()
}

func (c *Checkout) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// SelectMode records the requested mode and re-applies the policy, so a
// delivery request on an ineligible cart lands on pickup.
func (c *Checkout) SelectMode(mode domain.Mode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return ErrCheckoutClosed
	}
	c.sel.Requested = mode
	c.reconcileLocked(c.store.Snapshot())
	return nil
}

func (c *Checkout) SetLocation(location string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return ErrCheckoutClosed
	}
	c.sel.Location = location
	return nil
}

func (c *Checkout) DismissNotice() {
	c.mu.Lock()
	c.notice = ""
	c.mu.Unlock()
}

func (c *Checkout) View() (CheckoutView, error) {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return CheckoutView{}, ErrCheckoutClosed
	}
	sel, notice := c.sel, c.notice
	c.mu.Unlock()

	cart := c.store.Snapshot()
	f := c.front
	totals := ComputeTotals(f.Catalog, cart)
	msg := f.Builder.Build(f.Catalog, cart, sel)
	text := Text(msg)
	c.metrics.MessageBuilt()

	return CheckoutView{
		Totals:   totals,
		Decision: f.Builder.Policy.Evaluate(totals.Subtotal, sel.Requested),
		Note:     f.Builder.Policy.Note(totals.Subtotal, f.Builder.Money),
		Location: sel.Location,
		Message:  msg,
		Text:     text,
		HTML:     HTML(msg),
		ChatURL:  f.Handoff.ChatURL(text),
		EmailURL: f.Handoff.EmailURL(text),
		Notice:   notice,
	}, nil
}

// onCartChange re-reads the store rather than trusting the event payload.
func (c *Checkout) onCartChange(CartEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return
	}
	c.reconcileLocked(c.store.Snapshot())
}

// reconcileLocked forces the selection back to pickup once delivery is no
// longer allowed and leaves a notice for the shopper.
func (c *Checkout) reconcileLocked(cart QuantityReader) {
	f := c.front
	t := ComputeTotals(f.Catalog, cart)
	d := f.Builder.Policy.Evaluate(t.Subtotal, c.sel.Requested)
	if !d.Downgraded {
		return
	}
	c.sel.Requested = domain.ModePickup
	c.notice = "Delivery was switched to pickup: it needs an order above " +
		f.Builder.Money.Format(f.Builder.Policy.Threshold) + "."
	c.metrics.DeliveryDowngraded()
}

// Checkouts hands out the Checkout bound to each session's store. A checkout
// lives exactly as long as its store stays in the Carts registry.
type Checkouts struct {
	carts   *Carts
	front   Storefront
	metrics Metrics
}

func NewCheckouts(carts *Carts, front Storefront, m Metrics) *Checkouts {
	if m == nil {
		m = NopMetrics{}
	}
	return &Checkouts{carts: carts, front: front, metrics: m}
}

func (cs *Checkouts) Get(ctx context.Context, session string) (*Checkout, error) {
	store, err := cs.carts.Open(ctx, session)
	if err != nil {
		return nil, err
	}
	store.coOnce.Do(func() {
		store.checkout = newCheckout(store, cs.front, cs.metrics)
	})
	return store.checkout, nil
}
