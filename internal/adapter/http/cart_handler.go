package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	domain "github.com/aq2208/storefront-api/internal/entity"
	"github.com/aq2208/storefront-api/internal/logging"
	"github.com/aq2208/storefront-api/internal/usecase"
	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	carts *usecase.Carts
	front usecase.Storefront
}

func NewCartHandler(carts *usecase.Carts, front usecase.Storefront) *CartHandler {
	return &CartHandler{carts: carts, front: front}
}

type setQtyReq struct {
	Qty any `json:"qty"`
}

type deliveryResp struct {
	Eligible bool   `json:"eligible"`
	Note     string `json:"note"`
}

type cartResp struct {
	Session         string            `json:"session"`
	Items           []domain.LineItem `json:"items"`
	Quantities      map[string]int    `json:"quantities"`
	Totals          domain.Totals     `json:"totals"`
	TotalText       string            `json:"total_text"`
	ItemsLabel      string            `json:"items_label"`
	CheckoutAllowed bool              `json:"checkout_allowed"`
	Delivery        deliveryResp      `json:"delivery"`
}

func (h *CartHandler) GetCart(c *gin.Context) {
	h.withStore(c, func(ctx context.Context, s *usecase.CartStore) error { return nil })
}

// SetItem handles PUT /v1/cart/items/:id. Any qty value is accepted and normalized.
func (h *CartHandler) SetItem(c *gin.Context) {
	var req setQtyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	id := c.Param("id")
	qty := coerceQuantity(req.Qty)
	h.withStore(c, func(ctx context.Context, s *usecase.CartStore) error {
		return s.SetQuantity(ctx, id, qty)
	})
}

func (h *CartHandler) Increment(c *gin.Context) {
	id := c.Param("id")
	h.withStore(c, func(ctx context.Context, s *usecase.CartStore) error {
		return s.Increment(ctx, id)
	})
}

func (h *CartHandler) Decrement(c *gin.Context) {
	id := c.Param("id")
	h.withStore(c, func(ctx context.Context, s *usecase.CartStore) error {
		return s.Decrement(ctx, id)
	})
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	h.withStore(c, func(ctx context.Context, s *usecase.CartStore) error {
		return s.Clear(ctx)
	})
}

func (h *CartHandler) withStore(c *gin.Context, fn func(ctx context.Context, s *usecase.CartStore) error) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	store, err := h.carts.Open(ctx, sessionFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if err := fn(ctx, store); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.render(store))
}

func (h *CartHandler) render(s *usecase.CartStore) cartResp {
	snap := s.Snapshot()
	f := h.front
	totals := usecase.ComputeTotals(f.Catalog, snap)
	items := usecase.LineItems(f.Catalog, snap)
	if items == nil {
		items = []domain.LineItem{}
	}
	return cartResp{
		Session:         s.Session(),
		Items:           items,
		Quantities:      snap,
		Totals:          totals,
		TotalText:       f.Builder.Money.Format(totals.Total),
		ItemsLabel:      itemsLabel(totals.ItemCount),
		CheckoutAllowed: totals.ItemCount > 0,
		Delivery: deliveryResp{
			Eligible: f.Builder.Policy.Eligible(totals.Subtotal),
			Note:     f.Builder.Policy.Note(totals.Subtotal, f.Builder.Money),
		},
	}
}

func itemsLabel(n int) string {
	if n == 1 {
		return "1 item"
	}
	return strconv.Itoa(n) + " items"
}

// coerceQuantity maps any JSON value to a number; non-numeric input is 0.
func coerceQuantity(v any) float64 {
	switch q := v.(type) {
	case float64:
		return q
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(q), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, usecase.ErrSessionRequired):
		status, code = http.StatusBadRequest, "session_required"
	case errors.Is(err, usecase.ErrCheckoutClosed):
		status, code = http.StatusConflict, "checkout_closed"
	case errors.Is(err, domain.ErrInvalidMode):
		status, code = http.StatusBadRequest, "invalid_mode"
	case errors.Is(err, usecase.ErrPersist):
		code = "persist_failed"
	}
	if status >= http.StatusInternalServerError {
		logging.From(c).Error("request failed", "err", err)
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": code})
}
