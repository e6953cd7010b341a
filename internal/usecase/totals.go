package usecase

import (
	"math"

	domain "github.com/aq2208/storefront-api/internal/entity"
)

// lineTotal is price*qty, saturating at math.MaxInt64. Negative inputs give 0.
func lineTotal(price int64, qty int) int64 {
	if price <= 0 || qty <= 0 {
		return 0
	}
	if price > math.MaxInt64/int64(qty) {
		return math.MaxInt64
	}
	return price * int64(qty)
}

// addAmount sums two non-negative amounts, saturating at math.MaxInt64.
func addAmount(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// ComputeTotals walks the catalog, not the cart, so ordering is stable and
// ids that left the catalog are ignored.
func ComputeTotals(catalog *domain.Catalog, cart QuantityReader) domain.Totals {
	var t domain.Totals
	catalog.Each(func(p domain.Product) {
		q := cart.Quantity(p.ID)
		if q <= 0 {
			return
		}
		t.Subtotal = addAmount(t.Subtotal, lineTotal(p.Price, q))
		t.ItemCount += q
	})
	t.Total = t.Subtotal
	return t
}

// LineItems lists the selected products in catalog order.
func LineItems(catalog *domain.Catalog, cart QuantityReader) []domain.LineItem {
	var out []domain.LineItem
	catalog.Each(func(p domain.Product) {
		q := cart.Quantity(p.ID)
		if q <= 0 {
			return
		}
		out = append(out, domain.LineItem{Product: p, Quantity: q, LineTotal: lineTotal(p.Price, q)})
	})
	return out
}
