package domain

import (
	"errors"
	"strings"
)

var ErrInvalidProduct = errors.New("invalid product")

// MaxPrice times the largest storable quantity (2^31-1) still fits in int64.
const MaxPrice int64 = 1_000_000_000

// Product is a catalog entry. Price is in whole currency units.
type Product struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Price int64  `json:"price" yaml:"price"`
	Unit  string `json:"unit" yaml:"unit"`
	Image string `json:"image" yaml:"image"`
}

func (p Product) Validate() error {
	if p.ID == "" || p.Price < 0 || p.Price > MaxPrice {
		return ErrInvalidProduct
	}
	return nil
}

// Catalog is the ordered, read-only product list.
type Catalog struct {
	products []Product
}

// NewCatalog copies products into a catalog. Entries keep their order,
// including ones that repeat an earlier id.
func NewCatalog(products []Product) *Catalog {
	cp := make([]Product, len(products))
	copy(cp, products)
	return &Catalog{products: cp}
}

func (c *Catalog) Products() []Product {
	if c == nil {
		return nil
	}
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.products)
}

// Each calls fn for every product in catalog order.
func (c *Catalog) Each(fn func(Product)) {
	if c == nil {
		return
	}
	for _, p := range c.products {
		fn(p)
	}
}

// Lookup returns the last product carrying id.
func (c *Catalog) Lookup(id string) (Product, bool) {
	var (
		found Product
		ok    bool
	)
	c.Each(func(p Product) {
		if p.ID == id {
			found, ok = p, true
		}
	})
	return found, ok
}

// DuplicateIDs lists every id seen more than once, once per repeat, in order.
// Entries with an empty id are skipped.
func (c *Catalog) DuplicateIDs() []string {
	seen := make(map[string]struct{}, c.Len())
	var dups []string
	c.Each(func(p Product) {
		if p.ID == "" {
			return
		}
		if _, ok := seen[p.ID]; ok {
			dups = append(dups, p.ID)
		}
		seen[p.ID] = struct{}{}
	})
	return dups
}

// Filter returns products whose name contains q, case-insensitively.
// A blank query returns the whole catalog.
func (c *Catalog) Filter(q string) []Product {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return c.Products()
	}
	var out []Product
	c.Each(func(p Product) {
		if strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, p)
		}
	})
	return out
}
