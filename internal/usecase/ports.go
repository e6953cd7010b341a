package usecase

import (
	"context"

	domain "github.com/aq2208/storefront-api/internal/entity"
)

// CartStateRepo persists one raw cart entry per session.
// Load returns (nil, nil) when the session has no entry yet.
type CartStateRepo interface {
	Load(ctx context.Context, session string) ([]byte, error)
	Save(ctx context.Context, session string, data []byte) error
}

// CatalogSource supplies the product list once at startup.
type CatalogSource interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// QuantityReader is anything that answers "how many of this product".
type QuantityReader interface {
	Quantity(productID string) int
}

// Metrics receives domain counters. NopMetrics is used when nil is passed.
type Metrics interface {
	CartMutated()
	CartCleared()
	CheckoutOpened()
	CheckoutRefused()
	DeliveryDowngraded()
	MessageBuilt()
}

type NopMetrics struct{}

func (NopMetrics) CartMutated()        {}
func (NopMetrics) CartCleared()        {}
func (NopMetrics) CheckoutOpened()     {}
func (NopMetrics) CheckoutRefused()    {}
func (NopMetrics) DeliveryDowngraded() {}
func (NopMetrics) MessageBuilt()       {}
