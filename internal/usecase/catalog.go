package usecase

import (
	"context"
	"fmt"
	"log/slog"

	domain "github.com/aq2208/storefront-api/internal/entity"
)

// LoadCatalog pulls products from src once. Repeated ids are reported as a
// warning and kept; the cart, keyed by id, treats them as one product.
func LoadCatalog(ctx context.Context, src CatalogSource, log *slog.Logger) (*domain.Catalog, error) {
	products, err := src.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	c := domain.NewCatalog(products)
	if dups := c.DuplicateIDs(); len(dups) > 0 && log != nil {
		log.Warn("duplicate product ids found", "ids", dups)
	}
	return c, nil
}
