package repo

import (
	"context"
	"fmt"
	"os"

	domain "github.com/aq2208/storefront-api/internal/entity"
	"github.com/aq2208/storefront-api/internal/usecase"
	"gopkg.in/yaml.v3"
)

// FileCatalogRepo reads a YAML (or JSON) list of products.
type FileCatalogRepo struct{ path string }

func NewFileCatalogRepo(path string) *FileCatalogRepo { return &FileCatalogRepo{path: path} }

func (r *FileCatalogRepo) ListProducts(_ context.Context) ([]domain.Product, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(raw)
}

func ParseCatalog(raw []byte) ([]domain.Product, error) {
	var out []domain.Product
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for i, p := range out {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("catalog entry %d (%q): %w", i, p.ID, err)
		}
	}
	return out, nil
}

var _ usecase.CatalogSource = (*FileCatalogRepo)(nil)
