package repo

import (
	"context"
	"database/sql"
	"fmt"

	domain "github.com/aq2208/storefront-api/internal/entity"
	"github.com/aq2208/storefront-api/internal/usecase"
)

const listProductsSQL = `
SELECT id,name,price,unit,image
FROM products
WHERE active = 1
ORDER BY position, id`

type MySQLCatalogRepo struct{ db *sql.DB }

func NewMySQLCatalogRepo(db *sql.DB) *MySQLCatalogRepo { return &MySQLCatalogRepo{db: db} }

func (r *MySQLCatalogRepo) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var (
			p     domain.Product
			image sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Unit, &image); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Image = image.String
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("product %q: %w", p.ID, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return out, nil
}

var _ usecase.CatalogSource = (*MySQLCatalogRepo)(nil)
