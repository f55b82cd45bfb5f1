package catalog

import (
	"context"
	"errors"

	"github.com/noah-isme/backend-kasir/internal/db"
	"github.com/noah-isme/backend-kasir/internal/pricing"
)

const productsCacheKey = "catalog:products"

// Querier captures the database methods required by the catalog service.
type Querier interface {
	ListProducts(ctx context.Context) ([]db.Product, error)
}

// Product is the public product payload.
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Brand    string `json:"brand,omitempty"`
	Price    int64  `json:"price"`
}

// Service serves the product catalog with a Redis read-through cache.
type Service struct {
	Q     Querier
	Cache *Cache
}

// ListProducts returns the full catalog, cache first.
func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	if s == nil || s.Q == nil {
		return nil, errors.New("catalog service not configured")
	}
	var cached []Product
	if hit, err := s.Cache.GetJSON(ctx, productsCacheKey, &cached); err == nil && hit {
		return cached, nil
	}
	rows, err := s.Q.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	products := make([]Product, 0, len(rows))
	for _, row := range rows {
		p := Product{
			ID:       row.ID,
			Name:     row.Name,
			Category: row.Category,
			Price:    row.Price,
		}
		if row.Brand.Valid {
			p.Brand = row.Brand.String
		}
		products = append(products, p)
	}
	_ = s.Cache.SetJSON(ctx, productsCacheKey, products)
	return products, nil
}

// NameMap returns a product id to display name lookup used to enrich
// invoice payloads.
func (s *Service) NameMap(ctx context.Context) (map[string]string, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}
	return names, nil
}

// Items converts catalog products into solver items, used by the
// recommendation service to enumerate add-on candidates.
func (s *Service) Items(ctx context.Context) ([]pricing.Item, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]pricing.Item, 0, len(products))
	for _, p := range products {
		items = append(items, pricing.Item{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price,
			Category: p.Category,
			Brand:    p.Brand,
		})
	}
	return items, nil
}

// Invalidate drops the cached catalog.
func (s *Service) Invalidate(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.Cache.Delete(ctx, productsCacheKey)
}
