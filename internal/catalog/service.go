package catalog

import (
	"context"
	"fmt"

	"github.com/fjod/go_shop/internal/domain"
)

// API is the catalog slice of the remote service, satisfied by api.Client.
type API interface {
	Products(ctx context.Context, category, search string) ([]domain.Product, error)
	Product(ctx context.Context, productID string) (domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

// Filter narrows a product listing. Zero value lists everything.
type Filter struct {
	Category string
	Search   string
}

// Service exposes read-only catalog browsing. Catalog data is reference data:
// the service holds no state and every call reflects the server.
type Service struct {
	api API
}

func NewService(api API) *Service {
	return &Service{api: api}
}

func (s *Service) Products(ctx context.Context, f Filter) ([]domain.Product, error) {
	products, err := s.api.Products(ctx, f.Category, f.Search)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *Service) Product(ctx context.Context, productID string) (domain.Product, error) {
	product, err := s.api.Product(ctx, productID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.api.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}
