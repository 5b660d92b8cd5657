package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fjod/go_shop/internal/domain"
)

// Products lists the catalog, optionally narrowed by category and/or a
// free-text search over name and description.
func (c *Client) Products(ctx context.Context, category, search string) ([]domain.Product, error) {
	query := url.Values{}
	if category != "" {
		query.Set("category", category)
	}
	if search != "" {
		query.Set("search", search)
	}

	endpoint := "/api/products"
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var products []domain.Product
	if err := c.Do(ctx, http.MethodGet, endpoint, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) Product(ctx context.Context, productID string) (domain.Product, error) {
	var product domain.Product
	if err := c.Do(ctx, http.MethodGet, "/api/products/"+productID, nil, &product); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.Do(ctx, http.MethodGet, "/api/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}
