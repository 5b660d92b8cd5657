package api

import (
	"context"
	"net/http"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/shopspring/decimal"
)

// ProductInput is the payload for creating a product.
type ProductInput struct {
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Price          decimal.Decimal   `json:"price"`
	ImageURL       string            `json:"image_url"`
	Category       string            `json:"category"`
	Stock          int               `json:"stock"`
	Specifications map[string]string `json:"specifications,omitempty"`
}

// ProductUpdate is a partial update; nil fields are left untouched.
type ProductUpdate struct {
	Name           *string            `json:"name,omitempty"`
	Description    *string            `json:"description,omitempty"`
	Price          *decimal.Decimal   `json:"price,omitempty"`
	ImageURL       *string            `json:"image_url,omitempty"`
	Category       *string            `json:"category,omitempty"`
	Stock          *int               `json:"stock,omitempty"`
	Specifications *map[string]string `json:"specifications,omitempty"`
}

type createProductResponseDTO struct {
	ProductID string `json:"product_id"`
}

type orderStatusRequestDTO struct {
	Status domain.OrderStatus `json:"status"`
}

func (c *Client) CreateProduct(ctx context.Context, input ProductInput) (string, error) {
	var resp createProductResponseDTO
	if err := c.Do(ctx, http.MethodPost, "/api/admin/products", input, &resp); err != nil {
		return "", err
	}
	return resp.ProductID, nil
}

func (c *Client) UpdateProduct(ctx context.Context, productID string, update ProductUpdate) error {
	return c.Do(ctx, http.MethodPut, "/api/admin/products/"+productID, update, nil)
}

func (c *Client) DeleteProduct(ctx context.Context, productID string) error {
	return c.Do(ctx, http.MethodDelete, "/api/admin/products/"+productID, nil, nil)
}

// AllOrders lists every order across all users, newest first.
func (c *Client) AllOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.Do(ctx, http.MethodGet, "/api/admin/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	return c.Do(ctx, http.MethodPut, "/api/admin/orders/"+orderID+"/status", orderStatusRequestDTO{Status: status}, nil)
}

func (c *Client) AllUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := c.Do(ctx, http.MethodGet, "/api/admin/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) Dashboard(ctx context.Context) (domain.DashboardStats, error) {
	var stats domain.DashboardStats
	if err := c.Do(ctx, http.MethodGet, "/api/admin/dashboard", nil, &stats); err != nil {
		return domain.DashboardStats{}, err
	}
	return stats, nil
}
