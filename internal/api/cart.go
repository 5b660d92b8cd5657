package api

import (
	"context"
	"net/http"

	"github.com/fjod/go_shop/internal/domain"
)

type addItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type updateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type checkoutResponseDTO struct {
	OrderID string `json:"order_id"`
}

// FetchCart returns the authoritative cart for the current identity.
func (c *Client) FetchCart(ctx context.Context) ([]domain.CartLine, error) {
	var lines []domain.CartLine
	if err := c.Do(ctx, http.MethodGet, "/api/cart", nil, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (c *Client) AddItem(ctx context.Context, productID string, quantity int) error {
	return c.Do(ctx, http.MethodPost, "/api/cart/add", addItemRequestDTO{ProductID: productID, Quantity: quantity}, nil)
}

func (c *Client) UpdateQuantity(ctx context.Context, lineID string, quantity int) error {
	return c.Do(ctx, http.MethodPut, "/api/cart/"+lineID, updateQuantityRequestDTO{Quantity: quantity}, nil)
}

func (c *Client) RemoveLine(ctx context.Context, lineID string) error {
	return c.Do(ctx, http.MethodDelete, "/api/cart/"+lineID, nil, nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.Do(ctx, http.MethodDelete, "/api/cart", nil, nil)
}

// Checkout creates an order from the server-side cart and returns its id.
func (c *Client) Checkout(ctx context.Context) (string, error) {
	var resp checkoutResponseDTO
	if err := c.Do(ctx, http.MethodPost, "/api/orders", nil, &resp); err != nil {
		return "", err
	}
	return resp.OrderID, nil
}

func (c *Client) Orders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.Do(ctx, http.MethodGet, "/api/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) Order(ctx context.Context, orderID string) (domain.Order, error) {
	var order domain.Order
	if err := c.Do(ctx, http.MethodGet, "/api/orders/"+orderID, nil, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}
