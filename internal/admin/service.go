package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_shop/internal/api"
	"github.com/fjod/go_shop/internal/domain"
)

// ErrNotAdmin is the local guard failure for admin operations without an
// authenticated admin identity. No request is attempted.
var ErrNotAdmin = errors.New("admin access required")

// API is the admin slice of the remote service, satisfied by api.Client.
type API interface {
	CreateProduct(ctx context.Context, input api.ProductInput) (string, error)
	UpdateProduct(ctx context.Context, productID string, update api.ProductUpdate) error
	DeleteProduct(ctx context.Context, productID string) error
	AllOrders(ctx context.Context) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
	AllUsers(ctx context.Context) ([]domain.User, error)
	Dashboard(ctx context.Context) (domain.DashboardStats, error)
}

// Session is the identity surface the guard checks.
type Session interface {
	Current() (domain.User, bool)
}

// Service wraps the admin endpoints behind a local role guard. The server
// enforces the role too; the guard just avoids pointless round trips.
type Service struct {
	api     API
	session Session
}

func NewService(api API, session Session) *Service {
	return &Service{api: api, session: session}
}

func (s *Service) requireAdmin() error {
	user, ok := s.session.Current()
	if !ok || !user.IsAdmin() {
		return ErrNotAdmin
	}
	return nil
}

func (s *Service) CreateProduct(ctx context.Context, input api.ProductInput) (string, error) {
	if err := s.requireAdmin(); err != nil {
		return "", err
	}
	id, err := s.api.CreateProduct(ctx, input)
	if err != nil {
		return "", fmt.Errorf("create product: %w", err)
	}
	return id, nil
}

func (s *Service) UpdateProduct(ctx context.Context, productID string, update api.ProductUpdate) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	if err := s.api.UpdateProduct(ctx, productID, update); err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (s *Service) DeleteProduct(ctx context.Context, productID string) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	if err := s.api.DeleteProduct(ctx, productID); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (s *Service) Orders(ctx context.Context) ([]domain.Order, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}
	orders, err := s.api.AllOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *Service) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	if !domain.ValidOrderStatus(status) {
		return fmt.Errorf("unknown order status %q", status)
	}
	if err := s.api.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return nil
}

func (s *Service) Users(ctx context.Context) ([]domain.User, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}
	users, err := s.api.AllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *Service) Dashboard(ctx context.Context) (domain.DashboardStats, error) {
	if err := s.requireAdmin(); err != nil {
		return domain.DashboardStats{}, err
	}
	stats, err := s.api.Dashboard(ctx)
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("dashboard: %w", err)
	}
	return stats, nil
}
