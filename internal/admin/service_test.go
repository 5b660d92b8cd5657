package admin

import (
	"context"
	"testing"

	"github.com/fjod/go_shop/internal/api"
	"github.com/fjod/go_shop/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAPI struct {
	calls int

	createdID string
	orders    []domain.Order
	users     []domain.User
	stats     domain.DashboardStats
	err       error

	gotStatus domain.OrderStatus
}

func (m *mockAPI) CreateProduct(context.Context, api.ProductInput) (string, error) {
	m.calls++
	return m.createdID, m.err
}

func (m *mockAPI) UpdateProduct(context.Context, string, api.ProductUpdate) error {
	m.calls++
	return m.err
}

func (m *mockAPI) DeleteProduct(context.Context, string) error {
	m.calls++
	return m.err
}

func (m *mockAPI) AllOrders(context.Context) ([]domain.Order, error) {
	m.calls++
	return m.orders, m.err
}

func (m *mockAPI) UpdateOrderStatus(_ context.Context, _ string, status domain.OrderStatus) error {
	m.calls++
	m.gotStatus = status
	return m.err
}

func (m *mockAPI) AllUsers(context.Context) ([]domain.User, error) {
	m.calls++
	return m.users, m.err
}

func (m *mockAPI) Dashboard(context.Context) (domain.DashboardStats, error) {
	m.calls++
	return m.stats, m.err
}

type mockSession struct {
	user   domain.User
	authed bool
}

func (m *mockSession) Current() (domain.User, bool) {
	return m.user, m.authed
}

func adminSession() *mockSession {
	return &mockSession{user: domain.User{ID: "u1", Role: domain.RoleAdmin}, authed: true}
}

func TestGuard_BlocksWithoutAdminIdentity(t *testing.T) {
	sessions := map[string]*mockSession{
		"anonymous": {},
		"non-admin": {user: domain.User{ID: "u2", Role: domain.RoleUser}, authed: true},
	}

	for name, sess := range sessions {
		t.Run(name, func(t *testing.T) {
			apiMock := &mockAPI{}
			sut := NewService(apiMock, sess)
			ctx := context.Background()

			_, err := sut.CreateProduct(ctx, api.ProductInput{Name: "X"})
			require.ErrorIs(t, err, ErrNotAdmin)
			require.ErrorIs(t, sut.UpdateProduct(ctx, "p1", api.ProductUpdate{}), ErrNotAdmin)
			require.ErrorIs(t, sut.DeleteProduct(ctx, "p1"), ErrNotAdmin)
			_, err = sut.Orders(ctx)
			require.ErrorIs(t, err, ErrNotAdmin)
			require.ErrorIs(t, sut.UpdateOrderStatus(ctx, "o1", domain.OrderStatusShipped), ErrNotAdmin)
			_, err = sut.Users(ctx)
			require.ErrorIs(t, err, ErrNotAdmin)
			_, err = sut.Dashboard(ctx)
			require.ErrorIs(t, err, ErrNotAdmin)

			assert.Zero(t, apiMock.calls, "guarded calls must never reach the network")
		})
	}
}

func TestCreateProduct_Admin(t *testing.T) {
	apiMock := &mockAPI{createdID: "p9"}
	sut := NewService(apiMock, adminSession())

	id, err := sut.CreateProduct(context.Background(), api.ProductInput{
		Name:  "Monitor",
		Price: decimal.RequireFromString("199.99"),
		Stock: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, "p9", id)
}

func TestUpdateOrderStatus_RejectsUnknownStatus(t *testing.T) {
	apiMock := &mockAPI{}
	sut := NewService(apiMock, adminSession())

	err := sut.UpdateOrderStatus(context.Background(), "o1", domain.OrderStatus("teleported"))
	require.Error(t, err)
	assert.Zero(t, apiMock.calls, "an invalid status must be rejected locally")
}

func TestUpdateOrderStatus_ForwardsValidStatus(t *testing.T) {
	apiMock := &mockAPI{}
	sut := NewService(apiMock, adminSession())

	require.NoError(t, sut.UpdateOrderStatus(context.Background(), "o1", domain.OrderStatusDelivered))
	assert.Equal(t, domain.OrderStatusDelivered, apiMock.gotStatus)
}

func TestDashboard_Admin(t *testing.T) {
	apiMock := &mockAPI{stats: domain.DashboardStats{
		TotalUsers:    3,
		TotalOrders:   2,
		TotalProducts: 6,
		TotalRevenue:  decimal.RequireFromString("1049.97"),
	}}
	sut := NewService(apiMock, adminSession())

	stats, err := sut.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalUsers)
	assert.True(t, stats.TotalRevenue.Equal(decimal.RequireFromString("1049.97")))
}
