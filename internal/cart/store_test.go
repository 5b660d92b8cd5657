package cart

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_shop/internal/api"
	"github.com/fjod/go_shop/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSession struct {
	mu     sync.Mutex
	user   domain.User
	authed bool
	epoch  uint64
	subs   []func()
}

func (m *mockSession) Current() (domain.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user, m.authed
}

func (m *mockSession) Epoch() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.epoch
}

func (m *mockSession) Subscribe(fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
	return func() {}
}

func (m *mockSession) setIdentity(user domain.User, authed bool) {
	m.mu.Lock()
	m.user = user
	m.authed = authed
	m.epoch++
	listeners := make([]func(), len(m.subs))
	copy(listeners, m.subs)
	m.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

type gatewayCall struct {
	op  string
	arg string
	qty int
}

type mockGateway struct {
	mu    sync.Mutex
	cart  []domain.CartLine // what FetchCart returns
	calls []gatewayCall

	fetchErr    error
	addErr      error
	updateErr   error
	removeErr   error
	clearErr    error
	checkoutErr error
	checkoutID  string

	// When non-nil, FetchCart signals fetchStarted and blocks on
	// fetchRelease.
	fetchStarted chan struct{}
	fetchRelease chan struct{}
}

func (m *mockGateway) record(op, arg string, qty int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, gatewayCall{op: op, arg: arg, qty: qty})
}

func (m *mockGateway) ops() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ops := make([]string, len(m.calls))
	for i, c := range m.calls {
		ops[i] = c.op
	}
	return ops
}

func (m *mockGateway) countOp(op string) int {
	n := 0
	for _, o := range m.ops() {
		if o == op {
			n++
		}
	}
	return n
}

func (m *mockGateway) FetchCart(context.Context) ([]domain.CartLine, error) {
	m.record("fetch", "", 0)
	if m.fetchStarted != nil {
		m.fetchStarted <- struct{}{}
		<-m.fetchRelease
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	out := make([]domain.CartLine, len(m.cart))
	copy(out, m.cart)
	return out, nil
}

func (m *mockGateway) AddItem(_ context.Context, productID string, quantity int) error {
	m.record("add", productID, quantity)
	return m.addErr
}

func (m *mockGateway) UpdateQuantity(_ context.Context, lineID string, quantity int) error {
	m.record("update", lineID, quantity)
	return m.updateErr
}

func (m *mockGateway) RemoveLine(_ context.Context, lineID string) error {
	m.record("remove", lineID, 0)
	return m.removeErr
}

func (m *mockGateway) ClearCart(context.Context) error {
	m.record("clear", "", 0)
	return m.clearErr
}

func (m *mockGateway) Checkout(context.Context) (string, error) {
	m.record("checkout", "", 0)
	if m.checkoutErr != nil {
		return "", m.checkoutErr
	}
	return m.checkoutID, nil
}

func (m *mockGateway) setCart(lines []domain.CartLine) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cart = lines
}

func authedSession() *mockSession {
	return &mockSession{
		user:   domain.User{ID: "u1", Name: "Alice", Role: domain.RoleUser},
		authed: true,
		epoch:  1,
	}
}

func fixtureLine(id, productID string, qty int, price string) domain.CartLine {
	return domain.CartLine{
		ID: id,
		Product: domain.Product{
			ID:    productID,
			Name:  "Product " + productID,
			Price: decimal.RequireFromString(price),
			Stock: 10,
		},
		Quantity: qty,
	}
}

func TestAdd_Anonymous_NoNetworkCall(t *testing.T) {
	gw := &mockGateway{}
	sut := NewStore(gw, &mockSession{})

	err := sut.Add(context.Background(), "p1", 1)
	require.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Empty(t, gw.ops())
	assert.Empty(t, sut.Lines())
}

func TestMutators_Anonymous_AllGuarded(t *testing.T) {
	gw := &mockGateway{}
	sut := NewStore(gw, &mockSession{})
	ctx := context.Background()

	require.ErrorIs(t, sut.Refresh(ctx), ErrNotAuthenticated)
	require.ErrorIs(t, sut.SetQuantity(ctx, "c1", 3), ErrNotAuthenticated)
	require.ErrorIs(t, sut.SetQuantity(ctx, "c1", 0), ErrNotAuthenticated)
	require.ErrorIs(t, sut.Remove(ctx, "c1"), ErrNotAuthenticated)
	require.ErrorIs(t, sut.Clear(ctx), ErrNotAuthenticated)
	_, err := sut.Checkout(ctx)
	require.ErrorIs(t, err, ErrNotAuthenticated)

	assert.Empty(t, gw.ops())
}

func TestRefresh_ReplacesStateWholesale(t *testing.T) {
	gw := &mockGateway{cart: []domain.CartLine{fixtureLine("c1", "p1", 2, "999.99")}}
	sut := NewStore(gw, authedSession())

	require.NoError(t, sut.Refresh(context.Background()))
	lines := sut.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "c1", lines[0].ID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, 2, sut.ItemCount())
	assert.True(t, sut.Subtotal().Equal(decimal.RequireFromString("1999.98")))
}

func TestLogin_TriggersAutomaticRefresh(t *testing.T) {
	gw := &mockGateway{cart: []domain.CartLine{fixtureLine("c1", "p1", 2, "10.00")}}
	sess := &mockSession{}
	sut := NewStore(gw, sess)

	sess.setIdentity(domain.User{ID: "u1"}, true)

	require.Eventually(t, func() bool {
		lines := sut.Lines()
		return len(lines) == 1 && lines[0].ID == "c1" && lines[0].Quantity == 2
	}, time.Second, 10*time.Millisecond, "cart was not populated after login")
}

func TestLogout_ResetsCartLocally(t *testing.T) {
	gw := &mockGateway{cart: []domain.CartLine{fixtureLine("c1", "p1", 1, "10.00")}}
	sess := authedSession()
	sut := NewStore(gw, sess)
	require.NoError(t, sut.Refresh(context.Background()))
	require.NotEmpty(t, sut.Lines())

	fetches := gw.countOp("fetch")
	sess.setIdentity(domain.User{}, false)

	assert.Empty(t, sut.Lines())
	assert.Equal(t, fetches, gw.countOp("fetch"), "logout must not hit the network")
}

func TestAdd_Success_ReconcilesByRefresh(t *testing.T) {
	gw := &mockGateway{}
	sut := NewStore(gw, authedSession())

	gw.setCart([]domain.CartLine{fixtureLine("c1", "p1", 1, "10.00")})
	require.NoError(t, sut.Add(context.Background(), "p1", 1))

	assert.Equal(t, []string{"add", "fetch"}, gw.ops())
	require.Len(t, sut.Lines(), 1)
	assert.Equal(t, 1, sut.Lines()[0].Quantity)
}

func TestAdd_InsufficientStock_LeavesCartUntouched(t *testing.T) {
	gw := &mockGateway{cart: []domain.CartLine{fixtureLine("c1", "p1", 2, "10.00")}}
	sut := NewStore(gw, authedSession())
	require.NoError(t, sut.Refresh(context.Background()))
	fetches := gw.countOp("fetch")

	gw.addErr = &api.Error{Status: http.StatusBadRequest, Message: "insufficient stock"}
	err := sut.Add(context.Background(), "p1", 1)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "insufficient stock", apiErr.Message)

	lines := sut.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity, "failed mutation must not change local state")
	assert.Equal(t, fetches, gw.countOp("fetch"), "failed mutation must not reconcile")
}

func TestSetQuantity_NonPositive_DispatchesRemove(t *testing.T) {
	for _, qty := range []int{0, -1, -100} {
		gw := &mockGateway{}
		sut := NewStore(gw, authedSession())

		require.NoError(t, sut.SetQuantity(context.Background(), "c1", qty))

		assert.Equal(t, []string{"remove", "fetch"}, gw.ops())
		assert.Zero(t, gw.countOp("update"), "qty %d must never dispatch an update", qty)
	}
}

func TestSetQuantity_Positive_DispatchesUpdate(t *testing.T) {
	gw := &mockGateway{}
	sut := NewStore(gw, authedSession())

	require.NoError(t, sut.SetQuantity(context.Background(), "c1", 3))

	assert.Equal(t, []string{"update", "fetch"}, gw.ops())
	m := gw.calls[0]
	assert.Equal(t, "c1", m.arg)
	assert.Equal(t, 3, m.qty)
}

func TestClear_EmptiesLocallyWithoutRefetch(t *testing.T) {
	gw := &mockGateway{cart: []domain.CartLine{fixtureLine("c1", "p1", 1, "10.00")}}
	sut := NewStore(gw, authedSession())
	require.NoError(t, sut.Refresh(context.Background()))
	fetches := gw.countOp("fetch")

	require.NoError(t, sut.Clear(context.Background()))

	assert.Empty(t, sut.Lines())
	assert.Equal(t, fetches, gw.countOp("fetch"), "clear needs no reconciliation")
}

func TestCheckout_Success_ConsumesCart(t *testing.T) {
	gw := &mockGateway{
		cart: []domain.CartLine{
			fixtureLine("c1", "p1", 1, "10.00"),
			fixtureLine("c2", "p2", 2, "5.00"),
		},
		checkoutID: "order-42",
	}
	sut := NewStore(gw, authedSession())
	require.NoError(t, sut.Refresh(context.Background()))
	fetches := gw.countOp("fetch")

	orderID, err := sut.Checkout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "order-42", orderID)
	assert.Empty(t, sut.Lines())
	assert.Equal(t, fetches, gw.countOp("fetch"), "checkout needs no reconciliation")
}

func TestCheckout_Failure_LeavesCartUntouched(t *testing.T) {
	gw := &mockGateway{cart: []domain.CartLine{fixtureLine("c1", "p1", 1, "10.00")}}
	sut := NewStore(gw, authedSession())
	require.NoError(t, sut.Refresh(context.Background()))

	gw.checkoutErr = &api.Error{Status: http.StatusBadRequest, Message: "Cart is empty"}
	_, err := sut.Checkout(context.Background())
	require.Error(t, err)
	assert.Len(t, sut.Lines(), 1)
}

func TestRefresh_StaleResponseAfterLogout_Discarded(t *testing.T) {
	gw := &mockGateway{
		cart:         []domain.CartLine{fixtureLine("c1", "p1", 2, "10.00")},
		fetchStarted: make(chan struct{}),
		fetchRelease: make(chan struct{}),
	}
	sess := authedSession()
	sut := NewStore(gw, sess)

	done := make(chan error, 1)
	go func() {
		done <- sut.Refresh(context.Background())
	}()

	<-gw.fetchStarted
	// The identity moves on while the fetch is still in flight.
	sess.setIdentity(domain.User{}, false)
	close(gw.fetchRelease)

	require.NoError(t, <-done)
	assert.Empty(t, sut.Lines(), "stale refresh result must not repopulate the cart")
}

func TestConvergence_FinalStateEqualsLastResolvedRefresh(t *testing.T) {
	gw := &mockGateway{}
	sut := NewStore(gw, authedSession())
	ctx := context.Background()

	gw.setCart([]domain.CartLine{fixtureLine("c1", "p1", 1, "10.00")})
	require.NoError(t, sut.Add(ctx, "p1", 1))

	gw.setCart([]domain.CartLine{fixtureLine("c1", "p1", 3, "10.00")})
	require.NoError(t, sut.SetQuantity(ctx, "c1", 3))

	gw.setCart([]domain.CartLine{
		fixtureLine("c1", "p1", 3, "10.00"),
		fixtureLine("c2", "p2", 1, "5.00"),
	})
	require.NoError(t, sut.Add(ctx, "p2", 1))

	final, err := gw.FetchCart(ctx)
	require.NoError(t, err)
	assert.Equal(t, final, sut.Lines(), "local state must equal the server's state")
}

func TestRefresh_Error_KeepsPriorState(t *testing.T) {
	gw := &mockGateway{cart: []domain.CartLine{fixtureLine("c1", "p1", 1, "10.00")}}
	sut := NewStore(gw, authedSession())
	require.NoError(t, sut.Refresh(context.Background()))

	gw.mu.Lock()
	gw.fetchErr = errors.New("boom")
	gw.mu.Unlock()

	require.Error(t, sut.Refresh(context.Background()))
	assert.Len(t, sut.Lines(), 1)
}

func TestPending_SetWhileMutationInFlight(t *testing.T) {
	gw := &mockGateway{
		fetchStarted: make(chan struct{}),
		fetchRelease: make(chan struct{}),
	}
	sut := NewStore(gw, authedSession())

	assert.False(t, sut.Pending())
	done := make(chan error, 1)
	go func() {
		done <- sut.Add(context.Background(), "p1", 1)
	}()

	<-gw.fetchStarted
	assert.True(t, sut.Pending(), "pending must be set during the in-flight mutation")
	close(gw.fetchRelease)
	require.NoError(t, <-done)
	assert.False(t, sut.Pending())
}

func TestSubscribe_NotifiedOnCommit(t *testing.T) {
	gw := &mockGateway{cart: []domain.CartLine{fixtureLine("c1", "p1", 1, "10.00")}}
	sut := NewStore(gw, authedSession())

	var mu sync.Mutex
	notified := 0
	unsubscribe := sut.Subscribe(func() {
		mu.Lock()
		notified++
		mu.Unlock()
	})

	require.NoError(t, sut.Refresh(context.Background()))
	mu.Lock()
	after := notified
	mu.Unlock()
	assert.Positive(t, after)

	unsubscribe()
	require.NoError(t, sut.Refresh(context.Background()))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, after, notified, "unsubscribed listener must not fire")
}
