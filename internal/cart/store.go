package cart

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// autoRefreshTimeout bounds the background refresh issued when the identity
// changes under the store.
const autoRefreshTimeout = 10 * time.Second

// Store caches the cart locally and mediates every mutation through the
// Gateway. The server is ground truth: each successful mutation reconciles by
// re-fetching the whole cart rather than patching local lines, so stock
// checks, price changes and concurrent mutations from other clients are
// always reflected.
//
// Mutations are serialized: one mutation, including its reconciling refresh,
// holds the mutation lock at a time. Plain Refresh calls are deduplicated but
// not ordered against each other, so of two racing refreshes the
// last-resolved one wins; the next refresh converges regardless.
type Store struct {
	gw      Gateway
	session Session
	sfg     singleflight.Group

	// mutMu serializes mutators end to end.
	mutMu sync.Mutex

	mu      sync.Mutex
	lines   []domain.CartLine
	pending bool
	userID  string
	authed  bool

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

// NewStore builds the store and wires it to the session: entering
// Authenticated triggers a background refresh, leaving it resets the cart,
// since cart contents only exist for a present identity.
func NewStore(gw Gateway, session Session) *Store {
	s := &Store{
		gw:      gw,
		session: session,
		subs:    make(map[int]func()),
	}
	user, authed := session.Current()
	s.userID, s.authed = user.ID, authed
	session.Subscribe(s.onIdentityChange)
	return s
}

func (s *Store) onIdentityChange() {
	user, authed := s.session.Current()

	s.mu.Lock()
	changed := s.authed != authed || s.userID != user.ID
	s.authed = authed
	s.userID = user.ID
	s.mu.Unlock()
	if !changed {
		return
	}

	if !authed {
		s.replaceLines(nil)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), autoRefreshTimeout)
		defer cancel()
		if err := s.Refresh(ctx); err != nil {
			log.Printf("cart: refresh on identity change: %v", err)
		}
	}()
}

// Refresh fetches the authoritative cart and replaces local state wholesale.
// A response that resolves after the identity moved on (say a logout raced
// the request) is discarded rather than applied.
func (s *Store) Refresh(ctx context.Context) error {
	if _, ok := s.session.Current(); !ok {
		return ErrNotAuthenticated
	}

	// Concurrent refreshes collapse into one request.
	_, err, _ := s.sfg.Do("refresh", func() (interface{}, error) {
		epoch := s.session.Epoch()
		lines, err := s.gw.FetchCart(ctx)
		if err != nil {
			return nil, err
		}
		if s.session.Epoch() != epoch {
			log.Printf("cart: discarding stale refresh result")
			return nil, nil
		}
		s.replaceLines(lines)
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("refresh cart: %w", err)
	}
	return nil
}

// Add requests a server-side add of the product. On failure (say
// insufficient stock) the prior cart state is left untouched.
func (s *Store) Add(ctx context.Context, productID string, quantity int) error {
	return s.mutate(ctx, func() error {
		if err := s.gw.AddItem(ctx, productID, quantity); err != nil {
			return fmt.Errorf("add item: %w", err)
		}
		return nil
	})
}

// SetQuantity updates a line's quantity. A quantity of zero or below means
// removal and is dispatched as a remove request, never as an update carrying
// a non-positive quantity; the store enforces this before dispatch.
func (s *Store) SetQuantity(ctx context.Context, lineID string, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, lineID)
	}
	return s.mutate(ctx, func() error {
		if err := s.gw.UpdateQuantity(ctx, lineID, quantity); err != nil {
			return fmt.Errorf("update quantity: %w", err)
		}
		return nil
	})
}

// Remove deletes exactly that line.
func (s *Store) Remove(ctx context.Context, lineID string) error {
	return s.mutate(ctx, func() error {
		if err := s.gw.RemoveLine(ctx, lineID); err != nil {
			return fmt.Errorf("remove line: %w", err)
		}
		return nil
	})
}

// Clear deletes the entire cart. Emptiness is self-evident on success, so
// local state is set directly with no refetch.
func (s *Store) Clear(ctx context.Context) error {
	if _, ok := s.session.Current(); !ok {
		return ErrNotAuthenticated
	}
	s.mutMu.Lock()
	defer s.mutMu.Unlock()
	s.setPending(true)
	defer s.setPending(false)

	if err := s.gw.ClearCart(ctx); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	s.replaceLines(nil)
	return nil
}

// Checkout creates an order from the current server-side cart. On success
// the server has consumed the cart, so local state is emptied directly and
// the new order id returned; on failure the cart is left untouched.
func (s *Store) Checkout(ctx context.Context) (string, error) {
	if _, ok := s.session.Current(); !ok {
		return "", ErrNotAuthenticated
	}
	s.mutMu.Lock()
	defer s.mutMu.Unlock()
	s.setPending(true)
	defer s.setPending(false)

	orderID, err := s.gw.Checkout(ctx)
	if err != nil {
		return "", fmt.Errorf("checkout: %w", err)
	}
	s.replaceLines(nil)
	return orderID, nil
}

// mutate runs one guarded, serialized mutation followed by a reconciling
// refresh.
func (s *Store) mutate(ctx context.Context, op func() error) error {
	if _, ok := s.session.Current(); !ok {
		return ErrNotAuthenticated
	}
	s.mutMu.Lock()
	defer s.mutMu.Unlock()
	s.setPending(true)
	defer s.setPending(false)

	if err := op(); err != nil {
		return err
	}
	// A refresh joining a fetch that started before the mutation would adopt
	// pre-mutation data, so force a fresh one.
	s.sfg.Forget("refresh")
	return s.Refresh(ctx)
}

// Lines returns a copy of the cached cart.
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// Subtotal is computed over the last reconciled state, never over lines a
// mutation is still in flight for.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Subtotal(s.lines)
}

func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.ItemCount(s.lines)
}

// Pending reports whether a mutation is in flight.
func (s *Store) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *Store) replaceLines(lines []domain.CartLine) {
	s.mu.Lock()
	s.lines = lines
	s.mu.Unlock()
	s.notify()
}

func (s *Store) setPending(v bool) {
	s.mu.Lock()
	if s.pending == v {
		s.mu.Unlock()
		return
	}
	s.pending = v
	s.mu.Unlock()
	s.notify()
}

// Subscribe registers a listener called after every committed state change,
// including pending-flag flips. The returned function unsubscribes it.
func (s *Store) Subscribe(fn func()) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	listeners := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.subMu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}
