package cart

import (
	"context"
	"errors"

	"github.com/fjod/go_shop/internal/domain"
)

// Gateway is the slice of the remote service the cart store mediates every
// mutation through. Consumers define this interface; the concrete api.Client
// satisfies it.
type Gateway interface {
	FetchCart(ctx context.Context) ([]domain.CartLine, error)
	AddItem(ctx context.Context, productID string, quantity int) error
	UpdateQuantity(ctx context.Context, lineID string, quantity int) error
	RemoveLine(ctx context.Context, lineID string) error
	ClearCart(ctx context.Context) error
	Checkout(ctx context.Context) (orderID string, err error)
}

// Session is the identity surface the cart store observes.
type Session interface {
	Current() (domain.User, bool)
	Epoch() uint64
	Subscribe(fn func()) func()
}

// ErrNotAuthenticated is the local guard failure for cart operations while
// anonymous. No request is attempted.
var ErrNotAuthenticated = errors.New("not authenticated")
