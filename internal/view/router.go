package view

import (
	"sync"

	"github.com/fjod/go_shop/internal/domain"
)

// View is the closed set of navigable views.
type View int

const (
	Home View = iota
	Products
	Cart
	Login
	Orders
	Admin
)

func (v View) String() string {
	switch v {
	case Products:
		return "products"
	case Cart:
		return "cart"
	case Login:
		return "login"
	case Orders:
		return "orders"
	case Admin:
		return "admin"
	default:
		return "home"
	}
}

// Parse maps a view name back to its View; ok is false for unknown names.
func Parse(name string) (View, bool) {
	for _, v := range []View{Home, Products, Cart, Login, Orders, Admin} {
		if v.String() == name {
			return v, true
		}
	}
	return Home, false
}

// Session is the identity surface the router guards on.
type Session interface {
	Current() (domain.User, bool)
}

// Router holds the current view and performs guarded transitions. It holds no
// server state and performs no network calls.
type Router struct {
	session Session

	mu      sync.Mutex
	current View

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

func NewRouter(session Session) *Router {
	return &Router{
		session: session,
		current: Home,
		subs:    make(map[int]func()),
	}
}

// Go transitions to v and returns the view actually entered. Admin requires
// an authenticated admin identity; a failed attempt redirects silently, an
// anonymous visitor to Login (authenticating is their next step) and an
// authenticated non-admin to Home. Every other transition is unconditional.
func (r *Router) Go(v View) View {
	if v == Admin {
		user, ok := r.session.Current()
		switch {
		case !ok:
			v = Login
		case !user.IsAdmin():
			v = Home
		}
	}

	r.mu.Lock()
	if r.current == v {
		r.mu.Unlock()
		return v
	}
	r.current = v
	r.mu.Unlock()
	r.notify()
	return v
}

func (r *Router) Current() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Subscribe registers a listener called after every committed transition.
func (r *Router) Subscribe(fn func()) func() {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	return func() {
		r.subMu.Lock()
		defer r.subMu.Unlock()
		delete(r.subs, id)
	}
}

func (r *Router) notify() {
	r.subMu.Lock()
	listeners := make([]func(), 0, len(r.subs))
	for _, fn := range r.subs {
		listeners = append(listeners, fn)
	}
	r.subMu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}
