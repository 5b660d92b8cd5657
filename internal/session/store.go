package session

import (
	"context"
	"log"
	"sync"

	"github.com/fjod/go_shop/internal/domain"
)

// State is the identity lifecycle. Unknown exists only before the one-time
// restoration attempt and is never re-entered.
type State int

const (
	StateUnknown State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// API is the slice of the remote service the session store needs. The
// concrete api.Client satisfies it.
type API interface {
	Login(ctx context.Context, email, password string) (token string, user domain.User, err error)
	Register(ctx context.Context, name, email, password string) (token string, user domain.User, err error)
	CurrentUser(ctx context.Context) (domain.User, error)
	SetToken(token string)
	ClearToken()
}

// Store owns the identity state and the credential lifecycle. Authenticated
// is only reachable through a server-confirmed identity; a credential without
// one is discarded.
type Store struct {
	api   API
	creds Credentials

	mu       sync.Mutex
	state    State
	user     domain.User
	epoch    uint64
	restored bool

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

func NewStore(api API, creds Credentials) *Store {
	return &Store{
		api:   api,
		creds: creds,
		state: StateUnknown,
		subs:  make(map[int]func()),
	}
}

// Restore resolves a persisted credential into an identity. It runs exactly
// once; later calls are no-ops. Any failure is absorbed: the credential is
// discarded and the store settles on Anonymous, since an expired token is a
// steady-state condition rather than an error worth surfacing.
func (s *Store) Restore(ctx context.Context) {
	s.mu.Lock()
	if s.restored {
		s.mu.Unlock()
		return
	}
	s.restored = true
	s.mu.Unlock()

	token, err := s.creds.Load()
	if err != nil {
		if err != ErrNoCredential {
			log.Printf("session: load credential: %v", err)
		}
		s.commit(StateAnonymous, domain.User{})
		return
	}

	s.api.SetToken(token)
	user, err := s.api.CurrentUser(ctx)
	if err != nil {
		log.Printf("session: credential rejected, starting anonymous: %v", err)
		s.discardCredential()
		s.commit(StateAnonymous, domain.User{})
		return
	}

	s.commit(StateAuthenticated, user)
}

// Login authenticates against the server. On failure no state changes at all;
// on success the credential is persisted and the identity committed.
func (s *Store) Login(ctx context.Context, email, password string) error {
	token, user, err := s.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	s.establish(token, user)
	return nil
}

// Register creates an account; the server is the sole arbiter of uniqueness
// and validation. Same commit contract as Login.
func (s *Store) Register(ctx context.Context, name, email, password string) error {
	token, user, err := s.api.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	s.establish(token, user)
	return nil
}

// Logout discards the credential and goes Anonymous unconditionally. It is
// local-only and never fails.
func (s *Store) Logout() {
	s.discardCredential()
	s.commit(StateAnonymous, domain.User{})
}

func (s *Store) establish(token string, user domain.User) {
	s.api.SetToken(token)
	if err := s.creds.Save(token); err != nil {
		// The session is still valid in-memory; it just won't survive a
		// restart.
		log.Printf("session: persist credential: %v", err)
	}
	s.commit(StateAuthenticated, user)
}

func (s *Store) discardCredential() {
	s.api.ClearToken()
	if err := s.creds.Clear(); err != nil {
		log.Printf("session: clear credential: %v", err)
	}
}

// commit applies an identity transition, bumps the epoch and notifies
// subscribers outside the lock.
func (s *Store) commit(state State, user domain.User) {
	s.mu.Lock()
	s.state = state
	s.user = user
	s.epoch++
	s.mu.Unlock()
	s.notify()
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the identity and whether the store is Authenticated.
func (s *Store) Current() (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user, s.state == StateAuthenticated
}

// Epoch increments on every committed identity transition. Dependents capture
// it before an async fetch and discard the result if it moved.
func (s *Store) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// Subscribe registers a listener called after every committed transition. The
// returned function unsubscribes it.
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
