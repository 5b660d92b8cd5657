// Package backend is an in-process stand-in for the remote storefront
// service, speaking the same JSON-over-HTTP contract. Tests mount it on
// httptest servers; cmd/mockserver runs it standalone for local development.
package backend

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const defaultTokenTTL = 7 * 24 * time.Hour

type Server struct {
	store    *memStore
	secret   []byte
	tokenTTL time.Duration
	handler  http.Handler
}

type Option func(*Server)

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.tokenTTL = ttl
	}
}

func New(secret string, opts ...Option) *Server {
	s := &Server{
		store:    newMemStore(),
		secret:   []byte(secret),
		tokenTTL: defaultTokenTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.handler = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Get("/products", s.handleProducts)
		r.Get("/products/{productID}", s.handleProduct)
		r.Get("/categories", s.handleCategories)

		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)

			r.Get("/auth/me", s.handleMe)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", s.handleGetCart)
				r.Post("/add", s.handleAddToCart)
				r.Put("/{lineID}", s.handleUpdateLine)
				r.Delete("/{lineID}", s.handleRemoveLine)
				r.Delete("/", s.handleClearCart)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", s.handleCheckout)
				r.Get("/", s.handleOrders)
				r.Get("/{orderID}", s.handleOrder)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Post("/products", s.handleCreateProduct)
				r.Put("/products/{productID}", s.handleUpdateProduct)
				r.Delete("/products/{productID}", s.handleDeleteProduct)
				r.Get("/orders", s.handleAllOrders)
				r.Put("/orders/{orderID}/status", s.handleOrderStatus)
				r.Get("/users", s.handleAllUsers)
				r.Get("/dashboard", s.handleDashboard)
			})
		})
	})

	return r
}

type ctxKey int

const claimsKey ctxKey = 0

// requireUser authenticates the bearer token and stashes its claims in the
// request context.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		claims, err := parseToken(s.secret, token)
		if err != nil {
			respondDetail(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claimsFrom(r.Context()).Role != "admin" {
			respondDetail(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func claimsFrom(ctx context.Context) *tokenClaims {
	if claims, ok := ctx.Value(claimsKey).(*tokenClaims); ok {
		return claims
	}
	return &tokenClaims{}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("backend: encode response: %v", err)
	}
}

// respondDetail writes the contract's error shape: {"detail": message}.
func respondDetail(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"detail": message})
}
