package backend

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type registerRequestDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponseDTO struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    domain.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDetail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondDetail(w, http.StatusBadRequest, "Name, email and password are required")
		return
	}

	user, err := s.store.CreateUser(req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			respondDetail(w, http.StatusBadRequest, err.Error())
			return
		}
		respondDetail(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	s.respondAuth(w, "User registered successfully", user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDetail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	user, err := s.store.Authenticate(req.Email, req.Password)
	if err != nil {
		respondDetail(w, http.StatusUnauthorized, ErrInvalidCredentials.Error())
		return
	}

	s.respondAuth(w, "Login successful", user)
}

func (s *Server) respondAuth(w http.ResponseWriter, message string, user domain.User) {
	token, err := mintToken(s.secret, user, s.tokenTTL)
	if err != nil {
		respondDetail(w, http.StatusInternalServerError, "Token generation failed")
		return
	}
	respondJSON(w, http.StatusOK, authResponseDTO{Message: message, Token: token, User: user})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.UserByID(claimsFrom(r.Context()).UserID)
	if err != nil {
		respondDetail(w, http.StatusNotFound, ErrUserNotFound.Error())
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	products := s.store.Products(r.URL.Query().Get("category"), r.URL.Query().Get("search"))
	respondJSON(w, http.StatusOK, products)
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	product, err := s.store.Product(chi.URLParam(r, "productID"))
	if err != nil {
		respondDetail(w, http.StatusNotFound, ErrProductNotFound.Error())
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.Categories())
}

type addToCartRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	cart := s.store.CartFor(claimsFrom(r.Context()).UserID)
	if cart == nil {
		cart = []domain.CartLine{}
	}
	respondJSON(w, http.StatusOK, cart)
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDetail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	err := s.store.AddToCart(claimsFrom(r.Context()).UserID, req.ProductID, req.Quantity)
	switch {
	case errors.Is(err, ErrProductNotFound):
		respondDetail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInsufficientStock):
		respondDetail(w, http.StatusBadRequest, err.Error())
	case err != nil:
		respondDetail(w, http.StatusInternalServerError, "Failed to add item")
	default:
		respondJSON(w, http.StatusOK, map[string]string{"message": "Item added to cart"})
	}
}

type updateLineRequestDTO struct {
	Quantity int `json:"quantity"`
}

func (s *Server) handleUpdateLine(w http.ResponseWriter, r *http.Request) {
	var req updateLineRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDetail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	s.store.UpdateLine(claimsFrom(r.Context()).UserID, chi.URLParam(r, "lineID"), req.Quantity)
	respondJSON(w, http.StatusOK, map[string]string{"message": "Cart updated"})
}

func (s *Server) handleRemoveLine(w http.ResponseWriter, r *http.Request) {
	s.store.RemoveLine(claimsFrom(r.Context()).UserID, chi.URLParam(r, "lineID"))
	respondJSON(w, http.StatusOK, map[string]string{"message": "Item removed from cart"})
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	s.store.ClearCart(claimsFrom(r.Context()).UserID)
	respondJSON(w, http.StatusOK, map[string]string{"message": "Cart cleared"})
}

type checkoutResponseDTO struct {
	Message string          `json:"message"`
	OrderID string          `json:"order_id"`
	Total   decimal.Decimal `json:"total"`
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	order, err := s.store.CreateOrder(claimsFrom(r.Context()).UserID)
	if err != nil {
		if errors.Is(err, ErrEmptyCart) {
			respondDetail(w, http.StatusBadRequest, err.Error())
			return
		}
		respondDetail(w, http.StatusInternalServerError, "Failed to create order")
		return
	}
	respondJSON(w, http.StatusOK, checkoutResponseDTO{
		Message: "Order created successfully",
		OrderID: order.ID,
		Total:   order.TotalAmount,
	})
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	orders := s.store.OrdersFor(claimsFrom(r.Context()).UserID)
	if orders == nil {
		orders = []domain.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.store.Order(claimsFrom(r.Context()).UserID, chi.URLParam(r, "orderID"))
	if err != nil {
		respondDetail(w, http.StatusNotFound, ErrOrderNotFound.Error())
		return
	}
	respondJSON(w, http.StatusOK, order)
}

type productCreateRequestDTO struct {
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Price          decimal.Decimal   `json:"price"`
	ImageURL       string            `json:"image_url"`
	Category       string            `json:"category"`
	Stock          int               `json:"stock"`
	Specifications map[string]string `json:"specifications"`
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productCreateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDetail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	product := s.store.CreateProduct(domain.Product{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		ImageURL:       req.ImageURL,
		Category:       req.Category,
		Stock:          req.Stock,
		Specifications: req.Specifications,
	})
	respondJSON(w, http.StatusOK, map[string]string{
		"message":    "Product created successfully",
		"product_id": product.ID,
	})
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var patch productPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondDetail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if patch.empty() {
		respondDetail(w, http.StatusBadRequest, "No data to update")
		return
	}
	if err := s.store.UpdateProduct(chi.URLParam(r, "productID"), patch); err != nil {
		respondDetail(w, http.StatusNotFound, ErrProductNotFound.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Product updated successfully"})
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteProduct(chi.URLParam(r, "productID")); err != nil {
		respondDetail(w, http.StatusNotFound, ErrProductNotFound.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

func (s *Server) handleAllOrders(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.AllOrders())
}

type orderStatusRequestDTO struct {
	Status domain.OrderStatus `json:"status"`
}

func (s *Server) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req orderStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDetail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if !domain.ValidOrderStatus(req.Status) {
		respondDetail(w, http.StatusBadRequest, "Invalid order status")
		return
	}
	if err := s.store.UpdateOrderStatus(chi.URLParam(r, "orderID"), req.Status); err != nil {
		respondDetail(w, http.StatusNotFound, ErrOrderNotFound.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Order status updated successfully"})
}

func (s *Server) handleAllUsers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.Users())
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.Dashboard())
}
