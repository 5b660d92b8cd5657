package backend

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("Email already registered")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrUserNotFound       = errors.New("User not found")
	ErrProductNotFound    = errors.New("Product not found")
	ErrOrderNotFound      = errors.New("Order not found")
	ErrEmptyCart          = errors.New("Cart is empty")
	ErrInsufficientStock  = errors.New("insufficient stock")
)

type userRecord struct {
	domain.User
	passwordHash []byte
}

type lineRecord struct {
	ID        string
	UserID    string
	ProductID string
	Quantity  int
	AddedAt   time.Time
}

// memStore holds all server-side state in memory.
type memStore struct {
	mu       sync.RWMutex
	users    map[string]*userRecord
	products map[string]*domain.Product
	lines    map[string]*lineRecord
	orders   map[string]*domain.Order
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]*userRecord),
		products: make(map[string]*domain.Product),
		lines:    make(map[string]*lineRecord),
		orders:   make(map[string]*domain.Order),
	}
}

// CreateUser registers a new account. The first registered user becomes the
// admin.
func (s *memStore) CreateUser(name, email, password string) (domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return domain.User{}, ErrEmailTaken
		}
	}

	role := domain.RoleUser
	if len(s.users) == 0 {
		role = domain.RoleAdmin
	}
	rec := &userRecord{
		User: domain.User{
			ID:        uuid.New().String(),
			Email:     email,
			Name:      name,
			Role:      role,
			CreatedAt: time.Now().UTC(),
		},
		passwordHash: hash,
	}
	s.users[rec.ID] = rec
	return rec.User, nil
}

func (s *memStore) Authenticate(email, password string) (domain.User, error) {
	s.mu.RLock()
	var rec *userRecord
	for _, u := range s.users {
		if u.Email == email {
			rec = u
			break
		}
	}
	s.mu.RUnlock()

	if rec == nil {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return rec.User, nil
}

func (s *memStore) UserByID(id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.users[id]
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	return rec.User, nil
}

func (s *memStore) Users() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]domain.User, 0, len(s.users))
	for _, rec := range s.users {
		users = append(users, rec.User)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users
}

// Products filters by exact category and case-insensitive substring search
// over name and description.
func (s *memStore) Products(category, search string) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	search = strings.ToLower(search)

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if category != "" && p.Category != category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		products = append(products, *p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products
}

func (s *memStore) Product(id string) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return *p, nil
}

func (s *memStore) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	var categories []string
	for _, p := range s.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	sort.Strings(categories)
	return categories
}

func (s *memStore) CreateProduct(p domain.Product) domain.Product {
	p.ID = uuid.New().String()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = &p
	return p
}

// productPatch carries a partial product update; nil fields stay untouched.
type productPatch struct {
	Name           *string            `json:"name"`
	Description    *string            `json:"description"`
	Price          *decimal.Decimal   `json:"price"`
	ImageURL       *string            `json:"image_url"`
	Category       *string            `json:"category"`
	Stock          *int               `json:"stock"`
	Specifications *map[string]string `json:"specifications"`
}

func (p productPatch) empty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil &&
		p.ImageURL == nil && p.Category == nil && p.Stock == nil && p.Specifications == nil
}

func (s *memStore) UpdateProduct(id string, patch productPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return ErrProductNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.ImageURL != nil {
		p.ImageURL = *patch.ImageURL
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.Specifications != nil {
		p.Specifications = *patch.Specifications
	}
	return nil
}

func (s *memStore) DeleteProduct(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}

// CartFor joins the user's lines with their products. Lines whose product has
// been deleted are skipped.
func (s *memStore) CartFor(userID string) []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var cart []domain.CartLine
	for _, l := range s.lines {
		if l.UserID != userID {
			continue
		}
		p, ok := s.products[l.ProductID]
		if !ok {
			continue
		}
		cart = append(cart, domain.CartLine{
			ID:       l.ID,
			Product:  *p,
			Quantity: l.Quantity,
			AddedAt:  l.AddedAt,
		})
	}
	sort.Slice(cart, func(i, j int) bool { return cart[i].AddedAt.Before(cart[j].AddedAt) })
	return cart
}

// AddToCart merges into an existing line for the same product, and rejects a
// resulting quantity above the available stock.
func (s *memStore) AddToCart(userID, productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return ErrProductNotFound
	}

	var existing *lineRecord
	for _, l := range s.lines {
		if l.UserID == userID && l.ProductID == productID {
			existing = l
			break
		}
	}

	have := 0
	if existing != nil {
		have = existing.Quantity
	}
	if have+quantity > p.Stock {
		return ErrInsufficientStock
	}

	if existing != nil {
		existing.Quantity += quantity
		return nil
	}
	line := &lineRecord{
		ID:        uuid.New().String(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   time.Now().UTC(),
	}
	s.lines[line.ID] = line
	return nil
}

// UpdateLine sets the quantity; zero or below deletes the line. A missing
// line is not an error, matching the original service.
func (s *memStore) UpdateLine(userID, lineID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lines[lineID]
	if !ok || l.UserID != userID {
		return
	}
	if quantity <= 0 {
		delete(s.lines, lineID)
		return
	}
	l.Quantity = quantity
}

func (s *memStore) RemoveLine(userID, lineID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.lines[lineID]; ok && l.UserID == userID {
		delete(s.lines, lineID)
	}
}

func (s *memStore) ClearCart(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, l := range s.lines {
		if l.UserID == userID {
			delete(s.lines, id)
		}
	}
}

// CreateOrder consumes the user's cart into a new pending order.
func (s *memStore) CreateOrder(userID string) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []domain.OrderItem
	total := decimal.Zero
	for id, l := range s.lines {
		if l.UserID != userID {
			continue
		}
		p, ok := s.products[l.ProductID]
		if !ok {
			continue
		}
		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		items = append(items, domain.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  l.Quantity,
			Total:     lineTotal,
		})
		total = total.Add(lineTotal)
		delete(s.lines, id)
	}
	if len(items) == 0 {
		return domain.Order{}, ErrEmptyCart
	}

	order := &domain.Order{
		ID:          uuid.New().String(),
		UserID:      userID,
		Items:       items,
		TotalAmount: total,
		Status:      domain.OrderStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	s.orders[order.ID] = order
	return *order, nil
}

func (s *memStore) OrdersFor(userID string) []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var orders []domain.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			orders = append(orders, *o)
		}
	}
	sortOrdersDesc(orders)
	return orders
}

func (s *memStore) Order(userID, orderID string) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[orderID]
	if !ok || o.UserID != userID {
		return domain.Order{}, ErrOrderNotFound
	}
	return *o, nil
}

// AllOrders lists every order with the owner's name and email joined in.
func (s *memStore) AllOrders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	orders := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out := *o
		if u, ok := s.users[o.UserID]; ok {
			out.UserName = u.Name
			out.UserEmail = u.Email
		}
		orders = append(orders, out)
	}
	sortOrdersDesc(orders)
	return orders
}

func (s *memStore) UpdateOrderStatus(orderID string, status domain.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	o.Status = status
	return nil
}

const lowStockThreshold = 10

func (s *memStore) Dashboard() domain.DashboardStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.DashboardStats{
		TotalUsers:    len(s.users),
		TotalProducts: len(s.products),
		TotalOrders:   len(s.orders),
		TotalRevenue:  decimal.Zero,
	}

	orders := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if o.Status == domain.OrderStatusPending {
			stats.PendingOrders++
		}
		stats.TotalRevenue = stats.TotalRevenue.Add(o.TotalAmount)
		out := *o
		if u, ok := s.users[o.UserID]; ok {
			out.UserName = u.Name
		}
		orders = append(orders, out)
	}
	sortOrdersDesc(orders)
	if len(orders) > 5 {
		orders = orders[:5]
	}
	stats.RecentOrders = orders

	for _, p := range s.products {
		if p.Stock < lowStockThreshold {
			stats.LowStockProducts = append(stats.LowStockProducts, *p)
		}
	}
	sort.Slice(stats.LowStockProducts, func(i, j int) bool {
		return stats.LowStockProducts[i].Stock < stats.LowStockProducts[j].Stock
	})
	return stats
}

func sortOrdersDesc(orders []domain.Order) {
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
}
