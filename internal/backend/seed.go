package backend

import (
	"github.com/fjod/go_shop/internal/domain"
	"github.com/shopspring/decimal"
)

// Seed loads the sample catalog. Safe to call once after New; products get
// fresh ids each time.
func (s *Server) Seed() {
	for _, p := range sampleProducts() {
		s.store.CreateProduct(p)
	}
}

// SeedUser registers an account directly, bypassing the HTTP surface. Handy
// for tests that need a known admin or customer.
func (s *Server) SeedUser(name, email, password string) (domain.User, error) {
	return s.store.CreateUser(name, email, password)
}

func sampleProducts() []domain.Product {
	price := func(v string) decimal.Decimal {
		return decimal.RequireFromString(v)
	}
	return []domain.Product{
		{
			Name:        "iPhone 15 Pro",
			Description: "The latest iPhone with advanced camera system and titanium design",
			Price:       price("999.99"),
			ImageURL:    "https://images.unsplash.com/photo-1499097828500-fac38e25d327",
			Category:    "smartphones",
			Stock:       50,
			Specifications: map[string]string{
				"display":   "6.1-inch Super Retina XDR",
				"processor": "A17 Pro chip",
				"storage":   "128GB",
				"camera":    "48MP main camera",
			},
		},
		{
			Name:        "Samsung Galaxy S24",
			Description: "Premium Android smartphone with AI-powered features",
			Price:       price("899.99"),
			ImageURL:    "https://images.unsplash.com/photo-1592890288564-76628a30a657",
			Category:    "smartphones",
			Stock:       30,
			Specifications: map[string]string{
				"display":   "6.2-inch Dynamic AMOLED",
				"processor": "Snapdragon 8 Gen 3",
				"storage":   "256GB",
				"camera":    "50MP triple camera",
			},
		},
		{
			Name:        "Sony WH-1000XM5",
			Description: "Industry-leading noise canceling wireless headphones",
			Price:       price("399.99"),
			ImageURL:    "https://images.unsplash.com/photo-1598327105679-d1e69b1f9818",
			Category:    "audio",
			Stock:       25,
			Specifications: map[string]string{
				"type":         "Over-ear",
				"connectivity": "Bluetooth 5.2",
				"battery":      "30 hours",
			},
		},
		{
			Name:        "MacBook Pro 16-inch",
			Description: "Powerful laptop with M3 Pro chip for professional work",
			Price:       price("2499.99"),
			ImageURL:    "https://images.unsplash.com/photo-1552585155-f5c1efa32555",
			Category:    "laptops",
			Stock:       15,
			Specifications: map[string]string{
				"processor": "Apple M3 Pro",
				"memory":    "18GB unified memory",
				"storage":   "512GB SSD",
			},
		},
		{
			Name:        "Canon EOS R5",
			Description: "Professional mirrorless camera with 8K video recording",
			Price:       price("3899.99"),
			ImageURL:    "https://images.pexels.com/photos/2858481/pexels-photo-2858481.jpeg",
			Category:    "cameras",
			Stock:       10,
			Specifications: map[string]string{
				"sensor": "45MP full-frame CMOS",
				"video":  "8K RAW recording",
			},
		},
		{
			Name:        "LG OLED55C3PUA",
			Description: "55-inch 4K OLED Smart TV with AI-powered processor",
			Price:       price("1299.99"),
			ImageURL:    "https://images.unsplash.com/photo-1717295248358-4b8f2c8989d6",
			Category:    "televisions",
			Stock:       20,
			Specifications: map[string]string{
				"size":       "55 inches",
				"resolution": "4K OLED",
				"smart_tv":   "webOS 23",
			},
		},
	}
}
