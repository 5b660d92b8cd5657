package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/fjod/go_shop/internal/backend"
)

type Config struct {
	HTTPPort        string
	TokenSecret     string
	AdminEmail      string
	AdminPassword   string
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("MOCK_HTTP_PORT", "8001"),
		TokenSecret:     getEnv("MOCK_TOKEN_SECRET", "dev-secret-do-not-use-in-prod"),
		AdminEmail:      getEnv("MOCK_ADMIN_EMAIL", "admin@techhub.local"),
		AdminPassword:   getEnv("MOCK_ADMIN_PASSWORD", "admin"),
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()

	server := backend.New(cfg.TokenSecret)
	server.Seed()
	// Registered first, so it gets the admin role.
	if _, err := server.SeedUser("Admin", cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("seed admin account: %v", err)
	}
	log.Printf("admin account: %s / %s", cfg.AdminEmail, cfg.AdminPassword)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      middleware.Logger(server.Handler()),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Mock storefront API listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down mock server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
	log.Println("server exited")
}
