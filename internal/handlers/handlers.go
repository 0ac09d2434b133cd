package handlers

import (
	"log/slog"

	"github.com/tm-acme-shop/acme-shop-cart-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-cart-service/internal/service"
)

// Handlers holds all HTTP handlers for the cart service.
type Handlers struct {
	cartService *service.CartService
	config      *config.Config
	logger      *slog.Logger
}

// NewHandlers creates a new handlers instance.
func NewHandlers(cartService *service.CartService, cfg *config.Config, logger *slog.Logger) *Handlers {
	return &Handlers{
		cartService: cartService,
		config:      cfg,
		logger:      logger,
	}
}
