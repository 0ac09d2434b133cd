package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tm-acme-shop/acme-shop-cart-service/internal/cart"
	"github.com/tm-acme-shop/acme-shop-cart-service/internal/catalog"
	"github.com/tm-acme-shop/acme-shop-cart-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-cart-service/internal/events"
	"github.com/tm-acme-shop/acme-shop-cart-service/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-cart-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-cart-service/internal/pricing"
	"github.com/tm-acme-shop/acme-shop-cart-service/internal/server"
	"github.com/tm-acme-shop/acme-shop-cart-service/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	cfg := config.Load()

	logger := logging.New("cart-service")
	logger.Info("starting cart-service", "port", cfg.Server.Port)

	db, err := initDatabase(cfg)
	if err != nil {
		logger.Error("failed to connect to catalog database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var productRepo catalog.ProductRepository = catalog.NewPostgresProductRepository(
		db,
		cfg.Cart.Currency,
		logging.Component(logger, "catalog"),
	)

	var catalogCache *catalog.CachedProductRepository
	if cfg.Features.EnableCatalogCache {
		catalogCache = catalog.NewCachedProductRepository(
			productRepo,
			cfg.Redis,
			logging.Component(logger, "catalog-cache"),
		)
		productRepo = catalogCache
		defer catalogCache.Close()
	}

	eventPublisher := events.NewKafkaPublisher(cfg.Kafka, logging.Component(logger, "cart-events"))
	defer eventPublisher.Close()

	carts := cart.NewManager()
	engine := pricing.NewEngine(pricing.DefaultTiers(), cfg.Cart.Currency)

	cartService := service.NewCartService(
		carts,
		engine,
		productRepo,
		eventPublisher,
		cfg,
		logging.Component(logger, "cart-service"),
	)

	h := handlers.NewHandlers(cartService, cfg, logging.Component(logger, "handlers"))

	srv := server.New(h, cfg)

	go func() {
		logger.Info("server starting",
			"port", cfg.Server.Port,
			"enable_cart_events", cfg.Features.EnableCartEvents,
			"enable_catalog_cache", cfg.Features.EnableCatalogCache,
		)
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Reap session carts that have gone idle.
	sweepDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.Cart.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepDone:
				return
			case <-ticker.C:
				cartService.SweepIdleCarts()
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	close(sweepDone)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}

func initDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}
