package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/tm-acme-shop/acme-shop-cart-service/internal/cart"
	"github.com/tm-acme-shop/acme-shop-cart-service/internal/catalog"
	"github.com/tm-acme-shop/acme-shop-cart-service/internal/config"
	apperrors "github.com/tm-acme-shop/acme-shop-cart-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-cart-service/internal/events"
	"github.com/tm-acme-shop/acme-shop-cart-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-cart-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-cart-service/internal/pricing"
)

// CartService owns the session cart registry and wires the cart core to
// its collaborators: the catalog for product data, Kafka for mutation
// events and Prometheus for operational metrics.
type CartService struct {
	carts     *cart.Manager
	engine    *pricing.Engine
	catalog   catalog.ProductRepository
	publisher events.CartEventPublisher
	config    *config.Config
	logger    *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	carts *cart.Manager,
	engine *pricing.Engine,
	productRepo catalog.ProductRepository,
	publisher events.CartEventPublisher,
	cfg *config.Config,
	logger *slog.Logger,
) *CartService {
	return &CartService{
		carts:     carts,
		engine:    engine,
		catalog:   productRepo,
		publisher: publisher,
		config:    cfg,
		logger:    logger,
	}
}

// CreateCart allocates a new empty session cart and returns its id.
func (s *CartService) CreateCart(ctx context.Context) string {
	id, _ := s.carts.Create()
	metrics.ActiveCarts.Set(float64(s.carts.Len()))
	s.logger.Info("cart created", "cart_id", id)
	return id
}

// GetCart returns the read model for a session cart.
func (s *CartService) GetCart(ctx context.Context, cartID string) (*models.CartView, error) {
	store, ok := s.carts.Get(cartID)
	if !ok {
		return nil, apperrors.ErrCartNotFound
	}
	return s.view(cartID, store), nil
}

// DeleteCart discards a session cart. Unknown ids are a no-op.
func (s *CartService) DeleteCart(ctx context.Context, cartID string) {
	s.carts.Delete(cartID)
	s.engine.Forget(cartID)
	metrics.ActiveCarts.Set(float64(s.carts.Len()))
	s.logger.Info("cart discarded", "cart_id", cartID)
}

// AddItem resolves the product (and variant, when given) from the catalog
// and merges it into the cart. A non-positive requested quantity is
// coerced to 1 here: the store's add contract expects a positive quantity
// from its caller, and an add always means "one or more units".
func (s *CartService) AddItem(ctx context.Context, cartID string, req *models.AddItemRequest) (*models.CartView, error) {
	if err := ValidateAddItemRequest(req); err != nil {
		return nil, err
	}

	store, ok := s.carts.Get(cartID)
	if !ok {
		return nil, apperrors.ErrCartNotFound
	}

	product, err := s.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	var variant *models.Variant
	if req.VariantID != "" {
		variant, err = s.catalog.GetVariant(ctx, req.ProductID, req.VariantID)
		if err != nil {
			return nil, err
		}
	}

	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}

	store.AddItem(*product, quantity, variant)
	metrics.CartOperations.WithLabelValues("add_item").Inc()

	s.logger.Info("item added",
		"cart_id", cartID,
		"product_id", req.ProductID,
		"variant_id", req.VariantID,
		"quantity", quantity,
	)

	if s.config.Features.EnableCartEvents {
		items := store.Items()
		added := items[len(items)-1]
		for _, li := range items {
			if li.Product.ID == req.ProductID && li.VariantID == req.VariantID {
				added = li
				break
			}
		}
		if err := s.publisher.PublishItemAdded(ctx, cartID, added, store.ItemCount()); err != nil {
			// Log but don't fail: events are fire-and-forget.
			s.logger.Error("failed to publish item added event", "cart_id", cartID, "error", err)
		}
	}

	return s.view(cartID, store), nil
}

// UpdateQuantity sets a line's quantity to exactly the requested value.
// Zero or negative removes the line; unknown keys are a silent no-op.
func (s *CartService) UpdateQuantity(ctx context.Context, cartID, productID string, req *models.UpdateQuantityRequest) (*models.CartView, error) {
	if productID == "" {
		return nil, apperrors.NewValidationError("product_id", "product ID is required")
	}
	if err := ValidateUpdateQuantityRequest(req); err != nil {
		return nil, err
	}

	store, ok := s.carts.Get(cartID)
	if !ok {
		return nil, apperrors.ErrCartNotFound
	}

	store.UpdateQuantity(productID, req.Quantity, req.VariantID)
	metrics.CartOperations.WithLabelValues("update_quantity").Inc()

	if s.config.Features.EnableCartEvents {
		if err := s.publisher.PublishQuantityUpdated(ctx, cartID, productID, req.VariantID, req.Quantity, store.ItemCount()); err != nil {
			s.logger.Error("failed to publish quantity updated event", "cart_id", cartID, "error", err)
		}
	}

	return s.view(cartID, store), nil
}

// RemoveItem deletes a line from the cart. Removal is idempotent.
func (s *CartService) RemoveItem(ctx context.Context, cartID, productID, variantID string) (*models.CartView, error) {
	store, ok := s.carts.Get(cartID)
	if !ok {
		return nil, apperrors.ErrCartNotFound
	}

	store.RemoveItem(productID, variantID)
	metrics.CartOperations.WithLabelValues("remove_item").Inc()

	if s.config.Features.EnableCartEvents {
		if err := s.publisher.PublishItemRemoved(ctx, cartID, productID, variantID, store.ItemCount()); err != nil {
			s.logger.Error("failed to publish item removed event", "cart_id", cartID, "error", err)
		}
	}

	return s.view(cartID, store), nil
}

// ClearCart empties a session cart, e.g. after checkout hand-off.
func (s *CartService) ClearCart(ctx context.Context, cartID string) error {
	store, ok := s.carts.Get(cartID)
	if !ok {
		return apperrors.ErrCartNotFound
	}

	store.Clear()
	metrics.CartOperations.WithLabelValues("clear").Inc()

	if s.config.Features.EnableCartEvents {
		if err := s.publisher.PublishCartCleared(ctx, cartID); err != nil {
			s.logger.Error("failed to publish cart cleared event", "cart_id", cartID, "error", err)
		}
	}

	return nil
}

// Quote computes the pricing breakdown for a session cart. Memoized by
// cart revision inside the engine, so unchanged carts are free to re-read.
func (s *CartService) Quote(ctx context.Context, cartID string) (*models.PricingResult, error) {
	store, ok := s.carts.Get(cartID)
	if !ok {
		return nil, apperrors.ErrCartNotFound
	}

	start := time.Now()
	result := s.engine.Quote(cartID, store.Snapshot())
	metrics.QuoteDuration.Observe(time.Since(start).Seconds())

	return &result, nil
}

// SweepIdleCarts reaps carts idle beyond the configured timeout and
// returns how many were removed.
func (s *CartService) SweepIdleCarts() int {
	removed := s.carts.Sweep(s.config.Cart.IdleTimeout)
	for _, id := range removed {
		s.engine.Forget(id)
	}
	metrics.ActiveCarts.Set(float64(s.carts.Len()))
	if len(removed) > 0 {
		s.logger.Info("idle carts swept", "count", len(removed))
	}
	return len(removed)
}

func (s *CartService) view(cartID string, store *cart.Store) *models.CartView {
	return &models.CartView{
		CartID:       cartID,
		Items:        store.Items(),
		ItemCount:    store.ItemCount(),
		TotalPayable: store.TotalPayable(),
	}
}
