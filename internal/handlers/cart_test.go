package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/tm-acme-shop/acme-shop-cart-service/internal/cart"
	"github.com/tm-acme-shop/acme-shop-cart-service/internal/config"
	apperrors "github.com/tm-acme-shop/acme-shop-cart-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-cart-service/internal/events"
	"github.com/tm-acme-shop/acme-shop-cart-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-cart-service/internal/pricing"
	"github.com/tm-acme-shop/acme-shop-cart-service/internal/service"
)

type stubCatalog struct {
	products map[string]models.Product
	variants map[string]models.Variant
}

func (s *stubCatalog) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	if p, ok := s.products[id]; ok {
		return &p, nil
	}
	return nil, apperrors.ErrNotFound
}

func (s *stubCatalog) GetVariant(ctx context.Context, productID, variantID string) (*models.Variant, error) {
	if v, ok := s.variants[productID+":"+variantID]; ok {
		return &v, nil
	}
	return nil, apperrors.ErrNotFound
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Cart:     config.CartConfig{Currency: "INR"},
		Features: config.FeatureFlags{EnableCartEvents: true},
	}

	repo := &stubCatalog{
		products: map[string]models.Product{
			"prod_a": {ID: "prod_a", Name: "Rice", VendorID: "vendor_1", Price: models.NewMoney(5000, "INR")},
		},
		variants: map[string]models.Variant{
			"prod_a:var_x": {ID: "var_x", Label: "1.5kg", UnitPrice: models.NewMoney(7500, "INR"), TaxRatePercent: 5},
		},
	}

	svc := service.NewCartService(
		cart.NewManager(),
		pricing.NewEngine(nil, "INR"),
		repo,
		events.NewMockEventPublisher(),
		cfg,
		slog.Default(),
	)
	h := NewHandlers(svc, cfg, slog.Default())

	router := gin.New()
	router.GET("/health", h.Health)
	v1 := router.Group("/api/v1")
	{
		v1.POST("/carts", h.CreateCart)
		v1.GET("/carts/:id", h.GetCart)
		v1.DELETE("/carts/:id", h.DeleteCart)
		v1.POST("/carts/:id/items", h.AddItem)
		v1.DELETE("/carts/:id/items", h.ClearCart)
		v1.PUT("/carts/:id/items/:product_id", h.UpdateQuantity)
		v1.DELETE("/carts/:id/items/:product_id", h.RemoveItem)
		v1.GET("/carts/:id/quote", h.GetQuote)
	}
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createCart(t *testing.T, router *gin.Engine) string {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/v1/carts", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create cart: expected 201, got %d", w.Code)
	}

	var resp struct {
		CartID string `json:"cart_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse create response: %v", err)
	}
	if resp.CartID == "" {
		t.Fatal("expected non-empty cart_id")
	}
	return resp.CartID
}

func TestHealth(t *testing.T) {
	router := setupRouter()

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["status"] != "healthy" {
		t.Errorf("expected status 'healthy', got %v", resp["status"])
	}
	if resp["service"] != "cart-service" {
		t.Errorf("expected service 'cart-service', got %v", resp["service"])
	}
}

func TestCartLifecycle(t *testing.T) {
	router := setupRouter()
	cartID := createCart(t, router)

	// Add two units of the bare product.
	w := doJSON(t, router, http.MethodPost, "/api/v1/carts/"+cartID+"/items",
		models.AddItemRequest{ProductID: "prod_a", Quantity: 2})
	if w.Code != http.StatusCreated {
		t.Fatalf("add item: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// Add the variant; distinct identity key, second line.
	w = doJSON(t, router, http.MethodPost, "/api/v1/carts/"+cartID+"/items",
		models.AddItemRequest{ProductID: "prod_a", Quantity: 1, VariantID: "var_x"})
	if w.Code != http.StatusCreated {
		t.Fatalf("add variant: expected 201, got %d", w.Code)
	}

	var view models.CartView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("parse view: %v", err)
	}
	if len(view.Items) != 2 || view.ItemCount != 3 {
		t.Errorf("expected 2 lines / count 3, got %d lines / count %d", len(view.Items), view.ItemCount)
	}

	// Quote the cart.
	w = doJSON(t, router, http.MethodGet, "/api/v1/carts/"+cartID+"/quote", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("quote: expected 200, got %d", w.Code)
	}

	var quote map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &quote); err != nil {
		t.Fatalf("parse quote: %v", err)
	}
	if quote["inclusive_subtotal"] != "175" {
		t.Errorf("inclusive_subtotal = %q, want 175", quote["inclusive_subtotal"])
	}
	if quote["taxable_subtotal"] != "171.43" {
		t.Errorf("taxable_subtotal = %q, want 171.43", quote["taxable_subtotal"])
	}
	if quote["tax_total"] != "3.57" {
		t.Errorf("tax_total = %q, want 3.57", quote["tax_total"])
	}

	// Set the bare line to 1 unit.
	w = doJSON(t, router, http.MethodPut, "/api/v1/carts/"+cartID+"/items/prod_a",
		models.UpdateQuantityRequest{Quantity: 1})
	if w.Code != http.StatusOK {
		t.Fatalf("update quantity: expected 200, got %d", w.Code)
	}

	// Remove the variant line.
	w = doJSON(t, router, http.MethodDelete, "/api/v1/carts/"+cartID+"/items/prod_a?variant_id=var_x", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("remove item: expected 200, got %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("parse view: %v", err)
	}
	if len(view.Items) != 1 || view.ItemCount != 1 {
		t.Errorf("expected 1 line / count 1, got %d / %d", len(view.Items), view.ItemCount)
	}

	// Clear and fetch.
	w = doJSON(t, router, http.MethodDelete, "/api/v1/carts/"+cartID+"/items", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("clear: expected 204, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/carts/"+cartID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get cart: expected 200, got %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("parse view: %v", err)
	}
	if len(view.Items) != 0 {
		t.Errorf("expected empty cart after clear")
	}
}

func TestUnknownCartReturns404(t *testing.T) {
	router := setupRouter()

	paths := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/v1/carts/ghost", nil},
		{http.MethodGet, "/api/v1/carts/ghost/quote", nil},
		{http.MethodPost, "/api/v1/carts/ghost/items", models.AddItemRequest{ProductID: "prod_a", Quantity: 1}},
		{http.MethodPut, "/api/v1/carts/ghost/items/prod_a", models.UpdateQuantityRequest{Quantity: 1}},
		{http.MethodDelete, "/api/v1/carts/ghost/items/prod_a", nil},
		{http.MethodDelete, "/api/v1/carts/ghost/items", nil},
	}

	for _, p := range paths {
		w := doJSON(t, router, p.method, p.path, p.body)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", p.method, p.path, w.Code)
		}
	}
}

func TestAddItemValidationErrors(t *testing.T) {
	router := setupRouter()
	cartID := createCart(t, router)

	// Missing product id.
	w := doJSON(t, router, http.MethodPost, "/api/v1/carts/"+cartID+"/items",
		models.AddItemRequest{Quantity: 1})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing product_id: expected 400, got %d", w.Code)
	}

	// Unknown product.
	w = doJSON(t, router, http.MethodPost, "/api/v1/carts/"+cartID+"/items",
		models.AddItemRequest{ProductID: "ghost", Quantity: 1})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown product: expected 404, got %d", w.Code)
	}

	// Malformed body.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/carts/"+cartID+"/items", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body: expected 400, got %d", rec.Code)
	}
}

func TestDeleteCart(t *testing.T) {
	router := setupRouter()
	cartID := createCart(t, router)

	w := doJSON(t, router, http.MethodDelete, "/api/v1/carts/"+cartID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete cart: expected 204, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/carts/"+cartID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", w.Code)
	}

	// Deleting again is still 204: discard is idempotent.
	w = doJSON(t, router, http.MethodDelete, "/api/v1/carts/"+cartID, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204 on repeat delete, got %d", w.Code)
	}
}
