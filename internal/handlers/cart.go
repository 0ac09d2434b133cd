package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/tm-acme-shop/acme-shop-cart-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-cart-service/internal/models"
)

// CreateCart handles POST /api/v1/carts
func (h *Handlers) CreateCart(c *gin.Context) {
	cartID := h.cartService.CreateCart(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{"cart_id": cartID})
}

// GetCart handles GET /api/v1/carts/:id
func (h *Handlers) GetCart(c *gin.Context) {
	view, err := h.cartService.GetCart(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DeleteCart handles DELETE /api/v1/carts/:id
func (h *Handlers) DeleteCart(c *gin.Context) {
	h.cartService.DeleteCart(c.Request.Context(), c.Param("id"))
	c.Status(http.StatusNoContent)
}

// AddItem handles POST /api/v1/carts/:id/items
func (h *Handlers) AddItem(c *gin.Context) {
	var req models.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("failed to bind request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	view, err := h.cartService.AddItem(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// UpdateQuantity handles PUT /api/v1/carts/:id/items/:product_id
func (h *Handlers) UpdateQuantity(c *gin.Context) {
	var req models.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	view, err := h.cartService.UpdateQuantity(c.Request.Context(), c.Param("id"), c.Param("product_id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// RemoveItem handles DELETE /api/v1/carts/:id/items/:product_id
func (h *Handlers) RemoveItem(c *gin.Context) {
	view, err := h.cartService.RemoveItem(
		c.Request.Context(),
		c.Param("id"),
		c.Param("product_id"),
		c.Query("variant_id"),
	)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// ClearCart handles DELETE /api/v1/carts/:id/items
func (h *Handlers) ClearCart(c *gin.Context) {
	if err := h.cartService.ClearCart(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetQuote handles GET /api/v1/carts/:id/quote
func (h *Handlers) GetQuote(c *gin.Context) {
	result, err := h.cartService.Quote(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func handleError(c *gin.Context, err error) {
	if stderrors.Is(err, apperrors.ErrCartNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "cart not found"})
		return
	}

	if stderrors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	var validationErr *apperrors.ValidationError
	if stderrors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
