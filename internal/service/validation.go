package service

import (
	apperrors "github.com/tm-acme-shop/acme-shop-cart-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-cart-service/internal/models"
)

const maxLineQuantity = 10000

// ValidateAddItemRequest validates an add-item request. Quantity is not
// required to be positive here; the service coerces non-positive values
// to 1, since an add always means at least one unit.
func ValidateAddItemRequest(req *models.AddItemRequest) error {
	if req.ProductID == "" {
		return apperrors.NewValidationError("product_id", "product ID is required")
	}

	if req.Quantity > maxLineQuantity {
		return apperrors.NewValidationError("quantity", "quantity exceeds maximum per line")
	}

	return nil
}

// ValidateUpdateQuantityRequest validates a quantity update. Any integer
// is acceptable: zero and below mean removal by contract.
func ValidateUpdateQuantityRequest(req *models.UpdateQuantityRequest) error {
	if req.Quantity > maxLineQuantity {
		return apperrors.NewValidationError("quantity", "quantity exceeds maximum per line")
	}

	return nil
}
