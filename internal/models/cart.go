package models

import "github.com/shopspring/decimal"

// LineKey is the identity of a line item: one product/variant pair maps
// to at most one line in a cart. An item without a variant uses the empty
// string as its variant component.
type LineKey struct {
	ProductID string
	VariantID string
}

// LineItem is one row in a cart.
type LineItem struct {
	Product        Product `json:"product"`
	Quantity       int     `json:"quantity"`
	VariantID      string  `json:"variant_id,omitempty"`
	VariantLabel   string  `json:"variant_label,omitempty"`
	UnitPrice      *Money  `json:"unit_price,omitempty"`
	TaxRatePercent float64 `json:"tax_rate_percent,omitempty"`
	MRP            *Money  `json:"mrp,omitempty"`
}

// Key returns the line's identity key.
func (li LineItem) Key() LineKey {
	return LineKey{ProductID: li.Product.ID, VariantID: li.VariantID}
}

// EffectiveUnitPrice resolves the price a line is charged at: the variant
// unit price when present, otherwise the product's own price. This is the
// single place the fallback policy lives.
func (li LineItem) EffectiveUnitPrice() Money {
	if li.UnitPrice != nil {
		return *li.UnitPrice
	}
	return li.Product.Price
}

// PricingResult is the derived pricing breakdown for a cart snapshot.
// Amounts are in major units; it is recomputed on demand, never stored.
type PricingResult struct {
	InclusiveSubtotal decimal.Decimal `json:"inclusive_subtotal"`
	TaxableSubtotal   decimal.Decimal `json:"taxable_subtotal"`
	TaxTotal          decimal.Decimal `json:"tax_total"`
	TierDiscount      decimal.Decimal `json:"tier_discount"`
	FinalTotal        decimal.Decimal `json:"final_total"`
	TierRate          decimal.Decimal `json:"tier_rate"`
	Currency          string          `json:"currency"`
}

// AddItemRequest is the payload for adding an item to a cart.
type AddItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	VariantID string `json:"variant_id,omitempty"`
}

// UpdateQuantityRequest is the payload for setting a line's quantity.
type UpdateQuantityRequest struct {
	Quantity  int    `json:"quantity"`
	VariantID string `json:"variant_id,omitempty"`
}

// CartView is the read model returned for a cart.
type CartView struct {
	CartID       string          `json:"cart_id"`
	Items        []LineItem      `json:"items"`
	ItemCount    int             `json:"item_count"`
	TotalPayable decimal.Decimal `json:"total_payable"`
}
