package models

// Product is the catalog snapshot a line item is built from. The cart
// never reaches back into the catalog; whatever was true at add time is
// what the line carries.
type Product struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	VendorID       string  `json:"vendor_id"`
	Price          Money   `json:"price"`
	TaxRatePercent float64 `json:"tax_rate_percent,omitempty"`
	MRP            *Money  `json:"mrp,omitempty"`
}

// Variant is a purchasable variant of a product (pack size, weight).
// UnitPrice is authoritative for the variant; the product's own price does
// not apply to variant lines.
type Variant struct {
	ID             string  `json:"id"`
	Label          string  `json:"label"`
	UnitPrice      Money   `json:"unit_price"`
	TaxRatePercent float64 `json:"tax_rate_percent,omitempty"`
	MRP            *Money  `json:"mrp,omitempty"`
}
