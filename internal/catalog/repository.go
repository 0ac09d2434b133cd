package catalog

import (
	"context"
	"database/sql"
	"log/slog"

	apperrors "github.com/tm-acme-shop/acme-shop-cart-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-cart-service/internal/models"
)

// ProductRepository provides read-only access to the product catalog. The
// cart core consumes products and variants as plain data; the catalog
// itself is owned elsewhere.
type ProductRepository interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	GetVariant(ctx context.Context, productID, variantID string) (*models.Variant, error)
}

// PostgresProductRepository implements ProductRepository against the
// shared catalog database.
type PostgresProductRepository struct {
	db       *sql.DB
	currency string
	logger   *slog.Logger
}

// NewPostgresProductRepository creates a new catalog repository. Bare
// catalog prices are stored in minor units of the given currency.
func NewPostgresProductRepository(db *sql.DB, currency string, logger *slog.Logger) *PostgresProductRepository {
	return &PostgresProductRepository{
		db:       db,
		currency: currency,
		logger:   logger,
	}
}

// GetProduct retrieves one product by id.
func (r *PostgresProductRepository) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	query := `
		SELECT id, name, vendor_id, price_minor, tax_rate_percent, mrp_minor
		FROM products
		WHERE id = $1 AND deleted_at IS NULL
	`

	var product models.Product
	var priceMinor int64
	var mrpMinor sql.NullInt64

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.VendorID,
		&priceMinor,
		&product.TaxRatePercent,
		&mrpMinor,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to fetch product", "product_id", id, "error", err)
		return nil, err
	}

	product.Price = models.NewMoney(priceMinor, r.currency)
	if mrpMinor.Valid {
		mrp := models.NewMoney(mrpMinor.Int64, r.currency)
		product.MRP = &mrp
	}

	return &product, nil
}

// GetVariant retrieves one purchasable variant of a product.
func (r *PostgresProductRepository) GetVariant(ctx context.Context, productID, variantID string) (*models.Variant, error) {
	query := `
		SELECT id, label, unit_price_minor, tax_rate_percent, mrp_minor
		FROM product_variants
		WHERE product_id = $1 AND id = $2 AND deleted_at IS NULL
	`

	var variant models.Variant
	var unitPriceMinor int64
	var mrpMinor sql.NullInt64

	err := r.db.QueryRowContext(ctx, query, productID, variantID).Scan(
		&variant.ID,
		&variant.Label,
		&unitPriceMinor,
		&variant.TaxRatePercent,
		&mrpMinor,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to fetch variant",
			"product_id", productID,
			"variant_id", variantID,
			"error", err,
		)
		return nil, err
	}

	variant.UnitPrice = models.NewMoney(unitPriceMinor, r.currency)
	if mrpMinor.Valid {
		mrp := models.NewMoney(mrpMinor.Int64, r.currency)
		variant.MRP = &mrp
	}

	return &variant, nil
}
