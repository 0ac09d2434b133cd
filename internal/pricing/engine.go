package pricing

import (
	"sync"

	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-cart-service/internal/cart"
	"github.com/tm-acme-shop/acme-shop-cart-service/internal/models"
)

// Tier is one step of the cart-level discount table: carts whose
// tax-inclusive subtotal reaches Threshold get Rate off the whole cart.
type Tier struct {
	Threshold decimal.Decimal
	Rate      decimal.Decimal
}

// DefaultTiers is the standard discount table: 10% at 10,000 and 5% at
// 5,000, in major units.
func DefaultTiers() []Tier {
	return []Tier{
		{Threshold: decimal.NewFromInt(10000), Rate: decimal.New(10, -2)},
		{Threshold: decimal.NewFromInt(5000), Rate: decimal.New(5, -2)},
	}
}

// Calculate derives the pricing breakdown for a line-item sequence. Pure:
// no state, no side effects.
//
// Prices are tax-inclusive, so a line with tax rate r contributes a
// taxable base of inclusive/(1+r/100) and the remainder as tax. Lines
// without a rate contribute their whole amount as taxable base with zero
// tax. Per-line figures are carried at full precision; only the aggregates
// are rounded, at the end, so rounding error cannot compound across lines
// of different rates.
func Calculate(items []models.LineItem, tiers []Tier, currency string) models.PricingResult {
	inclusive := decimal.Zero
	taxable := decimal.Zero
	tax := decimal.Zero

	for _, item := range items {
		lineInclusive := item.EffectiveUnitPrice().Decimal().Mul(decimal.NewFromInt(int64(item.Quantity)))
		inclusive = inclusive.Add(lineInclusive)

		if item.TaxRatePercent > 0 {
			divisor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(item.TaxRatePercent).Div(decimal.NewFromInt(100)))
			lineTaxable := lineInclusive.Div(divisor)
			taxable = taxable.Add(lineTaxable)
			tax = tax.Add(lineInclusive.Sub(lineTaxable))
		} else {
			taxable = taxable.Add(lineInclusive)
		}
	}

	rate := tierRate(inclusive, tiers)
	discount := inclusive.Mul(rate).Round(2)
	final := inclusive.Sub(discount).Round(2)

	return models.PricingResult{
		InclusiveSubtotal: inclusive.Round(2),
		TaxableSubtotal:   taxable.Round(2),
		TaxTotal:          tax.Round(2),
		TierDiscount:      discount,
		FinalTotal:        final,
		TierRate:          rate,
		Currency:          currency,
	}
}

// tierRate picks the highest tier the subtotal qualifies for. The tier
// table must be sorted by descending threshold.
func tierRate(inclusive decimal.Decimal, tiers []Tier) decimal.Decimal {
	for _, t := range tiers {
		if inclusive.GreaterThanOrEqual(t.Threshold) {
			return t.Rate
		}
	}
	return decimal.Zero
}

// Engine computes quotes for cart snapshots, memoized per cart against
// the cart revision: as long as a cart's item sequence has not changed,
// repeated reads return the cached result without recomputing.
type Engine struct {
	tiers    []Tier
	currency string

	mu   sync.Mutex
	memo map[string]memoEntry
}

type memoEntry struct {
	revision uint64
	result   models.PricingResult
}

// NewEngine creates an engine with the given tier table (nil means
// DefaultTiers) and display currency.
func NewEngine(tiers []Tier, currency string) *Engine {
	if tiers == nil {
		tiers = DefaultTiers()
	}
	return &Engine{
		tiers:    tiers,
		currency: currency,
		memo:     make(map[string]memoEntry),
	}
}

// Quote returns the pricing breakdown for a cart's snapshot.
func (e *Engine) Quote(cartID string, snap cart.Snapshot) models.PricingResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	if cached, ok := e.memo[cartID]; ok && cached.revision == snap.Revision {
		return cached.result
	}

	res := Calculate(snap.Items, e.tiers, e.currency)
	e.memo[cartID] = memoEntry{revision: snap.Revision, result: res}
	return res
}

// Forget drops the memoized result for a cart. Called when the cart is
// discarded so the memo table does not outlive the carts it serves.
func (e *Engine) Forget(cartID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.memo, cartID)
}
