package models

import (
	"math"

	"github.com/shopspring/decimal"
)

// Money is an amount of currency held as integer minor units (paise,
// cents). All cart and pricing arithmetic stays in minor units; major
// units exist only at the display boundary.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// NewMoney creates a Money value from minor units.
func NewMoney(amountMinor int64, currency string) Money {
	return Money{Amount: amountMinor, Currency: currency}
}

// MoneyFromMajor converts a major-unit price (e.g. a bare catalog price in
// rupees) into minor units at ingestion, rounding half away from zero.
func MoneyFromMajor(major float64, currency string) Money {
	return Money{
		Amount:   int64(math.Round(major * 100)),
		Currency: currency,
	}
}

// ToFloat returns the amount in major units as a float. Display only.
func (m Money) ToFloat() float64 {
	return float64(m.Amount) / 100
}

// Decimal returns the amount in major units as an exact decimal.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Amount, -2)
}

// Mul returns the money multiplied by an integer quantity.
func (m Money) Mul(qty int) Money {
	return Money{Amount: m.Amount * int64(qty), Currency: m.Currency}
}
