// Package money converts between decimal currency amounts and integer minor
// units (cents). All ledger arithmetic happens in cents so repeated
// accumulation can never drift; decimals exist only at the boundary.
package money

import "github.com/shopspring/decimal"

// ToCents converts a decimal amount to integer cents, rounding half up to
// the nearest cent.
func ToCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// FromCents converts integer cents back to a two-decimal amount.
func FromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

// FromFloat converts a float amount (as received in a JSON request body)
// to a decimal rounded to the nearest cent.
func FromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(2)
}
