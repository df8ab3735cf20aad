// Package money holds the rounding rules shared by every billing computation.
// All stored amounts are int64 values in the smallest billed unit.
package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Round rounds a fractional amount to the nearest whole unit, halves away from zero.
func Round(amount decimal.Decimal) int64 {
	return amount.Round(0).IntPart()
}

// FromInt lifts a whole-unit amount into a decimal for intermediate math.
func FromInt(amount int64) decimal.Decimal {
	return decimal.NewFromInt(amount)
}

// Percent returns percent% of amount, unrounded.
func Percent(amount int64, percent decimal.Decimal) decimal.Decimal {
	return FromInt(amount).Mul(percent).Div(hundred)
}

// PercentOf returns Round(percent% of amount).
func PercentOf(amount int64, percent decimal.Decimal) int64 {
	return Round(Percent(amount, percent))
}

// MustParse parses a decimal literal and panics on malformed input.
// Intended for constants and defaults.
func MustParse(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
