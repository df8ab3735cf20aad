// Package pricing holds the pure arithmetic of a bill: the two-component
// consumption tax and the discount policy. Nothing here keeps state.
package pricing

import (
	"fmt"

	"github.com/sangkips/pharmacy-pos/pkg/money"
	"github.com/shopspring/decimal"
)

// TaxConfig holds the two component rates as percentages.
type TaxConfig struct {
	CGSTPercent decimal.Decimal `json:"cgst_percent"`
	SGSTPercent decimal.Decimal `json:"sgst_percent"`
}

// NewSplitTaxConfig splits a combined rate into two equal components.
func NewSplitTaxConfig(combinedPercent decimal.Decimal) TaxConfig {
	half := combinedPercent.Div(decimal.NewFromInt(2))
	return TaxConfig{CGSTPercent: half, SGSTPercent: half}
}

// DefaultTaxConfig is 18% combined, 9% + 9%.
func DefaultTaxConfig() TaxConfig {
	return NewSplitTaxConfig(decimal.NewFromInt(18))
}

// CombinedPercent returns the effective rate.
func (c TaxConfig) CombinedPercent() decimal.Decimal {
	return c.CGSTPercent.Add(c.SGSTPercent)
}

// TaxBreakdown is the result of a tax computation. Total is the sum of the
// independently rounded components, so it may differ by one unit from
// rounding taxable*combined once.
type TaxBreakdown struct {
	CGST  int64 `json:"cgst"`
	SGST  int64 `json:"sgst"`
	Total int64 `json:"total"`
}

// ComputeTax panics on a negative taxable amount: callers derive it from
// subtotal - discount, which is never negative on a consistent bill.
func ComputeTax(taxable int64, cfg TaxConfig) TaxBreakdown {
	if taxable < 0 {
		panic(fmt.Sprintf("pricing: negative taxable amount %d", taxable))
	}
	cgst := money.PercentOf(taxable, cfg.CGSTPercent)
	sgst := money.PercentOf(taxable, cfg.SGSTPercent)
	return TaxBreakdown{CGST: cgst, SGST: sgst, Total: cgst + sgst}
}
