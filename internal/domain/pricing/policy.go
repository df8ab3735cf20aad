package pricing

import "github.com/shopspring/decimal"

// Policy bundles the pricing rules a bill is built under.
type Policy struct {
	Tax                TaxConfig
	MaxDiscountPercent decimal.Decimal
}

func DefaultPolicy() Policy {
	return Policy{
		Tax:                DefaultTaxConfig(),
		MaxDiscountPercent: decimal.NewFromInt(20),
	}
}
