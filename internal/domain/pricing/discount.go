package pricing

import (
	"fmt"

	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
	"github.com/sangkips/pharmacy-pos/pkg/money"
	"github.com/shopspring/decimal"
)

// ApplyDiscount validates a requested discount against subtotal and returns
// the absolute amount to store on the bill.
func ApplyDiscount(subtotal int64, requested decimal.Decimal, mode enum.DiscountMode, maxPercent decimal.Decimal) (int64, error) {
	if requested.IsNegative() {
		return 0, apperror.ErrInvalidDiscount
	}

	var amount int64
	switch mode {
	case enum.DiscountModePercent:
		if requested.GreaterThan(maxPercent) {
			return 0, apperror.ErrDiscountExceedsPolicy.WithMessage(
				fmt.Sprintf("Discount of %s%% exceeds the maximum of %s%%", requested.String(), maxPercent.String()))
		}
		amount = money.PercentOf(subtotal, requested)
	case enum.DiscountModeFlat:
		amount = money.Round(requested)
	default:
		return 0, apperror.ErrInvalidDiscount.WithMessage(
			fmt.Sprintf("Unknown discount mode %d", int(mode)))
	}

	if amount > subtotal {
		return 0, apperror.ErrDiscountExceedsSubtotal.WithMessage(
			fmt.Sprintf("Discount of %d exceeds the subtotal of %d", amount, subtotal))
	}
	return amount, nil
}
