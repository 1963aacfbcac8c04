package service

import (
	"github.com/MiulesiKulasekara/cart-service/internal/domain"
	"github.com/shopspring/decimal"
)

// taxRate is applied to the subtotal on every recomputation.
const taxRate = 0.03

// CalculateCartTotal sums unit price times count over the items.
// No rounding happens here; rounding is a presentation concern of the
// coupon discount only.
func CalculateCartTotal(items []domain.CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.UnitPrice * float64(item.Count)
	}
	return total
}

// discountedTotal computes total - total*percent/100 rounded to two
// decimal places.
func discountedTotal(total, percent float64) float64 {
	t := decimal.NewFromFloat(total)
	discount := t.Mul(decimal.NewFromFloat(percent)).Div(decimal.NewFromInt(100))
	return t.Sub(discount).Round(2).InexactFloat64()
}
