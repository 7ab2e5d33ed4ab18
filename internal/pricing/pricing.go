// Package pricing holds the money arithmetic for order lines and totals.
// All amounts are rounded half away from zero to two decimal places.
package pricing

import "github.com/shopspring/decimal"

const Places = 2

// Limits that keep every amount inside a decimal(10,2) column.
var (
	MaxAmount    = decimal.New(9999999999, -Places)
	MaxUnitPrice = decimal.New(9999999, -Places)
)

// Fits reports whether d can be stored as a decimal(10,2) amount.
func Fits(d decimal.Decimal) bool {
	return Round(d).Abs().LessThanOrEqual(MaxAmount)
}

func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// LineTotal is round(price * quantity, 2).
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return Round(price.Mul(decimal.NewFromInt(int64(quantity))))
}

// Total is round(sum(lineTotals), 2). An empty list totals zero.
func Total(lineTotals []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, lt := range lineTotals {
		sum = sum.Add(lt)
	}
	return Round(sum)
}

// Format renders an amount in the fixed two-decimal wire form ("55.50").
func Format(d decimal.Decimal) string {
	return d.StringFixed(Places)
}
