package money

import "github.com/shopspring/decimal"

var (
	// Cent is the tolerance used when comparing settled amounts.
	Cent    = decimal.New(1, -2)
	Hundred = decimal.NewFromInt(100)
)

// Round2 rounds half away from zero to 2 decimal places.
func Round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// EqualWithinCent reports |a-b| < 0.01; values a full cent apart differ.
func EqualWithinCent(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(Cent)
}

// Sum adds all values.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Percent converts a percentage (1.5) to a ratio (0.015).
func Percent(p decimal.Decimal) decimal.Decimal { return p.Div(Hundred) }

// NonNegative clamps d at zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
