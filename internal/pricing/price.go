// Package pricing converts raw product cost figures into displayed
// local-currency prices. All functions are pure; callers pass the
// exchange rate explicitly on every call.
package pricing

import "math"

// RoundingStep is the local-currency granularity of displayed prices.
const RoundingStep = 500

// PerUnitDivisor relates a carton price to its per-stick display value.
const PerUnitDivisor = 100

// Inputs carries the cost figures FinalPrice needs from a product.
// CartonCost is the legacy cost field; it is consulted only when
// CostUSD is zero.
type Inputs struct {
	CostUSD    float64
	CartonCost float64
	Profit     float64
}

// FinalPrice computes the displayed local-currency price for the given
// cost figures and exchange rate. The effective cost is CostUSD when
// nonzero, otherwise CartonCost. Non-finite or negative costs and
// rates coerce to 0, a non-finite profit coerces to 0, and the result
// is rounded half away from zero to the nearest RoundingStep. The
// result is never negative and never NaN.
func FinalPrice(in Inputs, rate float64) int64 {
	cost := sanitizeCost(in.CostUSD)
	if cost == 0 {
		cost = sanitizeCost(in.CartonCost)
	}
	r := sanitizeCost(rate)
	profit := in.Profit
	if math.IsNaN(profit) || math.IsInf(profit, 0) {
		profit = 0
	}

	base := cost*r + profit
	if math.IsNaN(base) || math.IsInf(base, 0) {
		return 0
	}

	rounded := int64(math.Round(base/RoundingStep)) * RoundingStep
	if rounded < 0 {
		return 0
	}
	return rounded
}

// PerUnit derives the per-stick display value from a final carton
// price. It is a fixed relationship, not a separate rounding rule.
func PerUnit(price int64) int64 {
	return price / PerUnitDivisor
}

func sanitizeCost(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
