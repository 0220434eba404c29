package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFinalPriceRoundsToNearestStep(t *testing.T) {
	// 4.74 * 11700 = 55458, plus 500 profit = 55958 -> 56000.
	got := FinalPrice(Inputs{CostUSD: 4.74, Profit: 500}, 11700)
	require.Equal(t, int64(56000), got)
}

func TestFinalPriceFallsBackToCartonCost(t *testing.T) {
	// 22.56 * 11700 = 263952, plus 500 = 264452 -> 264500.
	got := FinalPrice(Inputs{CostUSD: 0, CartonCost: 22.56, Profit: 500}, 11700)
	require.Equal(t, int64(264500), got)

	// A nonzero primary cost wins over the legacy field.
	got = FinalPrice(Inputs{CostUSD: 4.74, CartonCost: 22.56, Profit: 500}, 11700)
	require.Equal(t, int64(56000), got)
}

func TestFinalPriceCoercesBadInputs(t *testing.T) {
	cases := []struct {
		name string
		in   Inputs
		rate float64
		want int64
	}{
		{"nan cost", Inputs{CostUSD: math.NaN(), Profit: 500}, 11700, 500},
		{"inf cost", Inputs{CostUSD: math.Inf(1), Profit: 500}, 11700, 500},
		{"negative cost", Inputs{CostUSD: -3, Profit: 500}, 11700, 500},
		{"nan rate", Inputs{CostUSD: 4.74, Profit: 500}, math.NaN(), 500},
		{"negative rate", Inputs{CostUSD: 4.74, Profit: 500}, -11700, 500},
		{"nan profit", Inputs{CostUSD: 4.74, Profit: math.NaN()}, 11700, 55500},
		{"all zero", Inputs{}, 0, 0},
		{"negative profit dominates", Inputs{Profit: -900}, 11700, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, FinalPrice(tc.in, tc.rate))
		})
	}
}

func TestFinalPriceProperties(t *testing.T) {
	inputs := []Inputs{
		{CostUSD: 4.74, Profit: 500},
		{CostUSD: 0, CartonCost: 22.56, Profit: 500},
		{CostUSD: 1.005, Profit: 250},
		{CostUSD: 123.456, CartonCost: 9.99, Profit: 750},
		{CostUSD: math.NaN(), CartonCost: math.Inf(-1), Profit: math.NaN()},
	}
	rates := []float64{0, 1, 11700, 42000.5, math.NaN(), math.Inf(1)}
	for _, in := range inputs {
		for _, rate := range rates {
			got := FinalPrice(in, rate)
			require.Zero(t, got%RoundingStep, "price must be a multiple of %d", RoundingStep)
			require.GreaterOrEqual(t, got, int64(0))
			// Pure function: repeated calls agree.
			require.Equal(t, got, FinalPrice(in, rate))
		}
	}
}

func TestPerUnitIsFixedRelationship(t *testing.T) {
	require.Equal(t, int64(560), PerUnit(56000))
	require.Equal(t, int64(2650), PerUnit(265000))
	require.Equal(t, int64(0), PerUnit(0))
	// Not independently rounded: 55500/100 keeps full precision.
	require.Equal(t, int64(555), PerUnit(55500))
}
