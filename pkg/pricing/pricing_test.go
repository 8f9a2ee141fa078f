package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate_WorkedExample(t *testing.T) {
	// 150 sqm at $15/sqm, 1 floor (x1.0), MODERN (x1.2), MODERATE (x1.0),
	// NORTH_AMERICA (x1.0): base 2250, style adds 450, total 2700.
	estimate, err := Calculate(Input{
		Area:       150,
		Unit:       UnitSqM,
		Floors:     1,
		Style:      "MODERN",
		Complexity: "MODERATE",
		Region:     "NORTH_AMERICA",
	}, DefaultRates())

	require.NoError(t, err)
	assert.Equal(t, 2250.0, estimate.BasePrice)
	assert.Equal(t, 2700.0, estimate.TotalPrice)

	var styleAdjustment float64
	for _, adj := range estimate.Adjustments {
		if adj.Factor == "style" {
			styleAdjustment = adj.Amount
		}
	}
	assert.Equal(t, 450.0, styleAdjustment)
}

func TestCalculate_Deterministic(t *testing.T) {
	in := Input{Area: 220, Floors: 2, Style: "SCANDINAVIAN", Complexity: "COMPLEX", Region: "EUROPE"}

	first, err := Calculate(in, DefaultRates())
	require.NoError(t, err)
	second, err := Calculate(in, DefaultRates())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCalculate_AdjustmentsAreAdditive(t *testing.T) {
	// Two floors (x1.1) and COMPLEX (x1.25) on top of MODERN (x1.2):
	// total = base * (1 + 0.1 + 0.2 + 0.25), not the product of multipliers.
	estimate, err := Calculate(Input{
		Area:       100,
		Floors:     2,
		Style:      "MODERN",
		Complexity: "COMPLEX",
		Region:     "NORTH_AMERICA",
	}, DefaultRates())

	require.NoError(t, err)
	assert.Equal(t, 1500.0, estimate.BasePrice)
	assert.InDelta(t, 2325.0, estimate.TotalPrice, 0.01)
}

func TestCalculate_UnknownKeysDefaultToOne(t *testing.T) {
	estimate, err := Calculate(Input{
		Area:       100,
		Floors:     1,
		Style:      "BRUTALIST",
		Complexity: "UNKNOWN",
		Region:     "NORTH_AMERICA",
	}, DefaultRates())

	require.NoError(t, err)
	assert.Equal(t, estimate.BasePrice, estimate.TotalPrice)
}

func TestCalculate_InvalidArea(t *testing.T) {
	_, err := Calculate(Input{Area: 0, Floors: 1}, DefaultRates())
	assert.ErrorIs(t, err, ErrInvalidArea)

	_, err = Calculate(Input{Area: -10, Floors: 1}, DefaultRates())
	assert.ErrorIs(t, err, ErrInvalidArea)
}

func TestCalculate_InvalidFloors(t *testing.T) {
	_, err := Calculate(Input{Area: 100, Floors: 0}, DefaultRates())
	assert.ErrorIs(t, err, ErrInvalidFloor)

	_, err = Calculate(Input{Area: 100, Floors: 5}, DefaultRates())
	assert.ErrorIs(t, err, ErrInvalidFloor)
}

func TestCalculate_SqFtInputConverted(t *testing.T) {
	fromSqM, err := Calculate(Input{Area: 100, Unit: UnitSqM, Floors: 1, Region: "NORTH_AMERICA"}, DefaultRates())
	require.NoError(t, err)

	fromSqFt, err := Calculate(Input{Area: 100 * SqFtPerSqM, Unit: UnitSqFt, Floors: 1, Region: "NORTH_AMERICA"}, DefaultRates())
	require.NoError(t, err)

	assert.InDelta(t, fromSqM.TotalPrice, fromSqFt.TotalPrice, 0.01)
}

func TestAreaConversion_RoundTrip(t *testing.T) {
	for _, area := range []float64{1, 42.5, 150, 10000} {
		roundTripped := ConvertAreaToSqM(ConvertAreaToSqFt(area, UnitSqM), UnitSqFt)
		assert.InDelta(t, area, roundTripped, 1e-9)
	}
}

func TestRecommendByBudget(t *testing.T) {
	rates := DefaultRates()

	// Cheapest combination: SIMPLE (x0.9), cheapest style (x1.0), 1 floor (x1.0)
	// at $15/sqm: effective rate 13.5/sqm. 27000 / 13.5 = 2000 sqm.
	rec, err := RecommendByBudget(27000, "NORTH_AMERICA", rates)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, rec.MaxAreaSqM)
	assert.Equal(t, "ESTATE", rec.PlanType)

	rec, err = RecommendByBudget(1350, "NORTH_AMERICA", rates)
	require.NoError(t, err)
	assert.Equal(t, 100.0, rec.MaxAreaSqM)
	assert.Equal(t, "COMPACT_HOME", rec.PlanType)
}

func TestRecommendByBudget_InvalidBudget(t *testing.T) {
	_, err := RecommendByBudget(0, "EUROPE", DefaultRates())
	assert.Error(t, err)
}

func TestBucketPlanType(t *testing.T) {
	assert.Equal(t, "STUDIO", bucketPlanType(45))
	assert.Equal(t, "COMPACT_HOME", bucketPlanType(60))
	assert.Equal(t, "FAMILY_HOME", bucketPlanType(200))
	assert.Equal(t, "LUXURY_HOME", bucketPlanType(300))
	assert.Equal(t, "ESTATE", bucketPlanType(800))
}
