package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dannynerezov/motor-mutual-sub001/internal/models"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

func standardScheme() models.PricingScheme {
	return models.PricingScheme{
		FloorPrice:   500,
		FloorPoint:   5000,
		CeilingPrice: 2000,
		CeilingPoint: 80000,
	}
}

// ============================================================================
// TEST SUITE 1: BASE PREMIUM CALCULATION
// ============================================================================

func TestCalculateBasePremium_FloorBandIsFlat(t *testing.T) {
	service := NewPricingService()
	scheme := standardScheme()

	for _, value := range []float64{0, 1500, 3000, 4999.99, 5000} {
		premium, err := service.CalculateBasePremium(value, scheme)
		require.NoError(t, err)
		assert.Equal(t, 500.0, premium, "values at or below the floor point pay the floor price flat")
	}
}

func TestCalculateBasePremium_Midpoint(t *testing.T) {
	service := NewPricingService()

	premium, err := service.CalculateBasePremium(42500, standardScheme())

	require.NoError(t, err)
	assert.Equal(t, 1250.00, premium, "midpoint of the band should price at the midpoint premium")
}

func TestCalculateBasePremium_CeilingIsIneligible(t *testing.T) {
	service := NewPricingService()
	scheme := standardScheme()

	for _, value := range []float64{80000, 80000.01, 250000} {
		_, err := service.CalculateBasePremium(value, scheme)
		require.Error(t, err)

		var ineligible *VehicleIneligibleError
		require.ErrorAs(t, err, &ineligible)
		assert.Equal(t, 80000.0, ineligible.CeilingPoint, "the error must carry the ceiling for display")
	}
}

func TestCalculateBasePremium_MonotonicInsideBand(t *testing.T) {
	service := NewPricingService()
	scheme := standardScheme()

	previous := 0.0
	for value := 5001.0; value < scheme.CeilingPoint; value += 997 {
		premium, err := service.CalculateBasePremium(value, scheme)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, premium, previous, "premium must not decrease as value increases")
		previous = premium
	}
}

func TestCalculateBasePremium_BandBoundaries(t *testing.T) {
	service := NewPricingService()
	scheme := standardScheme()

	nearFloor, err := service.CalculateBasePremium(scheme.FloorPoint+0.01, scheme)
	require.NoError(t, err)
	assert.InDelta(t, scheme.FloorPrice, nearFloor, 0.01)

	nearCeiling, err := service.CalculateBasePremium(scheme.CeilingPoint-0.01, scheme)
	require.NoError(t, err)
	assert.InDelta(t, scheme.CeilingPrice, nearCeiling, 0.01)
}

func TestCalculateBasePremium_RejectsInvalidScheme(t *testing.T) {
	service := NewPricingService()

	invalidSchemes := []models.PricingScheme{
		{FloorPrice: 500, FloorPoint: 80000, CeilingPrice: 2000, CeilingPoint: 5000}, // inverted points
		{FloorPrice: 500, FloorPoint: 5000, CeilingPrice: 2000, CeilingPoint: 5000},  // zero-width band
		{FloorPrice: 2000, FloorPoint: 5000, CeilingPrice: 500, CeilingPoint: 80000}, // inverted prices
	}

	for _, scheme := range invalidSchemes {
		_, err := service.CalculateBasePremium(10000, scheme)
		require.Error(t, err)

		var invalid *InvalidSchemeError
		assert.True(t, errors.As(err, &invalid), "expected InvalidSchemeError, got %v", err)
	}
}

// ============================================================================
// TEST SUITE 2: EQUATION RENDERING
// ============================================================================

func TestGeneratePricingEquation_MatchesCalculationLine(t *testing.T) {
	service := NewPricingService()

	equation, err := service.GeneratePricingEquation(standardScheme())

	require.NoError(t, err)
	// slope = 1500/75000 = 0.02, intercept = 500 - 0.02*5000 = 400
	assert.Equal(t, "premium = 0.020000 * value + 400.00", equation)
}

func TestGeneratePricingEquation_NegativeIntercept(t *testing.T) {
	service := NewPricingService()
	scheme := models.PricingScheme{
		FloorPrice:   100,
		FloorPoint:   10000,
		CeilingPrice: 1100,
		CeilingPoint: 20000,
	}

	equation, err := service.GeneratePricingEquation(scheme)

	require.NoError(t, err)
	// slope = 1000/10000 = 0.1, intercept = 100 - 0.1*10000 = -900
	assert.Equal(t, "premium = 0.100000 * value - 900.00", equation)
}

// ============================================================================
// TEST SUITE 3: DATA POINTS
// ============================================================================

func TestGeneratePricingDataPoints_NeverReachesCeiling(t *testing.T) {
	service := NewPricingService()
	scheme := standardScheme()

	seq, err := service.GeneratePricingDataPoints(scheme, 0, 200000, 5000)
	require.NoError(t, err)

	count := 0
	for value, premium := range seq {
		assert.Less(t, value, scheme.CeilingPoint, "no point may be yielded at or beyond the ceiling")
		assert.GreaterOrEqual(t, premium, scheme.FloorPrice)
		assert.LessOrEqual(t, premium, scheme.CeilingPrice)
		count++
	}
	assert.Equal(t, 16, count, "0..75000 inclusive at 5000 steps")
}

func TestGeneratePricingDataPoints_IsRestartable(t *testing.T) {
	service := NewPricingService()

	seq, err := service.GeneratePricingDataPoints(standardScheme(), 5000, 80000, 10000)
	require.NoError(t, err)

	first := 0
	for range seq {
		first++
	}
	second := 0
	for range seq {
		second++
	}
	assert.Equal(t, first, second, "the sequence must be restartable")
	assert.Positive(t, first)
}

func TestGeneratePricingDataPoints_RejectsBadStep(t *testing.T) {
	service := NewPricingService()

	_, err := service.GeneratePricingDataPoints(standardScheme(), 0, 10000, 0)
	assert.Error(t, err)
}

// ============================================================================
// TEST SUITE 4: STATS
// ============================================================================

func TestGetPricingStats(t *testing.T) {
	service := NewPricingService()

	stats, err := service.GetPricingStats(standardScheme())

	require.NoError(t, err)
	assert.Equal(t, 500.0, stats.MinPremium)
	assert.Equal(t, 2000.0, stats.MaxPremium)
	assert.InDelta(t, 20.0, stats.RatePerThousand, 1e-9, "slope 0.02 per dollar is $20 per $1000")
	assert.Greater(t, stats.AvgPremium, stats.MinPremium)
	assert.Less(t, stats.AvgPremium, stats.MaxPremium)
}
