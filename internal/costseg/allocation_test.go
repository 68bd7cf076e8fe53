package costseg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sumAllocations(m map[AssetClass]float64) float64 {
	total := 0.0
	for _, fraction := range m {
		total += fraction
	}
	return total
}

func TestBaseAllocationsSumToOne(t *testing.T) {
	assert.InDelta(t, 1.0, sumAllocations(residentialBaseAllocations), 1e-9)
	assert.InDelta(t, 1.0, sumAllocations(commercialBaseAllocations), 1e-9)
}

func TestResidentialHasNoSevenYearBucket(t *testing.T) {
	assert.Zero(t, residentialBaseAllocations[SevenYear])
	assert.Greater(t, commercialBaseAllocations[SevenYear], 0.0)
}

func TestAdjustedAllocationsPreserveSum(t *testing.T) {
	for _, pt := range []PropertyType{Residential, Commercial} {
		adjusted := AdjustedAllocations(pt, 1980, 2024, defaultBaseAllocations(pt))
		assert.InDelta(t, 1.0, sumAllocations(adjusted), 1e-9, "property type %s", pt)
	}
}

func TestAdjustedAllocationsShiftBuildingIntoFifteenYear(t *testing.T) {
	base := defaultBaseAllocations(Residential)
	adjusted := AdjustedAllocations(Residential, 1980, 2024, base)

	assert.Less(t, adjusted[Residential27_5Year], base[Residential27_5Year])
	assert.Greater(t, adjusted[FifteenYear], base[FifteenYear])
	// Untouched classes pass through.
	assert.Equal(t, base[FiveYear], adjusted[FiveYear])
	assert.Equal(t, base[SevenYear], adjusted[SevenYear])
}

func TestOlderBuildingsShiftMore(t *testing.T) {
	base := defaultBaseAllocations(Commercial)
	newer := AdjustedAllocations(Commercial, 2020, 2024, base)
	older := AdjustedAllocations(Commercial, 1950, 2024, base)

	assert.Greater(t, older[FifteenYear], newer[FifteenYear])
	assert.Less(t, older[Commercial39Year], newer[Commercial39Year])
}

func TestAgeAdjustmentFactorBounds(t *testing.T) {
	// Logistic curve bounded to (0, 0.5) before weighting.
	for _, age := range []int{0, 1, 10, 50, 200} {
		factor := ageAdjustmentFactor(2024-age, 2024)
		assert.Greater(t, factor, 0.0, "age %d", age)
		assert.Less(t, factor, 0.5*ageAdjustmentWeight+1e-12, "age %d", age)
	}

	// Age zero sits exactly at the logistic midpoint.
	assert.InDelta(t, 0.25*ageAdjustmentWeight, ageAdjustmentFactor(2024, 2024), 1e-12)
}
