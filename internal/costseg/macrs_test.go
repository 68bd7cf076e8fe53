package costseg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHalfYearTablesSumTo100(t *testing.T) {
	for _, class := range []AssetClass{FiveYear, SevenYear, FifteenYear} {
		total, err := AccumulatedThrough(class, class.RecoveryYears(), 0)
		require.NoError(t, err)
		assert.InDelta(t, 100.0, total, 1e-9, "class %s", class)
	}
}

func TestHalfYearTableValues(t *testing.T) {
	pct, err := PercentageForYear(FiveYear, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 20.0, pct)

	pct, err = PercentageForYear(FiveYear, 6, 0)
	require.NoError(t, err)
	assert.Equal(t, 5.76, pct)

	pct, err = PercentageForYear(SevenYear, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 24.49, pct)

	pct, err = PercentageForYear(FifteenYear, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 5.0, pct)
}

func TestHalfYearOutOfRangeYearsAreZero(t *testing.T) {
	for _, year := range []int{0, -3, 7, 100} {
		pct, err := PercentageForYear(FiveYear, year, 0)
		require.NoError(t, err)
		assert.Zero(t, pct, "year %d", year)
	}
}

func TestMidMonthColumnsSumTo100(t *testing.T) {
	classes := []AssetClass{
		Residential27_5Year,
		ADSResidential30Year,
		Commercial39Year,
		ADSCommercial40Year,
	}
	for _, class := range classes {
		for month := 1; month <= 12; month++ {
			total, err := AccumulatedThrough(class, class.RecoveryYears(), month)
			require.NoError(t, err)
			assert.InDelta(t, 100.0, total, 1e-9, "class %s month %d", class, month)
		}
	}
}

func TestMidMonthFirstYearValues(t *testing.T) {
	// IRS Pub 946 year-1 rows.
	pct, err := PercentageForYear(Residential27_5Year, 1, 1)
	require.NoError(t, err)
	assert.InDelta(t, 3.485, pct, 1e-9)

	pct, err = PercentageForYear(Residential27_5Year, 1, 12)
	require.NoError(t, err)
	assert.InDelta(t, 0.152, pct, 1e-9)

	pct, err = PercentageForYear(Commercial39Year, 1, 6)
	require.NoError(t, err)
	assert.InDelta(t, 1.391, pct, 1e-9)
}

func TestMidMonthInteriorAndFinalYears(t *testing.T) {
	pct, err := PercentageForYear(Residential27_5Year, 10, 4)
	require.NoError(t, err)
	assert.InDelta(t, 3.636, pct, 1e-9)

	// January placement leaves only the 0.107% stub for year 40.
	pct, err = PercentageForYear(Commercial39Year, 40, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.107, pct, 1e-9)

	// ADS interior rates.
	pct, err = PercentageForYear(ADSResidential30Year, 5, 7)
	require.NoError(t, err)
	assert.InDelta(t, 3.333, pct, 1e-9)

	pct, err = PercentageForYear(ADSCommercial40Year, 5, 7)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, pct, 1e-9)
}

func TestMidMonthFirstYearMonotonicByMonth(t *testing.T) {
	classes := []AssetClass{
		Residential27_5Year,
		ADSResidential30Year,
		Commercial39Year,
		ADSCommercial40Year,
	}
	for _, class := range classes {
		prev := 101.0
		for month := 1; month <= 12; month++ {
			pct, err := PercentageForYear(class, 1, month)
			require.NoError(t, err)
			assert.Less(t, pct, prev, "class %s month %d", class, month)
			prev = pct
		}
	}
}

func TestMidMonthRequiresMonth(t *testing.T) {
	_, err := PercentageForYear(Residential27_5Year, 1, 0)
	assert.ErrorIs(t, err, ErrMonthRequired)

	_, err = AccumulatedThrough(Commercial39Year, 5, 13)
	assert.ErrorIs(t, err, ErrMonthRequired)
}

func TestUnknownAssetClass(t *testing.T) {
	_, err := PercentageForYear(AssetClass("99yr"), 1, 1)
	assert.ErrorIs(t, err, ErrUnknownAssetClass)
}

func TestAccumulatedThroughZeroYears(t *testing.T) {
	total, err := AccumulatedThrough(FiveYear, 0, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}
