package costseg

import (
	"github.com/shopspring/decimal"
)

// Half-year convention tables (IRS Pub 946, 200%/150% declining balance).
// Index 0 is recovery year 1.
var (
	macrs5YearHY = []float64{20.00, 32.00, 19.20, 11.52, 11.52, 5.76}

	macrs7YearHY = []float64{14.29, 24.49, 17.49, 12.49, 8.93, 8.92, 8.93, 4.46}

	macrs15YearHY = []float64{
		5.00, 9.50, 8.55, 7.70, 6.93, 6.23, 5.90, 5.90,
		5.91, 5.90, 5.91, 5.90, 5.91, 5.90, 5.91, 2.95,
	}
)

// Published year-1 rows for the GDS building tables (IRS Pub 946, tables
// A-6 and A-7a), indexed by placed-in-service month.
var (
	firstYear27_5 = [12]float64{
		3.485, 3.182, 2.879, 2.576, 2.273, 1.970,
		1.667, 1.364, 1.061, 0.758, 0.455, 0.152,
	}
	firstYear39 = [12]float64{
		2.461, 2.247, 2.033, 1.819, 1.605, 1.391,
		1.177, 0.963, 0.749, 0.535, 0.321, 0.107,
	}
)

// Mid-month convention tables, one column per placed-in-service month
// (index 0 is January). Built once at init: year 1 takes the published
// month-dependent percentage, interior years take the flat 100/life rate,
// and the final year takes the exact remainder so every column sums to
// precisely 100%. The ADS 30/40-year year-1 rows are computed from the
// mid-month fraction (12 - month + 0.5)/12 directly.
var (
	macrs27_5YearMM [12][]float64
	macrs30YearMM   [12][]float64
	macrs39YearMM   [12][]float64
	macrs40YearMM   [12][]float64
)

func init() {
	macrs27_5YearMM = buildMidMonthTable(decimal.NewFromFloat(27.5), &firstYear27_5)
	macrs30YearMM = buildMidMonthTable(decimal.NewFromInt(30), nil)
	macrs39YearMM = buildMidMonthTable(decimal.NewFromInt(39), &firstYear39)
	macrs40YearMM = buildMidMonthTable(decimal.NewFromInt(40), nil)
}

func buildMidMonthTable(life decimal.Decimal, firstYear *[12]float64) [12][]float64 {
	var table [12][]float64

	hundred := decimal.NewFromInt(100)
	twelve := decimal.NewFromInt(12)
	interior := hundred.Div(life).Round(3)

	for month := 1; month <= 12; month++ {
		var first decimal.Decimal
		if firstYear != nil {
			first = decimal.NewFromFloat(firstYear[month-1])
		} else {
			monthsInService := decimal.NewFromFloat(float64(12-month) + 0.5)
			first = hundred.Mul(monthsInService).Div(twelve).Div(life).Round(3)
		}

		col := []float64{first.InexactFloat64()}
		remaining := hundred.Sub(first)
		for remaining.GreaterThan(interior) {
			col = append(col, interior.InexactFloat64())
			remaining = remaining.Sub(interior)
		}
		col = append(col, remaining.InexactFloat64())
		table[month-1] = col
	}
	return table
}

func midMonthTable(class AssetClass) [12][]float64 {
	switch class {
	case Residential27_5Year:
		return macrs27_5YearMM
	case ADSResidential30Year:
		return macrs30YearMM
	case Commercial39Year:
		return macrs39YearMM
	case ADSCommercial40Year:
		return macrs40YearMM
	}
	return [12][]float64{}
}

func halfYearTable(class AssetClass) []float64 {
	switch class {
	case FiveYear:
		return macrs5YearHY
	case SevenYear:
		return macrs7YearHY
	case FifteenYear:
		return macrs15YearHY
	}
	return nil
}

// PercentageForYear returns the MACRS percentage for a recovery year
// (1-based). Half-year classes ignore month; mid-month classes require the
// placed-in-service month (1-12) and return ErrMonthRequired without one.
// Years past the recovery span return 0: the asset is fully depreciated.
func PercentageForYear(class AssetClass, year, month int) (float64, error) {
	if class.ShortLife() {
		table := halfYearTable(class)
		if year < 1 || year > len(table) {
			return 0, nil
		}
		return table[year-1], nil
	}
	if !class.MidMonth() {
		return 0, ErrUnknownAssetClass
	}
	if month < 1 || month > 12 {
		return 0, ErrMonthRequired
	}
	col := midMonthTable(class)[month-1]
	if year < 1 || year > len(col) {
		return 0, nil
	}
	return col[year-1], nil
}

// AccumulatedThrough returns the percentage of basis recovered from year 1
// through the given year inclusive.
func AccumulatedThrough(class AssetClass, years, month int) (float64, error) {
	total := 0.0
	for year := 1; year <= years; year++ {
		pct, err := PercentageForYear(class, year, month)
		if err != nil {
			return 0, err
		}
		total += pct
	}
	return total, nil
}
