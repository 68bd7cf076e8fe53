package costseg

import "math"

// ageAdjustmentWeight scales the logistic age factor into the final
// building-to-15yr shift. Tunable model parameter, not a statutory rate.
const ageAdjustmentWeight = 0.22

// Default allocation splits by property type, as fractions of depreciable
// basis. Residential property has no 7-year bucket. Each set sums to
// exactly 1 before the age adjustment.
var (
	residentialBaseAllocations = map[AssetClass]float64{
		FiveYear:            0.08926036,
		SevenYear:           0,
		FifteenYear:         0.27500630,
		Residential27_5Year: 0.63573334,
	}

	commercialBaseAllocations = map[AssetClass]float64{
		FiveYear:         0.07000000,
		SevenYear:        0.01926036,
		FifteenYear:      0.27500630,
		Commercial39Year: 0.63573334,
	}
)

// ageAdjustmentFactor maps a property's age onto (0, 0.11): a logistic
// curve bounded to (0, 0.5), weighted by ageAdjustmentWeight.
func ageAdjustmentFactor(yearBuilt, taxYear int) float64 {
	age := float64(taxYear - yearBuilt)
	logistic := 0.5 / (1 + math.Exp(-0.01*age))
	return logistic * ageAdjustmentWeight
}

// defaultBaseAllocations returns a copy of the base split for the property
// type, keyed by GDS classes.
func defaultBaseAllocations(propertyType PropertyType) map[AssetClass]float64 {
	base := commercialBaseAllocations
	if propertyType == Residential {
		base = residentialBaseAllocations
	}
	out := make(map[AssetClass]float64, len(base))
	for class, fraction := range base {
		out[class] = fraction
	}
	return out
}

// AdjustedAllocations applies the age-driven shift to a base split: older
// buildings are assumed to hold proportionally more short-life components,
// so a slice of the building allocation moves into the 15-year class. All
// other classes pass through unchanged.
func AdjustedAllocations(propertyType PropertyType, yearBuilt, taxYear int, base map[AssetClass]float64) map[AssetClass]float64 {
	adjustment := ageAdjustmentFactor(yearBuilt, taxYear)

	buildingClass := propertyType.BuildingClass(false)
	buildingBase := base[buildingClass]

	adjusted := make(map[AssetClass]float64, len(base))
	for class, fraction := range base {
		adjusted[class] = fraction
	}
	adjusted[buildingClass] = buildingBase * (1 - adjustment)
	adjusted[FifteenYear] = base[FifteenYear] + adjustment*buildingBase
	return adjusted
}
