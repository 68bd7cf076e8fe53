package costseg

// AssetClass identifies a MACRS recovery class. The tag values double as the
// keys used in API responses.
type AssetClass string

const (
	// Short-life classes, half-year convention.
	FiveYear    AssetClass = "5yr"
	SevenYear   AssetClass = "7yr"
	FifteenYear AssetClass = "15yr"

	// Building classes, mid-month convention. GDS lives.
	Residential27_5Year AssetClass = "27.5yr"
	Commercial39Year    AssetClass = "39yr"

	// ADS building lives (bonus depreciation disallowed).
	ADSResidential30Year AssetClass = "30yr"
	ADSCommercial40Year  AssetClass = "40yr"
)

// PropertyType selects the building class and the default allocation split.
type PropertyType string

const (
	Residential PropertyType = "residential"
	Commercial  PropertyType = "commercial"
)

// Valid reports whether the property type is one of the supported values.
func (p PropertyType) Valid() bool {
	return p == Residential || p == Commercial
}

// BuildingClass returns the building asset class for the property type,
// using the longer ADS life when the ADS election is in effect.
func (p PropertyType) BuildingClass(useADS bool) AssetClass {
	if p == Residential {
		if useADS {
			return ADSResidential30Year
		}
		return Residential27_5Year
	}
	if useADS {
		return ADSCommercial40Year
	}
	return Commercial39Year
}

// Valid reports whether the asset class is one of the supported classes.
func (a AssetClass) Valid() bool {
	switch a {
	case FiveYear, SevenYear, FifteenYear,
		Residential27_5Year, Commercial39Year,
		ADSResidential30Year, ADSCommercial40Year:
		return true
	}
	return false
}

// ShortLife reports whether the class uses the half-year convention and is
// eligible for bonus depreciation.
func (a AssetClass) ShortLife() bool {
	switch a {
	case FiveYear, SevenYear, FifteenYear:
		return true
	}
	return false
}

// MidMonth reports whether the class requires a placed-in-service month.
func (a AssetClass) MidMonth() bool {
	return a.Valid() && !a.ShortLife()
}

// RecoveryYears returns the number of schedule years the class can span,
// including the extra year introduced by the applicable convention.
func (a AssetClass) RecoveryYears() int {
	switch a {
	case FiveYear:
		return 6
	case SevenYear:
		return 8
	case FifteenYear:
		return 16
	case Residential27_5Year:
		return 29
	case ADSResidential30Year:
		return 31
	case Commercial39Year:
		return 40
	case ADSCommercial40Year:
		return 41
	}
	return 0
}

// Classification is the caller-facing tag on a CapEx item. Tags map
// deterministically onto asset classes; QIP is treated as 15-year property
// and undocumented CapEx defaults to the conservative 5-year class.
type Classification string

const (
	ClassificationQIP      Classification = "QIP"
	Classification5Year    Classification = "5_year"
	Classification7Year    Classification = "7_year"
	Classification15Year   Classification = "15_year"
	Classification27_5Year Classification = "27_5_year"
	Classification39Year   Classification = "39_year"
)

// AssetClass maps the classification tag to its recovery class.
func (c Classification) AssetClass() AssetClass {
	switch c {
	case ClassificationQIP:
		return FifteenYear
	case Classification5Year:
		return FiveYear
	case Classification7Year:
		return SevenYear
	case Classification15Year:
		return FifteenYear
	case Classification27_5Year:
		return Residential27_5Year
	case Classification39Year:
		return Commercial39Year
	}
	return FiveYear
}
