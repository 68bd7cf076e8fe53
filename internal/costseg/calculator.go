package costseg

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// DefaultScheduleYears is the projection horizon used when the caller does
// not choose one.
const DefaultScheduleYears = 10

// allocationSumTolerance bounds how far explicit allocation fractions may
// drift from summing to exactly 1.
const allocationSumTolerance = 1e-6

// centTolerance is the allowed per-class drift in reconciliation checks.
var centTolerance = decimal.New(1, -2)

// ClassAmounts maps asset classes to dollar amounts rounded to the cent.
type ClassAmounts map[AssetClass]decimal.Decimal

// Total sums the per-class amounts. Because every entry is already
// quantized to the cent, the total reconciles with its parts exactly.
func (ca ClassAmounts) Total() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range ca {
		total = total.Add(amount)
	}
	return total
}

func (ca ClassAmounts) merge(other ClassAmounts) ClassAmounts {
	out := make(ClassAmounts, len(ca)+len(other))
	for class, amount := range ca {
		out[class] = amount
	}
	for class, amount := range other {
		out[class] = out[class].Add(amount)
	}
	return out
}

// PropertyFacts is the immutable caller-supplied description of a property.
// Dollar fields are plain dollars; Allocations, when given, are fractions
// of depreciable basis keyed by GDS asset class and must sum to 1.
type PropertyFacts struct {
	PurchasePrice float64
	LandValue     float64

	// LegacyCapEx is a lump-sum capital expenditure folded into the basis.
	// Ignored when CapExItems are present; pools supersede it.
	LegacyCapEx float64

	// 1031-exchange carryovers.
	PriorAccumulatedDepreciation float64
	DeferredGain                 float64

	AcquisitionDate time.Time
	// FilingDate is the cost-segregation study / tax filing date.
	FilingDate time.Time

	PropertyType PropertyType
	// YearBuilt defaults to the acquisition year when zero.
	YearBuilt int

	// UseADS elects the Alternative Depreciation System: longer building
	// lives and no bonus depreciation. Mutually exclusive with BonusOverride.
	UseADS bool
	// BonusOverride, when set, replaces the date-resolved bonus percentage
	// (0-100) for the property and every CapEx pool.
	BonusOverride *float64

	Allocations map[AssetClass]float64
	CapExItems  []CapExItem
}

// Calculator computes MACRS depreciation schedules for a single property.
// All derived state is fixed at construction; every query method is a pure
// function of it, so a single instance is safe for concurrent readers.
type Calculator struct {
	facts PropertyFacts

	totalDepreciable decimal.Decimal
	bonusRate        float64
	buildingClass    AssetClass
	acquisitionMonth int

	// allocations holds fractions keyed by the effective classes (building
	// under its ADS key when elected); allocated holds the cent-quantized
	// dollar amounts, with the building class absorbing the rounding
	// remainder so the amounts sum to the basis exactly.
	allocations map[AssetClass]float64
	allocated   ClassAmounts

	pools []capExPool
}

// NewCalculator validates the facts and computes allocations, bonus rates,
// and CapEx pools eagerly. Input-shape problems fail here, never later.
func NewCalculator(facts PropertyFacts) (*Calculator, error) {
	if facts.AcquisitionDate.IsZero() {
		return nil, invalidInputf("acquisition date is required")
	}
	if facts.FilingDate.IsZero() {
		return nil, invalidInputf("filing date is required")
	}
	if facts.FilingDate.Year() < facts.AcquisitionDate.Year() {
		return nil, invalidInputf("filing year %d precedes acquisition year %d",
			facts.FilingDate.Year(), facts.AcquisitionDate.Year())
	}
	if !facts.PropertyType.Valid() {
		return nil, invalidInputf("unknown property type %q", facts.PropertyType)
	}
	if facts.UseADS && facts.BonusOverride != nil {
		return nil, invalidInputf("ADS election and bonus override are mutually exclusive")
	}
	if facts.BonusOverride != nil && (*facts.BonusOverride < 0 || *facts.BonusOverride > 100) {
		return nil, invalidInputf("bonus override must be within 0-100, got %v", *facts.BonusOverride)
	}

	facts.AcquisitionDate = dateOnly(facts.AcquisitionDate)
	facts.FilingDate = dateOnly(facts.FilingDate)
	if facts.YearBuilt == 0 {
		facts.YearBuilt = facts.AcquisitionDate.Year()
	}

	c := &Calculator{
		facts:            facts,
		buildingClass:    facts.PropertyType.BuildingClass(facts.UseADS),
		acquisitionMonth: int(facts.AcquisitionDate.Month()),
	}

	// Basis: the base acquisition only. CapEx pools are tracked separately;
	// the legacy lump sum folds in only when no pools are given.
	basis := facts.PurchasePrice - facts.LandValue -
		facts.PriorAccumulatedDepreciation - facts.DeferredGain
	if len(facts.CapExItems) == 0 {
		basis += facts.LegacyCapEx
	}
	c.totalDepreciable = decimal.NewFromFloat(basis).Round(2)

	switch {
	case facts.UseADS:
		c.bonusRate = 0
	case facts.BonusOverride != nil:
		c.bonusRate = *facts.BonusOverride
	default:
		c.bonusRate = BonusRateForDate(facts.AcquisitionDate)
	}

	fractions, err := c.resolveAllocations()
	if err != nil {
		return nil, err
	}
	c.allocations = fractions
	c.allocated = c.allocateBasis(fractions)

	for i, item := range facts.CapExItems {
		pool, err := newCapExPool(item, facts.BonusOverride, facts.UseADS)
		if err != nil {
			return nil, errors.Wrapf(err, "capex item %d", i)
		}
		c.pools = append(c.pools, pool)
	}

	return c, nil
}

// resolveAllocations returns basis fractions keyed by the effective asset
// classes. Explicit allocations are taken as fractions only; the previous
// magnitude heuristic ("> 1 means percent") is deliberately gone.
func (c *Calculator) resolveAllocations() (map[AssetClass]float64, error) {
	gdsBuilding := c.facts.PropertyType.BuildingClass(false)

	var fractions map[AssetClass]float64
	if len(c.facts.Allocations) > 0 {
		sum := 0.0
		for class, fraction := range c.facts.Allocations {
			if !class.Valid() {
				return nil, invalidInputf("unknown allocation class %q", class)
			}
			if class.MidMonth() && class != gdsBuilding {
				return nil, invalidInputf("building allocation must use class %q for %s property",
					gdsBuilding, c.facts.PropertyType)
			}
			if fraction < 0 || fraction > 1 {
				return nil, invalidInputf("allocation for %s must be a fraction in [0,1], got %v", class, fraction)
			}
			sum += fraction
		}
		if math.Abs(sum-1) > allocationSumTolerance {
			return nil, invalidInputf("allocations must sum to 1, got %v", sum)
		}
		fractions = make(map[AssetClass]float64, len(c.facts.Allocations))
		for class, fraction := range c.facts.Allocations {
			fractions[class] = fraction
		}
	} else {
		fractions = AdjustedAllocations(
			c.facts.PropertyType,
			c.facts.YearBuilt,
			c.facts.FilingDate.Year(),
			defaultBaseAllocations(c.facts.PropertyType),
		)
	}

	// Remap the building fraction onto the ADS life when elected.
	out := map[AssetClass]float64{
		FiveYear:        fractions[FiveYear],
		SevenYear:       fractions[SevenYear],
		FifteenYear:     fractions[FifteenYear],
		c.buildingClass: fractions[gdsBuilding],
	}
	return out, nil
}

// allocateBasis converts fractions into cent-quantized dollar amounts. Any
// rounding remainder lands on the building class so the amounts sum to the
// basis exactly.
func (c *Calculator) allocateBasis(fractions map[AssetClass]float64) ClassAmounts {
	amounts := make(ClassAmounts, len(fractions))
	for class, fraction := range fractions {
		amounts[class] = c.totalDepreciable.Mul(decimal.NewFromFloat(fraction)).Round(2)
	}
	diff := c.totalDepreciable.Sub(amounts.Total())
	if !diff.IsZero() {
		amounts[c.buildingClass] = amounts[c.buildingClass].Add(diff)
	}
	return amounts
}

// BonusRate returns the resolved bonus percentage for the base property.
func (c *Calculator) BonusRate() float64 { return c.bonusRate }

// BuildingClass returns the effective building class (ADS-aware).
func (c *Calculator) BuildingClass() AssetClass { return c.buildingClass }

// TotalDepreciable returns the depreciable basis of the base acquisition.
func (c *Calculator) TotalDepreciable() decimal.Decimal { return c.totalDepreciable }

// YearsElapsed returns filing year minus acquisition year.
func (c *Calculator) YearsElapsed() int {
	return c.facts.FilingDate.Year() - c.facts.AcquisitionDate.Year()
}

// Allocations returns a copy of the basis fractions by class.
func (c *Calculator) Allocations() map[AssetClass]float64 {
	out := make(map[AssetClass]float64, len(c.allocations))
	for class, fraction := range c.allocations {
		out[class] = fraction
	}
	return out
}

// AllocatedAmounts returns a copy of the dollar allocation by class.
func (c *Calculator) AllocatedAmounts() ClassAmounts {
	out := make(ClassAmounts, len(c.allocated))
	for class, amount := range c.allocated {
		out[class] = amount
	}
	return out
}

// classYearDepreciation returns the unrounded depreciation one class earns
// in one recovery year under the given bonus rate. Short-life bonus is
// attributed entirely to year 1; later years recover only the non-bonused
// remainder. Building classes never take bonus.
func (c *Calculator) classYearDepreciation(class AssetClass, amount decimal.Decimal, year int, bonusRate float64) (decimal.Decimal, error) {
	if amount.IsZero() {
		return decimal.Zero, nil
	}

	if class.ShortLife() {
		if bonusRate == 100 {
			if year == 1 {
				return amount, nil
			}
			return decimal.Zero, nil
		}
		pct, err := PercentageForYear(class, year, 0)
		if err != nil {
			return decimal.Zero, err
		}
		regular := amount.Mul(percentFraction(100 - bonusRate))
		if year == 1 {
			bonus := amount.Sub(regular)
			return bonus.Add(regular.Mul(percentFraction(pct))), nil
		}
		return regular.Mul(percentFraction(pct)), nil
	}

	pct, err := PercentageForYear(class, year, c.acquisitionMonth)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(percentFraction(pct)), nil
}

// classAccumulated returns the unrounded accumulated depreciation for one
// class through the given recovery year.
func (c *Calculator) classAccumulated(class AssetClass, amount decimal.Decimal, years int, bonusRate float64) (decimal.Decimal, error) {
	if amount.IsZero() || years < 1 {
		return decimal.Zero, nil
	}

	if class.ShortLife() {
		if bonusRate == 100 {
			return amount, nil
		}
		pct, err := AccumulatedThrough(class, years, 0)
		if err != nil {
			return decimal.Zero, err
		}
		regular := amount.Mul(percentFraction(100 - bonusRate))
		bonus := amount.Sub(regular)
		return bonus.Add(regular.Mul(percentFraction(pct))), nil
	}

	pct, err := AccumulatedThrough(class, years, c.acquisitionMonth)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(percentFraction(pct)), nil
}

// CurrentYearDepreciation returns the depreciation earned in a single
// recovery year (1-based), by class. Years past a class's recovery span
// yield zero for that class.
func (c *Calculator) CurrentYearDepreciation(year int) (ClassAmounts, error) {
	if year < 1 {
		return nil, invalidInputf("depreciation year must be >= 1, got %d", year)
	}
	results := make(ClassAmounts, len(c.allocated))
	for class, amount := range c.allocated {
		dep, err := c.classYearDepreciation(class, amount, year, c.bonusRate)
		if err != nil {
			return nil, err
		}
		results[class] = dep.Round(2)
	}
	return results, nil
}

// Year1Depreciation returns first-year depreciation including the bonus
// portion for short-life classes.
func (c *Calculator) Year1Depreciation() (ClassAmounts, error) {
	return c.CurrentYearDepreciation(1)
}

// AccumulatedDepreciation returns accumulated depreciation by class through
// the given recovery year. CapEx pools are tracked separately; see
// CapExAccumulated.
func (c *Calculator) AccumulatedDepreciation(years int) (ClassAmounts, error) {
	if years < 0 {
		return nil, invalidInputf("years must be >= 0, got %d", years)
	}
	results := make(ClassAmounts, len(c.allocated))
	for class, amount := range c.allocated {
		acc, err := c.classAccumulated(class, amount, years, c.bonusRate)
		if err != nil {
			return nil, err
		}
		results[class] = acc.Round(2)
	}
	return results, nil
}

// StandardDepreciation returns the counterfactual straight-line total the
// owner would have taken without a cost segregation study: the building
// class percentage applied to the entire basis. CapEx pools never enter
// this method; they are depreciated separately from the base acquisition.
func (c *Calculator) StandardDepreciation(years int) (decimal.Decimal, error) {
	if years < 0 {
		return decimal.Zero, invalidInputf("years must be >= 0, got %d", years)
	}
	pct, err := AccumulatedThrough(c.buildingClass, years, c.acquisitionMonth)
	if err != nil {
		return decimal.Zero, err
	}
	return c.totalDepreciable.Mul(percentFraction(pct)).Round(2), nil
}

// CapExCurrentYear aggregates the CapEx pools' depreciation for a calendar
// year, by class. Pools not yet in service contribute zero.
func (c *Calculator) CapExCurrentYear(calendarYear int) (ClassAmounts, error) {
	return c.aggregatePools(func(p capExPool) (decimal.Decimal, error) {
		return p.depreciationForYear(calendarYear)
	})
}

// CapExAccumulated aggregates the CapEx pools' accumulated depreciation
// through a calendar year, by class.
func (c *Calculator) CapExAccumulated(calendarYear int) (ClassAmounts, error) {
	return c.aggregatePools(func(p capExPool) (decimal.Decimal, error) {
		return p.accumulatedThrough(calendarYear)
	})
}

func (c *Calculator) aggregatePools(each func(capExPool) (decimal.Decimal, error)) (ClassAmounts, error) {
	byClass := ClassAmounts{}
	for _, pool := range c.pools {
		dep, err := each(pool)
		if err != nil {
			return nil, err
		}
		byClass[pool.class] = byClass[pool.class].Add(dep.Round(2))
	}
	return byClass, nil
}

// Adjustment481a is the one-time catch-up record produced when a cost
// segregation study is filed after the acquisition year.
type Adjustment481a struct {
	YearsElapsed            int
	ShouldHaveTaken         decimal.Decimal
	ShouldHaveTakenDetail   ClassAmounts
	DidTake                 decimal.Decimal
	CatchUpAdjustment       decimal.Decimal
	CurrentYearDepreciation ClassAmounts
	CurrentYearTotal        decimal.Decimal
	TotalFirstYearBenefit   decimal.Decimal
}

// Calculate481a reconciles the depreciation that should have been taken
// under cost segregation against the straight-line amounts actually taken,
// and reports the filing-year depreciation including CapEx pools.
func (c *Calculator) Calculate481a() (*Adjustment481a, error) {
	yearsElapsed := c.YearsElapsed()
	filingYear := c.facts.FilingDate.Year()

	if yearsElapsed == 0 {
		current, err := c.Year1Depreciation()
		if err != nil {
			return nil, err
		}
		capexCurrent, err := c.CapExCurrentYear(filingYear)
		if err != nil {
			return nil, err
		}
		current = current.merge(capexCurrent)
		total := current.Total()
		return &Adjustment481a{
			YearsElapsed:            0,
			ShouldHaveTaken:         decimal.Zero,
			DidTake:                 decimal.Zero,
			CatchUpAdjustment:       decimal.Zero,
			CurrentYearDepreciation: current,
			CurrentYearTotal:        total,
			TotalFirstYearBenefit:   total,
		}, nil
	}

	should, err := c.AccumulatedDepreciation(yearsElapsed)
	if err != nil {
		return nil, err
	}
	capexPrior, err := c.CapExAccumulated(filingYear - 1)
	if err != nil {
		return nil, err
	}
	should = should.merge(capexPrior)
	shouldTotal := should.Total()

	didTake, err := c.StandardDepreciation(yearsElapsed)
	if err != nil {
		return nil, err
	}

	current, err := c.CurrentYearDepreciation(yearsElapsed + 1)
	if err != nil {
		return nil, err
	}
	capexCurrent, err := c.CapExCurrentYear(filingYear)
	if err != nil {
		return nil, err
	}
	current = current.merge(capexCurrent)
	currentTotal := current.Total()

	catchUp := shouldTotal.Sub(didTake)

	return &Adjustment481a{
		YearsElapsed:            yearsElapsed,
		ShouldHaveTaken:         shouldTotal,
		ShouldHaveTakenDetail:   should,
		DidTake:                 didTake,
		CatchUpAdjustment:       catchUp,
		CurrentYearDepreciation: current,
		CurrentYearTotal:        currentTotal,
		TotalFirstYearBenefit:   catchUp.Add(currentTotal),
	}, nil
}

// ScheduleYear is one row of a projected depreciation schedule.
type ScheduleYear struct {
	Year              int
	CalendarYear      int
	Depreciation      ClassAmounts
	DepreciationTotal decimal.Decimal
	Accumulated       ClassAmounts
	AccumulatedTotal  decimal.Decimal
}

// GenerateSchedule projects per-year and accumulated depreciation for the
// base property over the given number of recovery years.
func (c *Calculator) GenerateSchedule(years int) ([]ScheduleYear, error) {
	if years < 1 {
		return nil, invalidInputf("schedule years must be >= 1, got %d", years)
	}
	schedule := make([]ScheduleYear, 0, years)
	for year := 1; year <= years; year++ {
		current, err := c.CurrentYearDepreciation(year)
		if err != nil {
			return nil, err
		}
		accumulated, err := c.AccumulatedDepreciation(year)
		if err != nil {
			return nil, err
		}
		schedule = append(schedule, ScheduleYear{
			Year:              year,
			CalendarYear:      c.facts.AcquisitionDate.Year() + year - 1,
			Depreciation:      current,
			DepreciationTotal: current.Total(),
			Accumulated:       accumulated,
			AccumulatedTotal:  accumulated.Total(),
		})
	}
	return schedule, nil
}

// RemainingBasisByClass returns the undepreciated basis per class after the
// given recovery year, floored at zero.
func (c *Calculator) RemainingBasisByClass(year int) (ClassAmounts, error) {
	accumulated, err := c.AccumulatedDepreciation(year)
	if err != nil {
		return nil, err
	}
	remaining := make(ClassAmounts, len(c.allocated))
	for class, amount := range c.allocated {
		left := amount.Sub(accumulated[class])
		if left.IsNegative() {
			left = decimal.Zero
		}
		remaining[class] = left
	}
	return remaining, nil
}

// LifeStatus describes how much recovery life a class has left.
type LifeStatus struct {
	YearsRemaining int  `json:"years_remaining"`
	Complete       bool `json:"complete"`
}

// RemainingLifeByClass reports the remaining recovery life per class. A
// short-life class with a 100% bonus rate is complete immediately after
// year 1.
func (c *Calculator) RemainingLifeByClass(year int) map[AssetClass]LifeStatus {
	out := make(map[AssetClass]LifeStatus, len(c.allocated))
	for class := range c.allocated {
		remaining := class.RecoveryYears() - year
		if remaining < 0 {
			remaining = 0
		}
		status := LifeStatus{YearsRemaining: remaining}
		if class.ShortLife() && c.bonusRate == 100 && year >= 1 {
			status = LifeStatus{YearsRemaining: 0, Complete: true}
		} else if remaining == 0 {
			status.Complete = true
		}
		out[class] = status
	}
	return out
}

// LifetimeTotals is the total depreciation available under each method.
type LifetimeTotals struct {
	Standard    decimal.Decimal
	Traditional decimal.Decimal
	Bonus       decimal.Decimal
}

// LifetimeTotals returns the total depreciation each method yields, either
// over the full life or from the filing year forward (catch-up included).
// CapEx pools never enter the standard baseline. The totals are verified
// against full-life schedule summation; a mismatch beyond a cent per class
// is an internal error.
func (c *Calculator) LifetimeTotals(fromFilingYear bool) (LifetimeTotals, error) {
	if err := c.verifyLifetimeReconciliation(); err != nil {
		return LifetimeTotals{}, err
	}

	capexTotal := decimal.Zero
	for _, pool := range c.pools {
		capexTotal = capexTotal.Add(pool.amount)
	}

	basis := c.totalDepreciable
	standard := basis
	if fromFilingYear {
		if yearsElapsed := c.YearsElapsed(); yearsElapsed > 0 {
			slPrior, err := c.StandardDepreciation(yearsElapsed)
			if err != nil {
				return LifetimeTotals{}, err
			}
			standard = basis.Sub(slPrior)
		}
	}
	withCapEx := standard.Add(capexTotal)

	return LifetimeTotals{
		Standard:    standard.Round(2),
		Traditional: withCapEx.Round(2),
		Bonus:       withCapEx.Round(2),
	}, nil
}

// verifyLifetimeReconciliation checks that every class and every CapEx pool
// depreciates to exactly its allocated amount over its full recovery span,
// and that the standard method recovers the full basis. Failures indicate a
// table or aggregation bug.
func (c *Calculator) verifyLifetimeReconciliation() error {
	for class, amount := range c.allocated {
		if amount.IsZero() {
			continue
		}
		for _, bonusRate := range []float64{c.bonusRate, 0} {
			sum := decimal.Zero
			for year := 1; year <= class.RecoveryYears(); year++ {
				dep, err := c.classYearDepreciation(class, amount, year, bonusRate)
				if err != nil {
					return err
				}
				sum = sum.Add(dep)
			}
			if sum.Sub(amount).Abs().GreaterThan(centTolerance) {
				return errors.Wrapf(ErrReconciliation,
					"class %s at bonus %v sums to %s, want %s", class, bonusRate, sum, amount)
			}
		}
	}

	slTotal, err := c.StandardDepreciation(c.buildingClass.RecoveryYears())
	if err != nil {
		return err
	}
	if slTotal.Sub(c.totalDepreciable).Abs().GreaterThan(centTolerance) {
		return errors.Wrapf(ErrReconciliation,
			"standard method sums to %s, want %s", slTotal, c.totalDepreciable)
	}

	for i, pool := range c.pools {
		finalYear := pool.pisDate.Year() + pool.class.RecoveryYears() - 1
		sum, err := pool.accumulatedThrough(finalYear)
		if err != nil {
			return err
		}
		if sum.Sub(pool.amount).Abs().GreaterThan(centTolerance) {
			return errors.Wrapf(ErrReconciliation,
				"capex pool %d sums to %s, want %s", i, sum, pool.amount)
		}
	}
	return nil
}
