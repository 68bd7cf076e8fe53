package costseg

import (
	"time"

	"github.com/shopspring/decimal"
)

// CapExItem is a caller-supplied capital improvement. The placed-in-service
// date must already be normalized (see ParseDate).
type CapExItem struct {
	Amount          float64
	PlacedInService time.Time
	Classification  Classification
}

// capExPool is an individually tracked capital expenditure with its own
// placed-in-service date, bonus rate, and recovery class. Pools are created
// at calculator construction and immutable afterwards.
type capExPool struct {
	amount    decimal.Decimal
	pisDate   time.Time
	class     AssetClass
	bonusRate float64
}

func newCapExPool(item CapExItem, bonusOverride *float64, useADS bool) (capExPool, error) {
	if item.Amount < 0 {
		return capExPool{}, invalidInputf("capex amount must not be negative, got %v", item.Amount)
	}
	if item.PlacedInService.IsZero() {
		return capExPool{}, invalidInputf("capex item requires a placed-in-service date")
	}

	pool := capExPool{
		amount:  decimal.NewFromFloat(item.Amount).Round(2),
		pisDate: dateOnly(item.PlacedInService),
		class:   item.Classification.AssetClass(),
	}

	switch {
	case useADS:
		pool.bonusRate = 0
	case bonusOverride != nil:
		pool.bonusRate = *bonusOverride
	default:
		pool.bonusRate = BonusRateForDate(pool.pisDate)
	}
	return pool, nil
}

// depreciationYear converts a calendar year into the pool's 1-based
// recovery year. Values below 1 mean the pool is not yet in service.
func (p capExPool) depreciationYear(calendarYear int) int {
	return calendarYear - p.pisDate.Year() + 1
}

// depreciationForYear returns the pool's depreciation for a single calendar
// year. A pool not yet in service contributes zero.
func (p capExPool) depreciationForYear(calendarYear int) (decimal.Decimal, error) {
	year := p.depreciationYear(calendarYear)
	if year < 1 {
		return decimal.Zero, nil
	}

	if p.class.ShortLife() {
		if p.bonusRate == 100 {
			if year == 1 {
				return p.amount, nil
			}
			return decimal.Zero, nil
		}
		pct, err := PercentageForYear(p.class, year, 0)
		if err != nil {
			return decimal.Zero, err
		}
		regular := p.regularPortion()
		if year == 1 {
			bonus := p.amount.Sub(regular)
			return bonus.Add(regular.Mul(percentFraction(pct))), nil
		}
		return regular.Mul(percentFraction(pct)), nil
	}

	pct, err := PercentageForYear(p.class, year, int(p.pisDate.Month()))
	if err != nil {
		return decimal.Zero, err
	}
	return p.amount.Mul(percentFraction(pct)), nil
}

// accumulatedThrough returns the pool's accumulated depreciation through a
// calendar year inclusive.
func (p capExPool) accumulatedThrough(calendarYear int) (decimal.Decimal, error) {
	years := p.depreciationYear(calendarYear)
	if years < 1 {
		return decimal.Zero, nil
	}

	if p.class.ShortLife() {
		if p.bonusRate == 100 {
			return p.amount, nil
		}
		pct, err := AccumulatedThrough(p.class, years, 0)
		if err != nil {
			return decimal.Zero, err
		}
		regular := p.regularPortion()
		bonus := p.amount.Sub(regular)
		return bonus.Add(regular.Mul(percentFraction(pct))), nil
	}

	pct, err := AccumulatedThrough(p.class, years, int(p.pisDate.Month()))
	if err != nil {
		return decimal.Zero, err
	}
	return p.amount.Mul(percentFraction(pct)), nil
}

// regularPortion is the slice of the pool left to regular MACRS recovery
// after the bonus portion is expensed.
func (p capExPool) regularPortion() decimal.Decimal {
	return p.amount.Mul(percentFraction(100 - p.bonusRate))
}

// percentFraction converts a 0-100 percentage into a decimal fraction.
func percentFraction(pct float64) decimal.Decimal {
	return decimal.NewFromFloat(pct).Div(decimal.NewFromInt(100))
}
