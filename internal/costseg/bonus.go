package costseg

import "time"

// bonusPeriod is one statutory bonus-depreciation window. A nil end means
// the window is open-ended.
type bonusPeriod struct {
	start time.Time
	end   *time.Time
	rate  float64
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func dayPtr(year int, month time.Month, d int) *time.Time {
	t := day(year, month, d)
	return &t
}

// bonusSchedule holds the statutory bonus percentages keyed by acquisition
// date. Evaluated in order; the open-ended range comes first.
var bonusSchedule = []bonusPeriod{
	{start: day(2025, time.January, 20), end: nil, rate: 100},
	{start: day(2025, time.January, 1), end: dayPtr(2025, time.January, 19), rate: 40},
	{start: day(2024, time.January, 1), end: dayPtr(2024, time.December, 31), rate: 60},
	{start: day(2023, time.January, 1), end: dayPtr(2023, time.December, 31), rate: 80},
	{start: day(2017, time.September, 27), end: dayPtr(2022, time.December, 31), rate: 100},
}

// BonusRateForDate returns the statutory bonus depreciation percentage
// (0-100) for property acquired or placed in service on the given date.
// Dates before the earliest defined window carry no bonus; that is a valid
// outcome, not an error.
func BonusRateForDate(d time.Time) float64 {
	d = dateOnly(d)
	for _, p := range bonusSchedule {
		if p.end == nil {
			if !d.Before(p.start) {
				return p.rate
			}
			continue
		}
		if !d.Before(p.start) && !d.After(*p.end) {
			return p.rate
		}
	}
	return 0
}
