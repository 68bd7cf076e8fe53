package costseg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBonusRateForDate(t *testing.T) {
	cases := []struct {
		date string
		want float64
	}{
		{"2017-09-26", 0},
		{"2017-09-27", 100},
		{"2020-06-15", 100},
		{"2022-12-31", 100},
		{"2023-01-01", 80},
		{"2023-12-31", 80},
		{"2024-01-01", 60},
		{"2024-12-31", 60},
		{"2025-01-01", 40},
		{"2025-01-19", 40},
		{"2025-01-20", 100},
		{"2030-07-04", 100},
		{"2010-01-01", 0},
	}
	for _, tc := range cases {
		d, err := time.Parse("2006-01-02", tc.date)
		assert.NoError(t, err)
		assert.Equal(t, tc.want, BonusRateForDate(d), "date %s", tc.date)
	}
}

func TestBonusRateIgnoresTimeOfDay(t *testing.T) {
	// 23:59 on the last day of a window still falls inside it.
	d := time.Date(2022, time.December, 31, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, 100.0, BonusRateForDate(d))

	d = time.Date(2025, time.January, 19, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, 40.0, BonusRateForDate(d))
}
