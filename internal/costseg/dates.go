package costseg

import (
	"time"

	"github.com/pkg/errors"
)

// dateLayouts are the only accepted textual date formats. Anything else is
// rejected at the boundary instead of being guessed at inside the engine.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	time.RFC3339,
}

// ParseDate normalizes a textual date to midnight UTC. It is the single
// parsing boundary for all caller-supplied dates.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t), nil
		}
	}
	return time.Time{}, errors.Wrapf(ErrInvalidInput, "unrecognized date %q (want YYYY-MM-DD or MM/DD/YYYY)", s)
}

// dateOnly strips any time-of-day component, keeping the calendar date.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
