package costseg

import "github.com/pkg/errors"

// Sentinel errors for the three failure families the engine distinguishes.
// Out-of-range years and pools not yet in service are not errors; they
// produce zero amounts.
var (
	// ErrInvalidInput marks malformed caller input rejected at construction.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMonthRequired marks a mid-month MACRS lookup performed without a
	// placed-in-service month. This is a caller bug, not a user error.
	ErrMonthRequired = errors.New("month required for mid-month convention class")

	// ErrUnknownAssetClass marks a MACRS lookup for a class that has no table.
	ErrUnknownAssetClass = errors.New("unknown asset class")

	// ErrReconciliation marks a lifetime-totals consistency check failure.
	// It indicates a calculation bug and must not be silently tolerated.
	ErrReconciliation = errors.New("depreciation reconciliation failed")
)

func invalidInputf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidInput, format, args...)
}
