package aggregation

import (
	"github.com/shopspring/decimal"

	ierr "github.com/vidinfra/metering/internal/errors"
	"github.com/vidinfra/metering/internal/types"
)

// ApplyRounding rounds an aggregated usage value per the meter's rounding
// configuration. An empty function returns the value unchanged. "round" is
// half-up, "ceil" and "floor" round towards +inf and -inf at the given
// precision (default 0). The operation is idempotent. Negative precisions
// are rejected.
func ApplyRounding(value decimal.Decimal, fn types.RoundingFunction, precision *int32) (decimal.Decimal, error) {
	if fn == "" {
		return value, nil
	}

	p := types.DEFAULT_ROUNDING_PRECISION
	if precision != nil {
		p = *precision
	}
	if p < 0 {
		return decimal.Zero, ierr.NewErrorf("invalid rounding precision: %d", p).
			WithHint("Rounding precision must be zero or positive").
			Mark(ierr.ErrConfiguration)
	}

	switch fn {
	case types.ROUNDING_FUNCTION_ROUND:
		return roundHalfUp(value, p), nil
	case types.ROUNDING_FUNCTION_CEIL:
		return value.RoundCeil(p), nil
	case types.ROUNDING_FUNCTION_FLOOR:
		return value.RoundFloor(p), nil
	default:
		return decimal.Zero, ierr.NewErrorf("unknown rounding function: %s", fn).
			WithHint("Supported rounding functions are round, ceil and floor").
			Mark(ierr.ErrConfiguration)
	}
}

var oneHalf = decimal.New(5, -1)

// roundHalfUp rounds halves towards positive infinity, so -1.5 becomes -1.
// decimal.Round rounds halves away from zero, which only differs for
// negative values.
func roundHalfUp(value decimal.Decimal, precision int32) decimal.Decimal {
	if value.Sign() >= 0 {
		return value.Round(precision)
	}
	return value.Shift(precision).Add(oneHalf).Floor().Shift(-precision)
}
