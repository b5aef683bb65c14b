package types

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// DecimalFromAny coerces a scalar event property into a decimal.
// Event properties arrive as loosely typed JSON values so numbers may be
// float64, json.Number or numeric strings depending on the decoder.
// Returns false for absent, non-scalar or non-numeric values.
func DecimalFromAny(v interface{}) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case decimal.Decimal:
		return val, true
	case float64:
		return decimal.NewFromFloat(val), true
	case float32:
		return decimal.NewFromFloat32(val), true
	case int:
		return decimal.NewFromInt(int64(val)), true
	case int32:
		return decimal.NewFromInt(int64(val)), true
	case int64:
		return decimal.NewFromInt(val), true
	case uint64:
		return decimal.NewFromUint64(val), true
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case string:
		d, err := decimal.NewFromString(val)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}
