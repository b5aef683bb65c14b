package types

// RoundingFunction is applied to the aggregated usage value after
// aggregation and before pricing
type RoundingFunction string

const (
	// ROUNDING_FUNCTION_ROUND rounds half-up to the configured precision
	// ex 1.5 -> 2, 1.4 -> 1
	ROUNDING_FUNCTION_ROUND RoundingFunction = "round"

	// ROUNDING_FUNCTION_CEIL rounds up to the configured precision
	// ex 1.01 -> 2
	ROUNDING_FUNCTION_CEIL RoundingFunction = "ceil"

	// ROUNDING_FUNCTION_FLOOR rounds down to the configured precision
	// ex 1.99 -> 1
	ROUNDING_FUNCTION_FLOOR RoundingFunction = "floor"

	// DEFAULT_ROUNDING_PRECISION is used when a rounding function is
	// configured without a precision
	DEFAULT_ROUNDING_PRECISION int32 = 0
)

func (f RoundingFunction) Validate() bool {
	switch f {
	case ROUNDING_FUNCTION_ROUND, ROUNDING_FUNCTION_CEIL, ROUNDING_FUNCTION_FLOOR:
		return true
	default:
		return false
	}
}
