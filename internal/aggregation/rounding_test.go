package aggregation

import (
	"testing"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierr "github.com/vidinfra/metering/internal/errors"
	"github.com/vidinfra/metering/internal/types"
)

func TestApplyRounding(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		fn        types.RoundingFunction
		precision *int32
		expected  string
	}{
		{"no function leaves value unchanged", "1.2345", "", nil, "1.2345"},
		{"round half-up at default precision", "1.5", types.ROUNDING_FUNCTION_ROUND, nil, "2"},
		{"round below half at default precision", "1.4", types.ROUNDING_FUNCTION_ROUND, nil, "1"},
		{"round at precision two", "1.005", types.ROUNDING_FUNCTION_ROUND, lo.ToPtr(int32(2)), "1.01"},
		{"ceil at default precision", "1.01", types.ROUNDING_FUNCTION_CEIL, nil, "2"},
		{"ceil at precision one", "1.41", types.ROUNDING_FUNCTION_CEIL, lo.ToPtr(int32(1)), "1.5"},
		{"floor at default precision", "1.99", types.ROUNDING_FUNCTION_FLOOR, nil, "1"},
		{"floor at precision one", "1.99", types.ROUNDING_FUNCTION_FLOOR, lo.ToPtr(int32(1)), "1.9"},
		{"integer value is untouched", "7", types.ROUNDING_FUNCTION_ROUND, nil, "7"},
		{"negative half rounds towards positive infinity", "-1.5", types.ROUNDING_FUNCTION_ROUND, nil, "-1"},
		{"negative above half rounds down", "-1.6", types.ROUNDING_FUNCTION_ROUND, nil, "-2"},
		{"negative half at precision one", "-2.25", types.ROUNDING_FUNCTION_ROUND, lo.ToPtr(int32(1)), "-2.2"},
		{"negative ceil at default precision", "-1.2", types.ROUNDING_FUNCTION_CEIL, nil, "-1"},
		{"negative floor at default precision", "-1.2", types.ROUNDING_FUNCTION_FLOOR, nil, "-2"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ApplyRounding(decimal.RequireFromString(tc.value), tc.fn, tc.precision)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.expected)), "got %s want %s", got, tc.expected)
		})
	}
}

func TestApplyRoundingIdempotent(t *testing.T) {
	fns := []types.RoundingFunction{
		types.ROUNDING_FUNCTION_ROUND,
		types.ROUNDING_FUNCTION_CEIL,
		types.ROUNDING_FUNCTION_FLOOR,
	}

	values := []decimal.Decimal{
		decimal.RequireFromString("123.456789"),
		decimal.RequireFromString("-123.456789"),
	}
	precision := lo.ToPtr(int32(2))

	for _, value := range values {
		for _, fn := range fns {
			once, err := ApplyRounding(value, fn, precision)
			require.NoError(t, err)
			twice, err := ApplyRounding(once, fn, precision)
			require.NoError(t, err)
			assert.True(t, once.Equal(twice), "%s(%s): %s != %s", fn, value, once, twice)
		}
	}
}

func TestApplyRoundingUnknownFunction(t *testing.T) {
	_, err := ApplyRounding(decimal.NewFromInt(1), types.RoundingFunction("truncate"), nil)
	require.Error(t, err)
	assert.True(t, ierr.IsConfiguration(err))
	assert.Contains(t, err.Error(), "unknown rounding function")
}

func TestApplyRoundingNegativePrecision(t *testing.T) {
	_, err := ApplyRounding(decimal.NewFromInt(1234), types.ROUNDING_FUNCTION_ROUND, lo.ToPtr(int32(-2)))
	require.Error(t, err)
	assert.True(t, ierr.IsConfiguration(err))
}
