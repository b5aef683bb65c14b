package aggregation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidinfra/metering/internal/domain/events"
	"github.com/vidinfra/metering/internal/domain/meter"
	ierr "github.com/vidinfra/metering/internal/errors"
	"github.com/vidinfra/metering/internal/types"
)

var windowStart = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func testMeter(aggType types.AggregationType, field string) *meter.Meter {
	return &meter.Meter{
		ID:        "meter-1",
		EventName: "api_requests",
		Name:      "API Requests",
		Aggregation: meter.Aggregation{
			Type:  aggType,
			Field: field,
		},
	}
}

func testEvent(offset time.Duration, properties map[string]interface{}) *events.Event {
	return events.NewEvent(
		"api_requests", types.DefaultTenantID, "cust-1",
		properties, windowStart.Add(offset), "", "test",
	)
}

func windowOptions(length time.Duration) Options {
	return Options{StartTime: windowStart, EndTime: windowStart.Add(length)}
}

func TestAggregateCount(t *testing.T) {
	evs := []*events.Event{
		testEvent(0, nil),
		testEvent(time.Minute, nil),
		testEvent(2*time.Minute, nil),
	}

	result, err := Aggregate(testMeter(types.AggregationCount, ""), evs, windowOptions(time.Hour))
	require.NoError(t, err)
	assert.True(t, result.Value.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, 3, result.EventsCount)

	empty, err := Aggregate(testMeter(types.AggregationCount, ""), nil, windowOptions(time.Hour))
	require.NoError(t, err)
	assert.True(t, empty.Value.IsZero())
	assert.Equal(t, 0, empty.EventsCount)
}

func TestAggregateSum(t *testing.T) {
	evs := []*events.Event{
		testEvent(0, map[string]interface{}{"duration_ms": 100.0}),
		testEvent(time.Minute, map[string]interface{}{"duration_ms": "250"}),
		testEvent(2*time.Minute, map[string]interface{}{"duration_ms": "not-a-number"}),
		testEvent(3*time.Minute, nil),
	}

	result, err := Aggregate(testMeter(types.AggregationSum, "duration_ms"), evs, windowOptions(time.Hour))
	require.NoError(t, err)
	// missing and non-numeric values count as zero
	assert.True(t, result.Value.Equal(decimal.NewFromInt(350)), "got %s", result.Value)
	assert.Equal(t, 4, result.EventsCount)
}

func TestAggregateMax(t *testing.T) {
	evs := []*events.Event{
		testEvent(0, map[string]interface{}{"size": 10}),
		testEvent(time.Minute, map[string]interface{}{"size": 42}),
		testEvent(2*time.Minute, map[string]interface{}{"size": 7}),
	}

	result, err := Aggregate(testMeter(types.AggregationMax, "size"), evs, windowOptions(time.Hour))
	require.NoError(t, err)
	assert.True(t, result.Value.Equal(decimal.NewFromInt(42)))

	empty, err := Aggregate(testMeter(types.AggregationMax, "size"), nil, windowOptions(time.Hour))
	require.NoError(t, err)
	assert.True(t, empty.Value.IsZero())
}

func TestAggregateMaxNegativeValues(t *testing.T) {
	evs := []*events.Event{
		testEvent(0, map[string]interface{}{"delta": -5}),
		testEvent(time.Minute, map[string]interface{}{"delta": -2}),
	}

	result, err := Aggregate(testMeter(types.AggregationMax, "delta"), evs, windowOptions(time.Hour))
	require.NoError(t, err)
	assert.True(t, result.Value.Equal(decimal.NewFromInt(-2)))

	// zero stays reserved for the absent-field case
	absent, err := Aggregate(testMeter(types.AggregationMax, "delta"), []*events.Event{
		testEvent(0, map[string]interface{}{"other": 1}),
	}, windowOptions(time.Hour))
	require.NoError(t, err)
	assert.True(t, absent.Value.IsZero())
}

func TestAggregateLatest(t *testing.T) {
	evs := []*events.Event{
		testEvent(2*time.Minute, map[string]interface{}{"storage_gb": 30}),
		testEvent(0, map[string]interface{}{"storage_gb": 10}),
		testEvent(time.Minute, map[string]interface{}{"storage_gb": 20}),
	}

	result, err := Aggregate(testMeter(types.AggregationLatest, "storage_gb"), evs, windowOptions(time.Hour))
	require.NoError(t, err)
	assert.True(t, result.Value.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, 3, result.EventsCount)
}

func TestAggregateLatestRequiresField(t *testing.T) {
	_, err := Aggregate(testMeter(types.AggregationLatest, ""), nil, windowOptions(time.Hour))
	require.Error(t, err)
	assert.True(t, ierr.IsConfiguration(err))
	assert.Contains(t, err.Error(), "requires field_name for LATEST")
}

func TestAggregateUniqueCount(t *testing.T) {
	evs := []*events.Event{
		testEvent(0, map[string]interface{}{"model": "gpt-4o"}),
		testEvent(time.Minute, map[string]interface{}{"model": "o1-mini"}),
		testEvent(2*time.Minute, map[string]interface{}{"model": "gpt-4o"}),
		testEvent(3*time.Minute, nil),
	}

	result, err := Aggregate(testMeter(types.AggregationUniqueCount, "model"), evs, windowOptions(time.Hour))
	require.NoError(t, err)
	assert.True(t, result.Value.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, 4, result.EventsCount)
}

func TestAggregateWeightedSum(t *testing.T) {
	evs := []*events.Event{
		testEvent(0, map[string]interface{}{"replicas": 50}),
		testEvent(12*time.Hour, map[string]interface{}{"replicas": 100}),
	}

	result, err := Aggregate(testMeter(types.AggregationWeightedSum, "replicas"), evs, windowOptions(24*time.Hour))
	require.NoError(t, err)
	// 50 held for half the window, 100 for the other half
	assert.True(t, result.Value.Equal(decimal.NewFromInt(75)), "got %s", result.Value)
	assert.Equal(t, 2, result.EventsCount)
}

func TestAggregateWeightedSumZeroWindow(t *testing.T) {
	evs := []*events.Event{
		testEvent(0, map[string]interface{}{"replicas": 50}),
	}

	result, err := Aggregate(testMeter(types.AggregationWeightedSum, "replicas"), evs, windowOptions(0))
	require.NoError(t, err)
	assert.True(t, result.Value.IsZero())
	assert.Equal(t, 1, result.EventsCount)
}

func TestAggregateWeightedSumRequiresField(t *testing.T) {
	_, err := Aggregate(testMeter(types.AggregationWeightedSum, ""), nil, windowOptions(time.Hour))
	require.Error(t, err)
	assert.True(t, ierr.IsConfiguration(err))
}

func TestAggregateCustom(t *testing.T) {
	m := testMeter(types.AggregationCustom, "")
	m.Aggregation.Expression = "cpu*hours+memory*0.5"

	evs := []*events.Event{
		testEvent(0, map[string]interface{}{"cpu": 4, "hours": 10, "memory": 16}),
	}

	result, err := Aggregate(m, evs, windowOptions(time.Hour))
	require.NoError(t, err)
	assert.True(t, result.Value.Equal(decimal.NewFromInt(48)), "got %s", result.Value)
}

func TestAggregateCustomSumsAcrossEvents(t *testing.T) {
	m := testMeter(types.AggregationCustom, "")
	m.Aggregation.Expression = "units * 2"

	evs := []*events.Event{
		testEvent(0, map[string]interface{}{"units": 3, "region": "eu"}),
		testEvent(time.Minute, map[string]interface{}{"units": 4}),
	}

	result, err := Aggregate(m, evs, windowOptions(time.Hour))
	require.NoError(t, err)
	assert.True(t, result.Value.Equal(decimal.NewFromInt(14)))
}

func TestAggregateCustomMissingExpression(t *testing.T) {
	m := testMeter(types.AggregationCustom, "")

	_, err := Aggregate(m, nil, windowOptions(time.Hour))
	require.Error(t, err)
	assert.True(t, ierr.IsConfiguration(err))
}

func TestAggregateCustomNonNumericReference(t *testing.T) {
	m := testMeter(types.AggregationCustom, "")
	m.Aggregation.Expression = "units * region"

	evs := []*events.Event{
		testEvent(0, map[string]interface{}{"units": 3, "region": "eu"}),
	}

	_, err := Aggregate(m, evs, windowOptions(time.Hour))
	require.Error(t, err)
	assert.True(t, ierr.IsExpressionSemantic(err))
}

func TestAggregateUnknownType(t *testing.T) {
	m := testMeter(types.AggregationType("AVG"), "duration_ms")

	_, err := Aggregate(m, nil, windowOptions(time.Hour))
	require.Error(t, err)
	assert.True(t, ierr.IsConfiguration(err))
}

func TestAggregatePropertyFilters(t *testing.T) {
	evs := []*events.Event{
		testEvent(0, map[string]interface{}{"region": "eu", "duration_ms": 10}),
		testEvent(time.Minute, map[string]interface{}{"region": "us", "duration_ms": 20}),
		testEvent(2*time.Minute, map[string]interface{}{"duration_ms": 30}),
	}

	opts := windowOptions(time.Hour)
	opts.Filters = map[string]string{"region": "eu"}

	result, err := Aggregate(testMeter(types.AggregationSum, "duration_ms"), evs, opts)
	require.NoError(t, err)
	// the us event mismatches and the filterless event is excluded
	assert.True(t, result.Value.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 1, result.EventsCount)
}

func TestAggregateAppliesMeterRounding(t *testing.T) {
	m := testMeter(types.AggregationSum, "duration_ms")
	m.Rounding = &meter.Rounding{Function: types.ROUNDING_FUNCTION_CEIL}

	evs := []*events.Event{
		testEvent(0, map[string]interface{}{"duration_ms": 1.2}),
	}

	result, err := Aggregate(m, evs, windowOptions(time.Hour))
	require.NoError(t, err)
	assert.True(t, result.Value.Equal(decimal.NewFromInt(2)), "got %s", result.Value)
}
