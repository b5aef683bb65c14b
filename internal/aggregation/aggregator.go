package aggregation

import (
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/vidinfra/metering/internal/domain/events"
	"github.com/vidinfra/metering/internal/domain/meter"
	ierr "github.com/vidinfra/metering/internal/errors"
	"github.com/vidinfra/metering/internal/expression"
	"github.com/vidinfra/metering/internal/types"
)

// Options scopes one aggregation run. The window bounds are required for
// WEIGHTED_SUM, which weights each event's value by how long it held
// within [StartTime, EndTime). Filters are exact-match property filters;
// an event lacking a filtered property is excluded.
type Options struct {
	StartTime time.Time
	EndTime   time.Time
	Filters   map[string]string
}

// Aggregate reduces a sequence of events, already scoped to the target
// window, to a single usage value per the meter's aggregation type. The
// meter's rounding configuration is applied to the value before returning.
// EventsCount always reflects the number of matched events regardless of
// aggregation type.
func Aggregate(m *meter.Meter, evs []*events.Event, opts Options) (*events.AggregationResult, error) {
	matched := FilterEvents(evs, opts.Filters)

	result := &events.AggregationResult{
		Value:       decimal.Zero,
		EventsCount: len(matched),
		EventName:   m.EventName,
		Type:        m.Aggregation.Type,
	}

	if m.Aggregation.Type.RequiresField() && m.Aggregation.Field == "" {
		return nil, ierr.NewErrorf("aggregation requires field_name for %s", m.Aggregation.Type).
			WithHint("The meter's aggregation type needs a property field to aggregate on").
			Mark(ierr.ErrConfiguration)
	}

	var err error
	switch m.Aggregation.Type {
	case types.AggregationCount:
		result.Value = decimal.NewFromInt(int64(len(matched)))
	case types.AggregationSum:
		result.Value = sumField(matched, m.Aggregation.Field)
	case types.AggregationMax:
		result.Value = maxField(matched, m.Aggregation.Field)
	case types.AggregationLatest:
		result.Value = latestField(matched, m.Aggregation.Field)
	case types.AggregationUniqueCount:
		result.Value = uniqueCountField(matched, m.Aggregation.Field)
	case types.AggregationWeightedSum:
		result.Value = weightedSumField(matched, m.Aggregation.Field, opts.StartTime, opts.EndTime)
	case types.AggregationCustom:
		result.Value, err = sumExpression(matched, m.Aggregation.Expression)
		if err != nil {
			return nil, err
		}
	default:
		return nil, ierr.NewErrorf("unknown aggregation type: %s", m.Aggregation.Type).
			WithHint("The meter's aggregation type is not supported").
			Mark(ierr.ErrConfiguration)
	}

	if m.Rounding != nil {
		result.Value, err = ApplyRounding(result.Value, m.Rounding.Function, m.Rounding.Precision)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// FilterEvents narrows events by exact-match property filters. An event
// lacking a filtered property is excluded. Empty filters return the input
// slice unchanged.
func FilterEvents(evs []*events.Event, filters map[string]string) []*events.Event {
	if len(filters) == 0 {
		return evs
	}
	return lo.Filter(evs, func(e *events.Event, _ int) bool {
		for key, want := range filters {
			got, ok := e.StringProperty(key)
			if !ok || got != want {
				return false
			}
		}
		return true
	})
}

func sumField(evs []*events.Event, field string) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range evs {
		// missing or non-numeric values count as zero
		if v, ok := e.DecimalProperty(field); ok {
			sum = sum.Add(v)
		}
	}
	return sum
}

func maxField(evs []*events.Event, field string) decimal.Decimal {
	// zero only when no event carries the field, a present value wins even
	// when every value is negative
	max := decimal.Zero
	found := false
	for _, e := range evs {
		if v, ok := e.DecimalProperty(field); ok {
			if !found || v.GreaterThan(max) {
				max = v
			}
			found = true
		}
	}
	return max
}

func latestField(evs []*events.Event, field string) decimal.Decimal {
	if len(evs) == 0 {
		return decimal.Zero
	}
	last := sortByTimestamp(evs)[len(evs)-1]
	if v, ok := last.DecimalProperty(field); ok {
		return v
	}
	return decimal.Zero
}

func uniqueCountField(evs []*events.Event, field string) decimal.Decimal {
	values := make([]string, 0, len(evs))
	for _, e := range evs {
		if v, ok := e.StringProperty(field); ok {
			values = append(values, v)
		}
	}
	return decimal.NewFromInt(int64(len(lo.Uniq(values))))
}

// weightedSumField time-weights each event's value by how long it held:
// from its own timestamp until the next event's timestamp, the last event
// holding until the window end. A zero-duration window always yields 0.
func weightedSumField(evs []*events.Event, field string, start, end time.Time) decimal.Decimal {
	total := end.Sub(start)
	if total <= 0 {
		return decimal.Zero
	}

	sorted := sortByTimestamp(evs)
	totalNanos := decimal.NewFromInt(total.Nanoseconds())

	sum := decimal.Zero
	for i, e := range sorted {
		value := decimal.Zero
		if v, ok := e.DecimalProperty(field); ok {
			value = v
		}

		heldUntil := end
		if i < len(sorted)-1 {
			heldUntil = sorted[i+1].Timestamp
		}
		held := heldUntil.Sub(e.Timestamp)
		if held <= 0 {
			continue
		}

		weight := decimal.NewFromInt(held.Nanoseconds()).Div(totalNanos)
		sum = sum.Add(value.Mul(weight))
	}
	return sum
}

func sumExpression(evs []*events.Event, formula string) (decimal.Decimal, error) {
	if formula == "" {
		return decimal.Zero, ierr.NewError("aggregation requires an expression for CUSTOM").
			WithHint("The meter's CUSTOM aggregation needs a formula to evaluate per event").
			Mark(ierr.ErrConfiguration)
	}

	node, err := expression.Parse(formula)
	if err != nil {
		return decimal.Zero, err
	}

	sum := decimal.Zero
	for _, e := range evs {
		value, err := node.Eval(e.NumericProperties())
		if err != nil {
			return decimal.Zero, err
		}
		sum = sum.Add(value)
	}
	return sum, nil
}

// sortByTimestamp returns a copy sorted ascending by timestamp. The sort is
// stable so events sharing a timestamp keep their arrival order.
func sortByTimestamp(evs []*events.Event) []*events.Event {
	sorted := make([]*events.Event, len(evs))
	copy(sorted, evs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}
