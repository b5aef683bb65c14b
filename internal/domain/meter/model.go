package meter

import (
	"context"

	ierr "github.com/vidinfra/metering/internal/errors"
	"github.com/vidinfra/metering/internal/types"
)

// Meter is a billable metric: a named rule for reducing raw usage events to
// one usage number per billing period.
type Meter struct {
	// ID is the unique identifier for the meter
	ID string `json:"id"`

	// EventName is the unique code of the event that this meter is tracking.
	// We can have multiple meters tracking the same event but with different
	// filters and aggregation.
	EventName string `json:"event_name"`

	// Name is the display name of the meter
	Name string `json:"name"`

	// Aggregation defines how matched events reduce to a single value
	Aggregation Aggregation `json:"aggregation"`

	// Rounding is applied to the aggregated value before pricing.
	// Nil means the value is used as-is.
	Rounding *Rounding `json:"rounding,omitempty"`

	// Filters define the property keys and allowed values on which charges
	// can later price event subsets differently
	Filters []Filter `json:"filters"`

	types.BaseModel
}

type Aggregation struct {
	// Type is the type of aggregation to be applied on the events
	Type types.AggregationType `json:"type"`

	// Field is the key in $event.properties on which the aggregation is
	// applied. Required for every type except COUNT and CUSTOM.
	Field string `json:"field,omitempty"`

	// Expression is the arithmetic formula evaluated per event for CUSTOM
	// aggregation ex "cpu*hours+memory*0.5"
	Expression string `json:"expression,omitempty"`
}

type Rounding struct {
	// Function is one of round, ceil, floor
	Function types.RoundingFunction `json:"function"`

	// Precision is the number of decimal places to keep, default 0
	Precision *int32 `json:"precision,omitempty"`
}

type Filter struct {
	// Key is the key for the filter from $event.properties.
	// Only first level keys are supported, not nested keys.
	Key string `json:"key"`

	// Values are the allowed values for the filter
	// ex "model_name" could have values "o1-mini", "gpt-4o"
	Values []string `json:"values"`
}

// HasFilterKey reports whether the meter still defines the given filter key
func (m *Meter) HasFilterKey(key string) bool {
	for _, f := range m.Filters {
		if f.Key == key {
			return true
		}
	}
	return false
}

// DisplayName resolves the human facing name of the meter falling back to
// the tracked event code
func (m *Meter) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.EventName
}

// Validate validates the meter configuration
func (m *Meter) Validate() error {
	if m.ID == "" {
		return configError("id is required")
	}
	if m.EventName == "" {
		return configError("event_name is required")
	}
	if !m.Aggregation.Type.Validate() {
		return configErrorf("invalid aggregation type: %s", m.Aggregation.Type)
	}
	if m.Aggregation.Type.RequiresField() && m.Aggregation.Field == "" {
		return configErrorf("field is required for aggregation type: %s", m.Aggregation.Type)
	}
	if m.Aggregation.Type.RequiresExpression() && m.Aggregation.Expression == "" {
		return configErrorf("expression is required for aggregation type: %s", m.Aggregation.Type)
	}
	if m.Rounding != nil {
		if !m.Rounding.Function.Validate() {
			return configErrorf("unknown rounding function: %s", m.Rounding.Function)
		}
		if m.Rounding.Precision != nil && *m.Rounding.Precision < 0 {
			return configError("rounding precision must not be negative")
		}
	}
	for _, filter := range m.Filters {
		if filter.Key == "" {
			return configError("filter key cannot be empty")
		}
		if len(filter.Values) == 0 {
			return configErrorf("filter values cannot be empty for key: %s", filter.Key)
		}
	}
	return nil
}

// NewMeter is a constructor for creating new meters with defaults
func NewMeter(ctx context.Context, name string) *Meter {
	return &Meter{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_METER),
		Name:      name,
		BaseModel: types.GetDefaultBaseModel(ctx),
		Filters:   []Filter{},
	}
}

func configError(msg string) error {
	return ierr.NewError(msg).
		WithHint("Meter configuration is invalid").
		Mark(ierr.ErrConfiguration)
}

func configErrorf(format string, args ...any) error {
	return ierr.NewErrorf(format, args...).
		WithHint("Meter configuration is invalid").
		Mark(ierr.ErrConfiguration)
}
