package fee

import (
	"github.com/shopspring/decimal"

	"github.com/vidinfra/metering/internal/types"
)

// Fee is one priced line item produced by applying a charge's pricing model
// to its usage for a billing period. Fees are output values, never mutated
// after creation.
type Fee struct {
	// ID is the unique identifier for the fee
	ID string `json:"id"`

	// Description is the human facing label resolved from the override
	// display name, the meter name or the metric code, in that order
	Description string `json:"description"`

	// EventName is the billable metric code the fee was computed from
	EventName string `json:"event_name"`

	// ChargeModel is the pricing model that produced the amount
	ChargeModel types.ChargeModel `json:"charge_model"`

	// Currency is carried from the charge unmodified
	Currency string `json:"currency,omitempty"`

	// Units is the aggregated usage quantity the amount was computed from
	Units decimal.Decimal `json:"units"`

	// EventsCount is the number of events matched for this fee
	EventsCount int `json:"events_count"`

	// Amount is the priced amount at full precision. Formatting and
	// currency rounding are caller concerns.
	Amount decimal.Decimal `json:"amount"`
}

// New constructs a fee with a generated identifier
func New(description, eventName string, model types.ChargeModel, currency string, units decimal.Decimal, eventsCount int, amount decimal.Decimal) *Fee {
	return &Fee{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_FEE),
		Description: description,
		EventName:   eventName,
		ChargeModel: model,
		Currency:    currency,
		Units:       units,
		EventsCount: eventsCount,
		Amount:      amount,
	}
}
