package charge

import (
	"context"

	ierr "github.com/vidinfra/metering/internal/errors"
	"github.com/vidinfra/metering/internal/types"
)

// Charge is a pricing rule attached to a billable metric. Its Properties
// hold the model-specific pricing configuration ex unit amounts, tiers,
// package sizes.
type Charge struct {
	// ID is the unique identifier for the charge
	ID string `json:"id"`

	// MeterID is the id of the billable metric this charge prices
	MeterID string `json:"meter_id"`

	// ChargeModel selects the calculator applied to the aggregated usage
	ChargeModel types.ChargeModel `json:"charge_model"`

	// Currency 3 digit ISO currency code in lowercase ex usd, eur, gbp.
	// Carried through to fees as-is, amounts are never rounded by currency
	// inside the engine.
	Currency string `json:"currency"`

	// InvoiceDisplayName overrides the meter name on emitted fees
	InvoiceDisplayName string `json:"invoice_display_name,omitempty"`

	// Properties are the base pricing properties for the charge model
	Properties map[string]interface{} `json:"properties"`

	// Filters are per-property-value overrides that price matching event
	// subsets with alternate properties
	Filters []ChargeFilter `json:"filters,omitempty"`

	types.BaseModel
}

// ChargeFilter is one override: events matching all of its conditions are
// priced with the override properties merged over the charge's base
// properties.
type ChargeFilter struct {
	// Conditions map a meter filter key to the required property value.
	// An event must match every condition to be selected.
	Conditions map[string]string `json:"conditions"`

	// Properties override the charge's base properties key-by-key.
	// Keys not present here still come from the base charge.
	Properties map[string]interface{} `json:"properties,omitempty"`

	// DisplayName is the optional invoice label for this override
	DisplayName string `json:"display_name,omitempty"`
}

// MergedProperties merges the override's properties over the given base
// properties. The override wins key-by-key; unspecified keys fall back to
// the base. Neither input map is mutated.
func (f *ChargeFilter) MergedProperties(base map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(f.Properties))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range f.Properties {
		merged[k] = v
	}
	return merged
}

// Validate validates the charge configuration
func (c *Charge) Validate() error {
	if c.ID == "" {
		return ierr.NewError("id is required").
			WithHint("Charge configuration is invalid").
			Mark(ierr.ErrConfiguration)
	}
	if !c.ChargeModel.Validate() {
		return ierr.NewErrorf("invalid charge model: %s", c.ChargeModel).
			WithHint("Charge configuration is invalid").
			Mark(ierr.ErrConfiguration)
	}
	return nil
}

// HasFilters reports whether the charge carries any per-filter overrides
func (c *Charge) HasFilters() bool {
	return len(c.Filters) > 0
}

// NewCharge is a constructor for creating new charges with defaults
func NewCharge(ctx context.Context, meterID string, model types.ChargeModel) *Charge {
	return &Charge{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CHARGE),
		MeterID:     meterID,
		ChargeModel: model,
		Properties:  map[string]interface{}{},
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
}
