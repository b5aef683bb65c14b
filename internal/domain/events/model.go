package events

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vidinfra/metering/internal/types"
	"github.com/vidinfra/metering/internal/validator"
)

// Event represents a single raw usage event
type Event struct {
	// ID is the transaction id of the event and acts as the idempotency key
	// for ingestion. Events are immutable once recorded.
	ID string `json:"id" validate:"required"`

	// TenantID identifies the owning tenant
	TenantID string `json:"tenant_id"`

	// ExternalCustomerID is the identifier of the customer in the external
	// system ex Customer DB or Stripe
	ExternalCustomerID string `json:"external_customer_id" validate:"required"`

	// EventName is the billable metric code the event reports usage for and
	// is the primary matching field between events and meters
	EventName string `json:"event_name" validate:"required"`

	// Properties are free-form scalar values used for filtering and
	// aggregation ex {"duration_ms": 1200, "region": "eu"}
	Properties map[string]interface{} `json:"properties"`

	// Source of the event
	Source string `json:"source"`

	// Timestamp is when the usage occurred, always stored in UTC
	Timestamp time.Time `json:"timestamp" validate:"required"`
}

// NewEvent creates a new event with defaults
func NewEvent(
	eventName, tenantID, externalCustomerID string,
	properties map[string]interface{},
	timestamp time.Time,
	eventID, source string,
) *Event {
	if eventID == "" {
		eventID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_EVENT)
	}

	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	} else {
		timestamp = timestamp.UTC()
	}

	return &Event{
		ID:                 eventID,
		TenantID:           tenantID,
		ExternalCustomerID: externalCustomerID,
		EventName:          eventName,
		Properties:         properties,
		Source:             source,
		Timestamp:          timestamp,
	}
}

// Validate validates the event
func (e *Event) Validate() error {
	return validator.ValidateRequest(e)
}

// DecimalProperty reads a property as a decimal. Returns false when the
// property is absent or not numeric.
func (e *Event) DecimalProperty(name string) (decimal.Decimal, bool) {
	if e.Properties == nil {
		return decimal.Zero, false
	}
	return types.DecimalFromAny(e.Properties[name])
}

// StringProperty reads a property formatted as a string for exact-match
// filtering. Returns false when the property is absent.
func (e *Event) StringProperty(name string) (string, bool) {
	v, ok := e.Properties[name]
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%v", v), true
}

// NumericProperties binds every numeric-coercible property into a decimal
// variable map for formula evaluation. Non-numeric properties are left out
// so referencing them by name fails loudly at evaluation time.
func (e *Event) NumericProperties() map[string]decimal.Decimal {
	vars := make(map[string]decimal.Decimal, len(e.Properties))
	for name, raw := range e.Properties {
		if d, ok := types.DecimalFromAny(raw); ok {
			vars[name] = d
		}
	}
	return vars
}

// AggregationResult is the outcome of reducing a set of matched events to a
// single usage value. EventsCount always reflects the number of events
// matched before the aggregation-specific reduction.
type AggregationResult struct {
	Value       decimal.Decimal       `json:"value"`
	EventsCount int                   `json:"events_count"`
	EventName   string                `json:"event_name"`
	Type        types.AggregationType `json:"type"`
}
