package events

import (
	"context"
	"time"
)

// Repository is the event-store collaborator. The engine trusts the
// returned events are already scoped to the requested window and filters.
type Repository interface {
	InsertEvent(ctx context.Context, event *Event) error
	BulkInsertEvents(ctx context.Context, events []*Event) error
	GetEvents(ctx context.Context, params *GetEventsParams) ([]*Event, error)
}

// GetEventsParams selects the raw events for one customer, one metric and
// one billing window [StartTime, EndTime).
type GetEventsParams struct {
	ExternalCustomerID string              `json:"external_customer_id" validate:"required"`
	EventName          string              `json:"event_name" validate:"required"`
	StartTime          time.Time           `json:"start_time" validate:"required"`
	EndTime            time.Time           `json:"end_time" validate:"required"`
	PropertyFilters    map[string][]string `json:"property_filters,omitempty"`
}
