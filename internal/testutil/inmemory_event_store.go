package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/vidinfra/metering/internal/domain/events"
	ierr "github.com/vidinfra/metering/internal/errors"
)

// InMemoryEventStore is a reference implementation of events.Repository.
// Insertion order is preserved so timestamp ties keep arrival order, the
// same guarantee the engine assumes from the real store.
type InMemoryEventStore struct {
	mu     sync.RWMutex
	events []*events.Event
	byID   map[string]*events.Event
}

func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{
		byID: make(map[string]*events.Event),
	}
}

func (s *InMemoryEventStore) InsertEvent(ctx context.Context, event *events.Event) error {
	if event == nil {
		return ierr.NewError("event cannot be nil").
			WithHint("Event cannot be nil").
			Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// the event id is the idempotency key, replays are dropped
	if _, exists := s.byID[event.ID]; exists {
		return nil
	}
	s.byID[event.ID] = event
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryEventStore) BulkInsertEvents(ctx context.Context, evs []*events.Event) error {
	for _, event := range evs {
		if err := s.InsertEvent(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

func (s *InMemoryEventStore) GetEvents(ctx context.Context, params *events.GetEventsParams) ([]*events.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*events.Event
	for _, event := range s.events {
		if params.ExternalCustomerID != "" && event.ExternalCustomerID != params.ExternalCustomerID {
			continue
		}
		if params.EventName != "" && event.EventName != params.EventName {
			continue
		}
		if !params.StartTime.IsZero() && event.Timestamp.Before(params.StartTime) {
			continue
		}
		if !params.EndTime.IsZero() && !event.Timestamp.Before(params.EndTime) {
			continue
		}
		if !matchesPropertyFilters(event, params.PropertyFilters) {
			continue
		}
		matched = append(matched, event)
	}

	// ascending by timestamp, stable so arrival order breaks ties
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.Before(matched[j].Timestamp)
	})

	return matched, nil
}

func matchesPropertyFilters(event *events.Event, filters map[string][]string) bool {
	for property, values := range filters {
		if len(values) == 0 {
			continue
		}

		propValue, ok := event.StringProperty(property)
		if !ok {
			return false
		}

		valueMatched := false
		for _, value := range values {
			if propValue == value {
				valueMatched = true
				break
			}
		}
		if !valueMatched {
			return false
		}
	}
	return true
}
