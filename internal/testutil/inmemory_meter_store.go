package testutil

import (
	"context"
	"sync"

	"github.com/vidinfra/metering/internal/domain/meter"
	ierr "github.com/vidinfra/metering/internal/errors"
	"github.com/vidinfra/metering/internal/types"
)

type InMemoryMeterStore struct {
	mu     sync.RWMutex
	meters map[string]*meter.Meter
}

func NewInMemoryMeterStore() *InMemoryMeterStore {
	return &InMemoryMeterStore{
		meters: make(map[string]*meter.Meter),
	}
}

func (s *InMemoryMeterStore) CreateMeter(ctx context.Context, m *meter.Meter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == "" {
		return ierr.NewError("meter ID cannot be empty").
			WithHint("Meter ID cannot be empty").
			Mark(ierr.ErrValidation)
	}

	s.meters[m.ID] = m
	return nil
}

func (s *InMemoryMeterStore) GetMeter(ctx context.Context, id string) (*meter.Meter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, exists := s.meters[id]
	if !exists {
		return nil, ierr.NewErrorf("meter %s not found", id).
			WithHint("Meter not found").
			Mark(ierr.ErrNotFound)
	}
	return m, nil
}

func (s *InMemoryMeterStore) GetAllMeters(ctx context.Context) ([]*meter.Meter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meters := make([]*meter.Meter, 0, len(s.meters))
	for _, m := range s.meters {
		meters = append(meters, m)
	}
	return meters, nil
}

func (s *InMemoryMeterStore) DeleteMeter(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, exists := s.meters[id]
	if !exists {
		return ierr.NewErrorf("meter %s not found", id).
			WithHint("Meter not found").
			Mark(ierr.ErrNotFound)
	}

	m.Status = types.StatusDeleted
	return nil
}
