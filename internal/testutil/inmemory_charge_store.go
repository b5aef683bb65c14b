package testutil

import (
	"context"
	"sync"

	"github.com/vidinfra/metering/internal/domain/charge"
	ierr "github.com/vidinfra/metering/internal/errors"
)

type InMemoryChargeStore struct {
	mu      sync.RWMutex
	charges map[string]*charge.Charge
}

func NewInMemoryChargeStore() *InMemoryChargeStore {
	return &InMemoryChargeStore{
		charges: make(map[string]*charge.Charge),
	}
}

func (s *InMemoryChargeStore) CreateCharge(ctx context.Context, c *charge.Charge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		return ierr.NewError("charge ID cannot be empty").
			WithHint("Charge ID cannot be empty").
			Mark(ierr.ErrValidation)
	}

	s.charges[c.ID] = c
	return nil
}

func (s *InMemoryChargeStore) GetCharge(ctx context.Context, id string) (*charge.Charge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.charges[id]
	if !exists {
		return nil, ierr.NewErrorf("charge %s not found", id).
			WithHint("Charge not found").
			Mark(ierr.ErrNotFound)
	}
	return c, nil
}

func (s *InMemoryChargeStore) GetChargesForMeter(ctx context.Context, meterID string) ([]*charge.Charge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	charges := make([]*charge.Charge, 0)
	for _, c := range s.charges {
		if c.MeterID == meterID {
			charges = append(charges, c)
		}
	}
	return charges, nil
}

func (s *InMemoryChargeStore) DeleteCharge(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.charges[id]; !exists {
		return ierr.NewErrorf("charge %s not found", id).
			WithHint("Charge not found").
			Mark(ierr.ErrNotFound)
	}

	delete(s.charges, id)
	return nil
}
