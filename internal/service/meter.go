package service

import (
	"context"

	"github.com/vidinfra/metering/internal/domain/meter"
	ierr "github.com/vidinfra/metering/internal/errors"
	"github.com/vidinfra/metering/internal/logger"
)

type MeterService interface {
	CreateMeter(ctx context.Context, m *meter.Meter) (*meter.Meter, error)
	GetMeter(ctx context.Context, id string) (*meter.Meter, error)
	GetAllMeters(ctx context.Context) ([]*meter.Meter, error)
	DeleteMeter(ctx context.Context, id string) error
}

type meterService struct {
	repo   meter.Repository
	logger *logger.Logger
}

func NewMeterService(repo meter.Repository, logger *logger.Logger) MeterService {
	return &meterService{repo: repo, logger: logger}
}

func (s *meterService) CreateMeter(ctx context.Context, m *meter.Meter) (*meter.Meter, error) {
	if m == nil {
		return nil, ierr.NewError("meter cannot be nil").
			WithHint("A meter definition is required").
			Mark(ierr.ErrValidation)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.CreateMeter(ctx, m); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create meter").
			Mark(ierr.ErrSystem)
	}
	return m, nil
}

func (s *meterService) GetMeter(ctx context.Context, id string) (*meter.Meter, error) {
	if id == "" {
		return nil, ierr.NewError("meter id is required").
			WithHint("A meter id is required").
			Mark(ierr.ErrValidation)
	}
	return s.repo.GetMeter(ctx, id)
}

func (s *meterService) GetAllMeters(ctx context.Context) ([]*meter.Meter, error) {
	return s.repo.GetAllMeters(ctx)
}

func (s *meterService) DeleteMeter(ctx context.Context, id string) error {
	if id == "" {
		return ierr.NewError("meter id is required").
			WithHint("A meter id is required").
			Mark(ierr.ErrValidation)
	}
	return s.repo.DeleteMeter(ctx, id)
}
