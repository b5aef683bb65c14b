package service

import (
	"context"
	"time"

	"github.com/vidinfra/metering/internal/aggregation"
	"github.com/vidinfra/metering/internal/calculator"
	"github.com/vidinfra/metering/internal/domain/charge"
	"github.com/vidinfra/metering/internal/domain/events"
	"github.com/vidinfra/metering/internal/domain/fee"
	"github.com/vidinfra/metering/internal/domain/meter"
	ierr "github.com/vidinfra/metering/internal/errors"
	"github.com/vidinfra/metering/internal/logger"
	"github.com/vidinfra/metering/internal/types"
	"github.com/vidinfra/metering/internal/validator"
)

// BillingWindowParams scopes one charge computation to a customer and a
// billing period [StartTime, EndTime).
type BillingWindowParams struct {
	ExternalCustomerID string    `json:"external_customer_id" validate:"required"`
	StartTime          time.Time `json:"start_time" validate:"required"`
	EndTime            time.Time `json:"end_time" validate:"required"`
}

// UsageParams requests raw aggregated usage for one meter without pricing,
// for callers doing threshold checks or usage estimation.
type UsageParams struct {
	ExternalCustomerID string            `json:"external_customer_id" validate:"required"`
	MeterID            string            `json:"meter_id" validate:"required"`
	StartTime          time.Time         `json:"start_time" validate:"required"`
	EndTime            time.Time         `json:"end_time" validate:"required"`
	Filters            map[string]string `json:"filters,omitempty"`
}

type ChargeService interface {
	// CalculateFees turns one charge and its billing window into zero or
	// more priced line items. A charge whose meter no longer exists yields
	// no fees and no error.
	CalculateFees(ctx context.Context, c *charge.Charge, params *BillingWindowParams) ([]*fee.Fee, error)

	// CalculateFeesForMeter prices every stored charge attached to the
	// meter over the billing window
	CalculateFeesForMeter(ctx context.Context, meterID string, params *BillingWindowParams) ([]*fee.Fee, error)

	// GetUsage aggregates usage for one meter without pricing it
	GetUsage(ctx context.Context, params *UsageParams) (*events.AggregationResult, error)
}

type chargeService struct {
	eventRepo  events.Repository
	meterRepo  meter.Repository
	chargeRepo charge.Repository
	registry   *calculator.Registry
	logger     *logger.Logger
}

func NewChargeService(eventRepo events.Repository, meterRepo meter.Repository, chargeRepo charge.Repository, logger *logger.Logger) ChargeService {
	return &chargeService{
		eventRepo:  eventRepo,
		meterRepo:  meterRepo,
		chargeRepo: chargeRepo,
		registry:   calculator.NewRegistry(),
		logger:     logger,
	}
}

func (s *chargeService) CalculateFees(ctx context.Context, c *charge.Charge, params *BillingWindowParams) ([]*fee.Fee, error) {
	if err := validator.ValidateRequest(params); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	m, err := s.resolveMeter(ctx, c.MeterID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		// catalogue drift: the meter was deleted after the charge was
		// configured, skip the charge instead of failing the invoice
		s.logger.Debugf("skipping charge %s: meter %s no longer exists", c.ID, c.MeterID)
		return []*fee.Fee{}, nil
	}

	evs, err := s.eventRepo.GetEvents(ctx, &events.GetEventsParams{
		ExternalCustomerID: params.ExternalCustomerID,
		EventName:          m.EventName,
		StartTime:          params.StartTime,
		EndTime:            params.EndTime,
	})
	if err != nil {
		return nil, err
	}

	if c.HasFilters() {
		return s.resolveFilteredCharge(c, m, evs, params)
	}

	result, err := aggregation.Aggregate(m, evs, aggregation.Options{
		StartTime: params.StartTime,
		EndTime:   params.EndTime,
	})
	if err != nil {
		return nil, err
	}

	in := calculator.Input{
		Quantity:    result.Value,
		EventsCount: result.EventsCount,
		Properties:  c.Properties,
	}
	if c.ChargeModel.UsesRawEvents() {
		in.Events = evs
	}

	amount, err := s.registry.Calculate(c.ChargeModel, in)
	if err != nil {
		return nil, err
	}

	// a zero-amount fee with non-zero quantity, e.g. a free tier, is
	// still emitted
	if result.Value.IsZero() && amount.IsZero() {
		return []*fee.Fee{}, nil
	}

	description := c.InvoiceDisplayName
	if description == "" {
		description = m.DisplayName()
	}

	return []*fee.Fee{
		fee.New(description, m.EventName, c.ChargeModel, c.Currency, result.Value, result.EventsCount, amount),
	}, nil
}

// resolveFilteredCharge evaluates each filter override independently:
// select the events matching all of its conditions, merge its properties
// over the charge's base properties and price the subset. Overlapping
// overrides are not deduplicated.
func (s *chargeService) resolveFilteredCharge(c *charge.Charge, m *meter.Meter, evs []*events.Event, params *BillingWindowParams) ([]*fee.Fee, error) {
	fees := make([]*fee.Fee, 0, len(c.Filters))

	for _, f := range c.Filters {
		if len(f.Conditions) == 0 {
			continue
		}
		if !anyConditionKeyDefined(m, f.Conditions) {
			// every condition references a filter key that no longer
			// exists on the meter, treat as catalogue drift
			s.logger.Debugf("skipping filter override on charge %s: no condition key defined on meter %s", c.ID, m.ID)
			continue
		}

		selected := aggregation.FilterEvents(evs, f.Conditions)

		result, err := aggregation.Aggregate(m, selected, aggregation.Options{
			StartTime: params.StartTime,
			EndTime:   params.EndTime,
		})
		if err != nil {
			return nil, err
		}

		in := calculator.Input{
			Quantity:    result.Value,
			EventsCount: result.EventsCount,
			Properties:  f.MergedProperties(c.Properties),
		}
		if c.ChargeModel.UsesRawEvents() {
			in.Events = selected
		}

		amount, err := s.registry.Calculate(c.ChargeModel, in)
		if err != nil {
			return nil, err
		}

		if amount.IsZero() && result.EventsCount == 0 {
			continue
		}

		description := f.DisplayName
		if description == "" {
			description = m.DisplayName()
		}

		fees = append(fees, fee.New(description, m.EventName, c.ChargeModel, c.Currency, result.Value, result.EventsCount, amount))
	}

	return fees, nil
}

func (s *chargeService) CalculateFeesForMeter(ctx context.Context, meterID string, params *BillingWindowParams) ([]*fee.Fee, error) {
	charges, err := s.chargeRepo.GetChargesForMeter(ctx, meterID)
	if err != nil {
		return nil, err
	}

	fees := make([]*fee.Fee, 0, len(charges))
	for _, c := range charges {
		chargeFees, err := s.CalculateFees(ctx, c, params)
		if err != nil {
			return nil, err
		}
		fees = append(fees, chargeFees...)
	}
	return fees, nil
}

func (s *chargeService) GetUsage(ctx context.Context, params *UsageParams) (*events.AggregationResult, error) {
	if err := validator.ValidateRequest(params); err != nil {
		return nil, err
	}

	m, err := s.meterRepo.GetMeter(ctx, params.MeterID)
	if err != nil {
		return nil, err
	}
	if m.Status == types.StatusDeleted {
		return nil, ierr.NewErrorf("meter %s not found", params.MeterID).
			WithHint("Meter not found").
			Mark(ierr.ErrNotFound)
	}

	evs, err := s.eventRepo.GetEvents(ctx, &events.GetEventsParams{
		ExternalCustomerID: params.ExternalCustomerID,
		EventName:          m.EventName,
		StartTime:          params.StartTime,
		EndTime:            params.EndTime,
	})
	if err != nil {
		return nil, err
	}

	return aggregation.Aggregate(m, evs, aggregation.Options{
		StartTime: params.StartTime,
		EndTime:   params.EndTime,
		Filters:   params.Filters,
	})
}

// resolveMeter returns nil without error when the meter is gone, which the
// caller treats as a silent skip rather than a failure.
func (s *chargeService) resolveMeter(ctx context.Context, meterID string) (*meter.Meter, error) {
	if meterID == "" {
		return nil, nil
	}

	m, err := s.meterRepo.GetMeter(ctx, meterID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if m.Status == types.StatusDeleted {
		return nil, nil
	}
	return m, nil
}

func anyConditionKeyDefined(m *meter.Meter, conditions map[string]string) bool {
	for key := range conditions {
		if m.HasFilterKey(key) {
			return true
		}
	}
	return false
}
