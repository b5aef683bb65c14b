package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/vidinfra/metering/internal/domain/charge"
	"github.com/vidinfra/metering/internal/domain/meter"
	ierr "github.com/vidinfra/metering/internal/errors"
	"github.com/vidinfra/metering/internal/logger"
	"github.com/vidinfra/metering/internal/testutil"
	"github.com/vidinfra/metering/internal/types"
)

type MeterServiceSuite struct {
	suite.Suite
	ctx     context.Context
	repo    *testutil.InMemoryMeterStore
	service MeterService
}

func TestMeterService(t *testing.T) {
	suite.Run(t, new(MeterServiceSuite))
}

func (s *MeterServiceSuite) SetupTest() {
	s.ctx = testutil.SetupContext()
	s.repo = testutil.NewInMemoryMeterStore()
	s.service = NewMeterService(s.repo, logger.NewNopLogger())
}

func (s *MeterServiceSuite) newMeter() *meter.Meter {
	m := meter.NewMeter(s.ctx, "API Requests")
	m.EventName = "api_requests"
	m.Aggregation = meter.Aggregation{Type: types.AggregationCount}
	return m
}

func (s *MeterServiceSuite) TestCreateAndGetMeter() {
	m := s.newMeter()

	created, err := s.service.CreateMeter(s.ctx, m)
	s.NoError(err)
	s.Equal(types.DefaultTenantID, created.TenantID)
	s.Equal(types.StatusPublished, created.Status)

	got, err := s.service.GetMeter(s.ctx, m.ID)
	s.NoError(err)
	s.Equal("API Requests", got.Name)

	all, err := s.service.GetAllMeters(s.ctx)
	s.NoError(err)
	s.Len(all, 1)
}

func (s *MeterServiceSuite) TestCreateMeterValidates() {
	_, err := s.service.CreateMeter(s.ctx, nil)
	s.Error(err)
	s.True(ierr.IsValidation(err))

	invalid := s.newMeter()
	invalid.EventName = ""
	_, err = s.service.CreateMeter(s.ctx, invalid)
	s.Error(err)
	s.True(ierr.IsConfiguration(err))
}

func (s *MeterServiceSuite) TestGetMeterRequiresID() {
	_, err := s.service.GetMeter(s.ctx, "")
	s.Error(err)
	s.True(ierr.IsValidation(err))

	_, err = s.service.GetMeter(s.ctx, "meter-gone")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

// Deleting a meter must not break charges that still reference it: the
// charge computation skips them instead of failing.
func (s *MeterServiceSuite) TestDeleteMeterSkipsDependentCharges() {
	m := s.newMeter()
	_, err := s.service.CreateMeter(s.ctx, m)
	s.NoError(err)

	s.NoError(s.service.DeleteMeter(s.ctx, m.ID))

	got, err := s.service.GetMeter(s.ctx, m.ID)
	s.NoError(err)
	s.Equal(types.StatusDeleted, got.Status)

	charges := NewChargeService(
		testutil.NewInMemoryEventStore(), s.repo, testutil.NewInMemoryChargeStore(), logger.NewNopLogger(),
	)
	c := charge.NewCharge(s.ctx, m.ID, types.CHARGE_MODEL_STANDARD)
	c.Properties["amount"] = "1"

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	fees, err := charges.CalculateFees(s.ctx, c, &BillingWindowParams{
		ExternalCustomerID: "cust-1",
		StartTime:          start,
		EndTime:            start.AddDate(0, 1, 0),
	})
	s.NoError(err)
	s.Empty(fees)
}
