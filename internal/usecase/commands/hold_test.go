//go:build unit

package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"tidebook/internal/domain/booking"
	"tidebook/internal/domain/slot"
	"tidebook/internal/infra/memstore"
	"tidebook/internal/pkg/clock"
	"tidebook/internal/pkg/config"
	"tidebook/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type HoldCommandsTestSuite struct {
	suite.Suite
	store *memstore.Store
	clock *clock.MockClock
	cfg   config.Config
	holds commands.HoldCommands
	ctx   context.Context

	slotID uuid.UUID
	userID uuid.UUID
}

func (s *HoldCommandsTestSuite) SetupTest() {
	s.store = memstore.New()
	s.clock = clock.NewMockClock(time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC))
	s.cfg = config.NewTestConfig()
	s.holds = commands.NewHoldCommands(s.store, s.clock, s.cfg)
	s.ctx = context.Background()

	s.slotID = uuid.New()
	s.userID = uuid.New()
	s.store.SeedTimeSlot(&slot.TimeSlot{
		ID:             s.slotID,
		SchoolID:       uuid.New(),
		SportID:        uuid.New(),
		Capacity:       10,
		SeatsLeft:      10,
		PricePerPerson: 1000,
		Status:         slot.StatusOpen,
	})
}

func TestHoldCommandsSuite(t *testing.T) {
	suite.Run(t, new(HoldCommandsTestSuite))
}

func (s *HoldCommandsTestSuite) TestCreateHoldClaimsSeatsAndQuotesDeposit() {
	result, err := s.holds.CreateHold(s.ctx, s.userID, commands.CreateHoldInput{
		TimeSlotID:   s.slotID,
		Participants: 6,
	})
	s.Require().NoError(err)

	// 6/10 fills 60% of the slot: reduced 15% tier.
	s.Equal(15, result.DepositPercent)
	s.Equal(int64(900), result.AmountRupees)
	s.Equal(s.clock.Now().Add(s.cfg.Booking.HoldTTL), result.ExpiresAt)
	s.NotEmpty(result.BookingCode)

	s.Equal(4, s.store.GetTimeSlot(s.slotID).SeatsLeft)

	b := s.store.GetBooking(result.BookingID)
	s.Require().NotNil(b)
	s.Equal(booking.StatusHeld, b.Status)

	h := s.store.GetHold(result.BookingID)
	s.Require().NotNil(h)
	s.Equal(result.ExpiresAt, h.ExpiresAt)
}

func (s *HoldCommandsTestSuite) TestCreateHoldSmallGroupPaysFullRate() {
	result, err := s.holds.CreateHold(s.ctx, s.userID, commands.CreateHoldInput{
		TimeSlotID:   s.slotID,
		Participants: 5,
	})
	s.Require().NoError(err)
	s.Equal(20, result.DepositPercent)
	s.Equal(int64(1000), result.AmountRupees)
}

func (s *HoldCommandsTestSuite) TestCreateHoldRejectsWhenSlotShort() {
	_, err := s.holds.CreateHold(s.ctx, s.userID, commands.CreateHoldInput{
		TimeSlotID:   s.slotID,
		Participants: 11,
	})
	s.ErrorIs(err, commands.ErrSlotFull)
	s.Equal(10, s.store.GetTimeSlot(s.slotID).SeatsLeft)
}

func (s *HoldCommandsTestSuite) TestCreateHoldRejectsClosedSlot() {
	closed := uuid.New()
	s.store.SeedTimeSlot(&slot.TimeSlot{
		ID:             closed,
		Capacity:       10,
		SeatsLeft:      10,
		PricePerPerson: 1000,
		Status:         slot.StatusClosed,
	})

	_, err := s.holds.CreateHold(s.ctx, s.userID, commands.CreateHoldInput{
		TimeSlotID:   closed,
		Participants: 2,
	})
	s.ErrorIs(err, commands.ErrSlotFull)
}

func (s *HoldCommandsTestSuite) TestCreateHoldUnknownSlot() {
	_, err := s.holds.CreateHold(s.ctx, s.userID, commands.CreateHoldInput{
		TimeSlotID:   uuid.New(),
		Participants: 2,
	})
	s.ErrorIs(err, commands.ErrSlotNotFound)
}

// Concurrent claimants can never overshoot capacity: with C seats and N
// claimants of one seat each, exactly min(N, C) succeed.
func (s *HoldCommandsTestSuite) TestConcurrentClaimsNeverOversell() {
	const claimants = 25
	var wg sync.WaitGroup
	results := make([]error, claimants)

	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = s.holds.CreateHold(s.ctx, uuid.New(), commands.CreateHoldInput{
				TimeSlotID:   s.slotID,
				Participants: 1,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			s.ErrorIs(err, commands.ErrSlotFull)
		}
	}
	s.Equal(10, succeeded)
	s.Equal(0, s.store.GetTimeSlot(s.slotID).SeatsLeft)
}

func (s *HoldCommandsTestSuite) TestExtendHoldCappedByMaxLifetime() {
	result, err := s.holds.CreateHold(s.ctx, s.userID, commands.CreateHoldInput{
		TimeSlotID:   s.slotID,
		Participants: 2,
	})
	s.Require().NoError(err)

	created := s.store.GetHold(result.BookingID).CreatedAt

	newExpiry, err := s.holds.ExtendHold(s.ctx, s.userID, result.BookingID, 10)
	s.Require().NoError(err)
	s.Equal(s.clock.Now().Add(10*time.Minute), newExpiry)

	// Asking far beyond the lifetime cap clamps to created+MaxHoldLifetime.
	newExpiry, err = s.holds.ExtendHold(s.ctx, s.userID, result.BookingID, 600)
	s.Require().NoError(err)
	s.Equal(created.Add(s.cfg.Booking.MaxHoldLifetime), newExpiry)
}

func (s *HoldCommandsTestSuite) TestExtendHoldForeignBookingLooksMissing() {
	result, err := s.holds.CreateHold(s.ctx, s.userID, commands.CreateHoldInput{
		TimeSlotID:   s.slotID,
		Participants: 2,
	})
	s.Require().NoError(err)

	_, err = s.holds.ExtendHold(s.ctx, uuid.New(), result.BookingID, 10)
	s.ErrorIs(err, commands.ErrBookingNotFound)
}

func (s *HoldCommandsTestSuite) TestCancelByUserReleasesSeats() {
	result, err := s.holds.CreateHold(s.ctx, s.userID, commands.CreateHoldInput{
		TimeSlotID:   s.slotID,
		Participants: 4,
	})
	s.Require().NoError(err)
	s.Equal(6, s.store.GetTimeSlot(s.slotID).SeatsLeft)

	s.Require().NoError(s.holds.CancelByUser(s.ctx, s.userID, result.BookingID))

	s.Equal(10, s.store.GetTimeSlot(s.slotID).SeatsLeft)
	s.Equal(booking.StatusCancelledByUser, s.store.GetBooking(result.BookingID).Status)
	s.Nil(s.store.GetHold(result.BookingID))

	// Cancelling again races against nothing and reports the current state.
	err = s.holds.CancelByUser(s.ctx, s.userID, result.BookingID)
	s.ErrorIs(err, commands.ErrInvalidState)
}

func (s *HoldCommandsTestSuite) TestExpireHoldsSweepsOnlyLapsed() {
	early, err := s.holds.CreateHold(s.ctx, s.userID, commands.CreateHoldInput{
		TimeSlotID:   s.slotID,
		Participants: 2,
	})
	s.Require().NoError(err)

	s.clock.Advance(2 * time.Minute)
	late, err := s.holds.CreateHold(s.ctx, s.userID, commands.CreateHoldInput{
		TimeSlotID:   s.slotID,
		Participants: 3,
	})
	s.Require().NoError(err)

	// Past the first hold's TTL but not the second's.
	s.clock.Advance(s.cfg.Booking.HoldTTL - time.Minute)

	n, err := s.holds.ExpireHolds(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)

	s.Equal(booking.StatusExpired, s.store.GetBooking(early.BookingID).Status)
	s.Equal(booking.StatusHeld, s.store.GetBooking(late.BookingID).Status)
	// Only the expired booking's 2 seats came back.
	s.Equal(7, s.store.GetTimeSlot(s.slotID).SeatsLeft)
}

func (s *HoldCommandsTestSuite) TestExpireHoldsIdempotent() {
	result, err := s.holds.CreateHold(s.ctx, s.userID, commands.CreateHoldInput{
		TimeSlotID:   s.slotID,
		Participants: 3,
	})
	s.Require().NoError(err)

	s.clock.Advance(s.cfg.Booking.HoldTTL + time.Second)

	n, err := s.holds.ExpireHolds(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)

	n, err = s.holds.ExpireHolds(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, n)

	// Seats released exactly once.
	s.Equal(10, s.store.GetTimeSlot(s.slotID).SeatsLeft)
	s.Equal(booking.StatusExpired, s.store.GetBooking(result.BookingID).Status)
}

func (s *HoldCommandsTestSuite) TestExpiredBookingRejectsFurtherActions() {
	result, err := s.holds.CreateHold(s.ctx, s.userID, commands.CreateHoldInput{
		TimeSlotID:   s.slotID,
		Participants: 2,
	})
	s.Require().NoError(err)

	s.clock.Advance(s.cfg.Booking.HoldTTL + time.Second)
	_, err = s.holds.ExpireHolds(s.ctx)
	s.Require().NoError(err)

	err = s.holds.CancelByUser(s.ctx, s.userID, result.BookingID)
	s.ErrorIs(err, commands.ErrInvalidState)

	var ise *commands.InvalidStateError
	s.ErrorAs(err, &ise)
	s.Equal(booking.StatusExpired, ise.Current)
}

func (s *HoldCommandsTestSuite) TestExtendHoldRejectsNonPositiveMinutes() {
	result, err := s.holds.CreateHold(s.ctx, s.userID, commands.CreateHoldInput{
		TimeSlotID:   s.slotID,
		Participants: 2,
	})
	s.Require().NoError(err)

	_, err = s.holds.ExtendHold(s.ctx, s.userID, result.BookingID, 0)
	s.ErrorIs(err, commands.ErrValidation)
}
