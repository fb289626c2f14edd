package commands

import (
	"context"
	"log/slog"
	"time"

	"tidebook/internal/domain/booking"
	"tidebook/internal/domain/deposit"
	"tidebook/internal/domain/payment"
	"tidebook/internal/infra"
	"tidebook/internal/pkg/clock"
	"tidebook/internal/pkg/config"
	"tidebook/internal/pkg/errs"
	"tidebook/internal/usecase/shared"

	"github.com/google/uuid"
)

type CreateHoldInput struct {
	TimeSlotID   uuid.UUID
	Participants int
}

type CreateHoldResult struct {
	BookingID      uuid.UUID
	BookingCode    string
	AmountRupees   int64
	DepositPercent int
	ExpiresAt      time.Time
}

type HoldCommands interface {
	CreateHold(ctx context.Context, userID uuid.UUID, in CreateHoldInput) (*CreateHoldResult, error)
	ExtendHold(ctx context.Context, userID, bookingID uuid.UUID, minutes int) (time.Time, error)
	CancelByUser(ctx context.Context, userID, bookingID uuid.UUID) error
	ExpireHolds(ctx context.Context) (int, error)
}

type holdCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
	cfg   config.BookingConfig
}

func NewHoldCommands(uow shared.UnitOfWork, clk clock.Clock, cfg config.Config) HoldCommands {
	return &holdCommandsImpl{
		uow:   uow,
		clock: clk,
		cfg:   cfg.Booking,
	}
}

// CreateHold claims seats and creates the booking in one transaction: either
// both land or neither does. The deposit is recomputed here from the slot's
// price; whatever amount the client showed the customer is advisory only.
func (h *holdCommandsImpl) CreateHold(ctx context.Context, userID uuid.UUID, in CreateHoldInput) (*CreateHoldResult, error) {
	now := h.clock.Now()
	var result *CreateHoldResult

	err := h.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		ts, err := tx.TimeSlots().FindByID(ctx, in.TimeSlotID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrSlotNotFound
			}
			return errs.Mark(err, ErrStoreFailed)
		}

		quote, err := deposit.Calculate(ts.PricePerPerson, in.Participants, ts.Capacity)
		if err != nil {
			return errs.Mark(err, ErrValidation)
		}

		if err := tx.TimeSlots().ClaimSeats(ctx, in.TimeSlotID, in.Participants); err != nil {
			if infra.IsKind(err, infra.KindInsufficient) {
				return ErrSlotFull
			}
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrSlotNotFound
			}
			return errs.Mark(err, ErrStoreFailed)
		}

		code, err := booking.NewCode()
		if err != nil {
			return errs.Mark(err, ErrStoreFailed)
		}

		b := &booking.Booking{
			ID:           uuid.New(),
			Code:         code,
			UserID:       userID,
			SchoolID:     ts.SchoolID,
			SportID:      ts.SportID,
			TimeSlotID:   ts.ID,
			Participants: in.Participants,
			AmountRupees: quote.AmountRupees,
			Status:       booking.StatusHeld,
		}
		if err := tx.Bookings().Create(ctx, b); err != nil {
			return errs.Mark(err, ErrStoreFailed)
		}

		hold := &booking.Hold{
			ID:        uuid.New(),
			BookingID: b.ID,
			CreatedAt: now,
			ExpiresAt: now.Add(h.cfg.HoldTTL),
		}
		if err := tx.Holds().Create(ctx, hold); err != nil {
			return errs.Mark(err, ErrStoreFailed)
		}

		result = &CreateHoldResult{
			BookingID:      b.ID,
			BookingCode:    b.Code,
			AmountRupees:   quote.AmountRupees,
			DepositPercent: quote.Percent,
			ExpiresAt:      hold.ExpiresAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ExtendHold pushes the expiry forward, capped so a booking can never lock
// seats beyond MaxHoldLifetime from the original hold.
func (h *holdCommandsImpl) ExtendHold(ctx context.Context, userID, bookingID uuid.UUID, minutes int) (time.Time, error) {
	if minutes <= 0 {
		return time.Time{}, errs.Mark(errs.New("minutes must be positive"), ErrValidation)
	}

	now := h.clock.Now()
	var newExpiry time.Time

	err := h.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := findOwnedBooking(ctx, tx, userID, bookingID)
		if err != nil {
			return err
		}

		if b.Status != booking.StatusHeld && b.Status != booking.StatusAwaitingVerification {
			return invalidState("extend hold", b.Status)
		}

		hold, err := tx.Holds().FindByBookingID(ctx, bookingID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrHoldNotFound
			}
			return errs.Mark(err, ErrStoreFailed)
		}

		newExpiry = now.Add(time.Duration(minutes) * time.Minute)
		if limit := hold.CreatedAt.Add(h.cfg.MaxHoldLifetime); newExpiry.After(limit) {
			newExpiry = limit
		}

		if err := tx.Holds().UpdateExpiry(ctx, bookingID, newExpiry); err != nil {
			return errs.Mark(err, ErrStoreFailed)
		}
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}
	return newExpiry, nil
}

func (h *holdCommandsImpl) CancelByUser(ctx context.Context, userID, bookingID uuid.UUID) error {
	return h.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := findOwnedBooking(ctx, tx, userID, bookingID)
		if err != nil {
			return err
		}

		if err := applyTransition(ctx, tx, b, booking.StatusCancelledByUser, "cancel booking"); err != nil {
			return err
		}
		if err := tx.Holds().DeleteByBookingID(ctx, bookingID); err != nil {
			return errs.Mark(err, ErrStoreFailed)
		}
		return cancelActivePayment(ctx, tx, bookingID)
	})
}

// ExpireHolds sweeps lapsed holds, one transaction per booking so a failure
// on one never blocks the rest. Re-running after a partial failure is safe:
// the status gate makes each expiry idempotent.
func (h *holdCommandsImpl) ExpireHolds(ctx context.Context) (int, error) {
	now := h.clock.Now()

	var candidates []uuid.UUID
	err := h.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		ids, err := tx.Bookings().ExpiredHeld(ctx, now, h.cfg.SweepBatchSize)
		if err != nil {
			return errs.Mark(err, ErrStoreFailed)
		}
		candidates = ids
		return nil
	})
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, id := range candidates {
		if err := h.expireOne(ctx, id, now); err != nil {
			slog.Error("failed to expire hold", "booking_id", id, "error", err.Error())
			continue
		}
		expired++
	}
	return expired, nil
}

func (h *holdCommandsImpl) expireOne(ctx context.Context, bookingID uuid.UUID, now time.Time) error {
	return h.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := tx.Bookings().FindByID(ctx, bookingID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil
			}
			return errs.Mark(err, ErrStoreFailed)
		}
		if b.Status != booking.StatusHeld {
			// A payment claim or cancellation won the race; nothing to do.
			return nil
		}

		hold, err := tx.Holds().FindByBookingID(ctx, bookingID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil
			}
			return errs.Mark(err, ErrStoreFailed)
		}
		if hold.ExpiresAt.After(now) {
			// Extended since the candidate scan.
			return nil
		}

		if err := applyTransition(ctx, tx, b, booking.StatusExpired, "expire hold"); err != nil {
			return err
		}
		if err := tx.Holds().DeleteByBookingID(ctx, bookingID); err != nil {
			return errs.Mark(err, ErrStoreFailed)
		}
		return cancelActivePayment(ctx, tx, bookingID)
	})
}

func findOwnedBooking(ctx context.Context, tx shared.Tx, userID, bookingID uuid.UUID) (*booking.Booking, error) {
	b, err := tx.Bookings().FindByID(ctx, bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, errs.Mark(err, ErrStoreFailed)
	}
	// A foreign booking is indistinguishable from a missing one.
	if b.UserID != userID {
		return nil, ErrBookingNotFound
	}
	return b, nil
}

func cancelActivePayment(ctx context.Context, tx shared.Tx, bookingID uuid.UUID) error {
	p, err := tx.Payments().FindActiveByBookingID(ctx, bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil
		}
		return errs.Mark(err, ErrStoreFailed)
	}
	if err := tx.Payments().UpdateStatus(ctx, p.ID, payment.StatusCancelled); err != nil {
		return errs.Mark(err, ErrStoreFailed)
	}
	return nil
}
