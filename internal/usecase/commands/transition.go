package commands

import (
	"context"

	"tidebook/internal/domain/booking"
	"tidebook/internal/infra"
	"tidebook/internal/pkg/errs"
	"tidebook/internal/usecase/shared"
)

// applyTransition moves b to the target status with a status-gated update and
// releases the booking's seats when the transition demands it. Gate and
// release share the surrounding transaction, so seats are given back exactly
// once per booking: a lost gate rolls back without touching seats_left.
func applyTransition(ctx context.Context, tx shared.Tx, b *booking.Booking, to booking.Status, op string) error {
	if !booking.CanTransition(b.Status, to) {
		return invalidState(op, b.Status)
	}

	ok, err := tx.Bookings().UpdateStatus(ctx, b.ID, b.Status, to)
	if err != nil {
		return errs.Mark(err, ErrStoreFailed)
	}
	if !ok {
		// Someone moved the booking between our read and the gate. Re-read
		// to report the winner.
		current, err := tx.Bookings().FindByID(ctx, b.ID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrBookingNotFound
			}
			return errs.Mark(err, ErrStoreFailed)
		}
		if current.Status == booking.StatusExpired {
			return ErrHoldExpiredRace
		}
		return invalidState(op, current.Status)
	}

	if booking.TransitionReleasesSeats(b.Status, to) {
		if err := tx.TimeSlots().ReleaseSeats(ctx, b.TimeSlotID, b.Participants); err != nil {
			return errs.Mark(err, ErrStoreFailed)
		}
	}

	b.Status = to
	return nil
}
