//go:build unit

package booking_test

import (
	"testing"

	"tidebook/internal/domain/booking"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to booking.Status }{
		{booking.StatusHeld, booking.StatusAwaitingVerification},
		{booking.StatusHeld, booking.StatusPaidDeposit},
		{booking.StatusHeld, booking.StatusExpired},
		{booking.StatusHeld, booking.StatusCancelledByUser},
		{booking.StatusHeld, booking.StatusCancelledBySchool},
		{booking.StatusAwaitingVerification, booking.StatusPaidDeposit},
		{booking.StatusAwaitingVerification, booking.StatusExpired},
		{booking.StatusAwaitingVerification, booking.StatusCancelledByUser},
		{booking.StatusAwaitingVerification, booking.StatusCancelledBySchool},
		{booking.StatusPaidDeposit, booking.StatusConsumed},
		{booking.StatusPaidDeposit, booking.StatusRefundedDeposit},
	}
	for _, tc := range allowed {
		assert.True(t, booking.CanTransition(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct{ from, to booking.Status }{
		{booking.StatusExpired, booking.StatusHeld},
		{booking.StatusExpired, booking.StatusPaidDeposit},
		{booking.StatusConsumed, booking.StatusRefundedDeposit},
		{booking.StatusCancelledByUser, booking.StatusHeld},
		{booking.StatusPaidDeposit, booking.StatusExpired},
		{booking.StatusPaidDeposit, booking.StatusCancelledByUser},
		{booking.StatusAwaitingVerification, booking.StatusHeld},
		{booking.StatusHeld, booking.StatusConsumed},
	}
	for _, tc := range denied {
		assert.False(t, booking.CanTransition(tc.from, tc.to), "%s -> %s should be denied", tc.from, tc.to)
	}
}

func TestTerminalStatusesAcceptNothing(t *testing.T) {
	terminals := []booking.Status{
		booking.StatusConsumed,
		booking.StatusExpired,
		booking.StatusCancelledByUser,
		booking.StatusCancelledBySchool,
		booking.StatusRefundedDeposit,
	}
	all := []booking.Status{
		booking.StatusHeld,
		booking.StatusAwaitingVerification,
		booking.StatusPaidDeposit,
		booking.StatusConsumed,
		booking.StatusExpired,
		booking.StatusCancelledByUser,
		booking.StatusCancelledBySchool,
		booking.StatusRefundedDeposit,
	}

	for _, from := range terminals {
		assert.True(t, from.IsTerminal())
		for _, to := range all {
			assert.False(t, booking.CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTransitionReleasesSeats(t *testing.T) {
	assert.True(t, booking.TransitionReleasesSeats(booking.StatusHeld, booking.StatusExpired))
	assert.True(t, booking.TransitionReleasesSeats(booking.StatusHeld, booking.StatusCancelledByUser))
	assert.True(t, booking.TransitionReleasesSeats(booking.StatusAwaitingVerification, booking.StatusExpired))
	assert.True(t, booking.TransitionReleasesSeats(booking.StatusAwaitingVerification, booking.StatusCancelledBySchool))
	assert.True(t, booking.TransitionReleasesSeats(booking.StatusPaidDeposit, booking.StatusRefundedDeposit))

	// Entering the paid or consumed states keeps the seats claimed.
	assert.False(t, booking.TransitionReleasesSeats(booking.StatusHeld, booking.StatusAwaitingVerification))
	assert.False(t, booking.TransitionReleasesSeats(booking.StatusHeld, booking.StatusPaidDeposit))
	assert.False(t, booking.TransitionReleasesSeats(booking.StatusAwaitingVerification, booking.StatusPaidDeposit))
	assert.False(t, booking.TransitionReleasesSeats(booking.StatusPaidDeposit, booking.StatusConsumed))

	// Disallowed transitions never release.
	assert.False(t, booking.TransitionReleasesSeats(booking.StatusExpired, booking.StatusExpired))
	assert.False(t, booking.TransitionReleasesSeats(booking.StatusConsumed, booking.StatusRefundedDeposit))
}

func TestHoldsSeats(t *testing.T) {
	assert.True(t, booking.StatusHeld.HoldsSeats())
	assert.True(t, booking.StatusAwaitingVerification.HoldsSeats())
	assert.True(t, booking.StatusPaidDeposit.HoldsSeats())
	assert.True(t, booking.StatusConsumed.HoldsSeats())
	assert.False(t, booking.StatusExpired.HoldsSeats())
	assert.False(t, booking.StatusCancelledByUser.HoldsSeats())
	assert.False(t, booking.StatusRefundedDeposit.HoldsSeats())
}
