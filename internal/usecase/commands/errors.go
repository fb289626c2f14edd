package commands

import (
	"fmt"

	"tidebook/internal/domain/booking"
	"tidebook/internal/pkg/errs"
)

var (
	ErrBookingNotFound = errs.New("booking not found")
	ErrSlotNotFound    = errs.New("time slot not found")
	ErrSlotFull        = errs.New("slot full")
	ErrHoldNotFound    = errs.New("hold not found")
	ErrPaymentNotFound = errs.New("payment not found")
	// ErrInvalidState matches any *InvalidStateError via errors.Is.
	ErrInvalidState = errs.New("operation not allowed in current state")
	// ErrHoldExpiredRace marks a transition that lost the race against the
	// expiry sweeper: the pre-read saw a live booking, the gate saw an
	// expired one.
	ErrHoldExpiredRace = errs.New("hold expired concurrently")
	ErrUpstreamPayment = errs.New("payment gateway failure")
	ErrStoreFailed     = errs.New("store operation failed")
	ErrValidation      = errs.New("validation failed")
)

// InvalidStateError always carries the status the caller raced against, so
// UIs can tell the customer what actually happened.
type InvalidStateError struct {
	Op      string
	Current booking.Status
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s not allowed: booking is %s", e.Op, e.Current)
}

func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}

func invalidState(op string, current booking.Status) error {
	return &InvalidStateError{Op: op, Current: current}
}
