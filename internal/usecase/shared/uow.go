package shared

import (
	"context"
	"time"

	"tidebook/internal/domain/booking"
	"tidebook/internal/domain/payment"
	"tidebook/internal/domain/slot"

	"github.com/google/uuid"
)

// UnitOfWork is the transactional boundary over the durable store. Every
// command runs inside Within; the implementation decides isolation and retry.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Tx interface {
	TimeSlots() TimeSlotRepository
	Bookings() BookingRepository
	Holds() HoldRepository
	Payments() PaymentRepository
}

// TimeSlotRepository guards seats_left. ClaimSeats and ReleaseSeats are the
// only mutation paths; both are single conditional updates resolved by the
// store's row isolation, never by an application lock.
type TimeSlotRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*slot.TimeSlot, error)
	// ClaimSeats decrements seats_left by n iff seats_left >= n and the slot
	// is open. Shortfall surfaces as KindInsufficient.
	ClaimSeats(ctx context.Context, id uuid.UUID, n int) error
	// ReleaseSeats increments seats_left by n, never past capacity.
	ReleaseSeats(ctx context.Context, id uuid.UUID, n int) error
}

type BookingRepository interface {
	Create(ctx context.Context, b *booking.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	// UpdateStatus transitions from -> to with a status-gated conditional
	// update. A false return means the gate lost: some concurrent actor moved
	// the booking first and the caller must re-read to report the winner.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to booking.Status) (bool, error)
	SetDepositClaimed(ctx context.Context, id uuid.UUID, claimedAt, verificationExpiresAt time.Time) error
	// ExpiredHeld lists held bookings whose hold has lapsed as of now.
	ExpiredHeld(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
	// ExpiredAwaitingVerification lists awaiting_verification bookings past
	// their verification window as of now.
	ExpiredAwaitingVerification(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
}

type HoldRepository interface {
	Create(ctx context.Context, h *booking.Hold) error
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*booking.Hold, error)
	UpdateExpiry(ctx context.Context, bookingID uuid.UUID, expiresAt time.Time) error
	DeleteByBookingID(ctx context.Context, bookingID uuid.UUID) error
}

type PaymentRepository interface {
	Create(ctx context.Context, p *payment.Payment) error
	// FindActiveByBookingID returns the booking's non-terminal payment, or
	// KindNotFound when none exists.
	FindActiveByBookingID(ctx context.Context, bookingID uuid.UUID) (*payment.Payment, error)
	FindByIntentID(ctx context.Context, intentID string) (*payment.Payment, error)
	// FindLatestByBookingID returns the booking's most recent payment in any
	// status (refunds operate on already-settled payments).
	FindLatestByBookingID(ctx context.Context, bookingID uuid.UUID) (*payment.Payment, error)
	UpdateManualClaim(ctx context.Context, id uuid.UUID, payerName, utr string, screenshotURL *string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status payment.Status) error
	SetNote(ctx context.Context, id uuid.UUID, note string) error
	MarkVerified(ctx context.Context, id uuid.UUID, verifiedBy uuid.UUID, verifiedAt time.Time) error
}
