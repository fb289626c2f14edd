package booking

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Booking is one customer's claim against a TimeSlot. Bookings are never
// deleted; terminal statuses are kept for audit.
type Booking struct {
	ID                    uuid.UUID
	Code                  string
	UserID                uuid.UUID
	SchoolID              uuid.UUID
	SportID               uuid.UUID
	TimeSlotID            uuid.UUID
	Participants          int
	AmountRupees          int64
	Status                Status
	VerificationExpiresAt *time.Time
	DepositClaimedAt      *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Hold is the time-boxed reservation record, 1:1 with a held booking.
type Hold struct {
	ID        uuid.UUID
	BookingID uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
}

const codePrefix = "TB-"

// NewCode generates a human-readable booking code like TB-9F2C41AB.
// Uniqueness is enforced by the store; collisions on 4 random bytes are rare
// enough that the insert conflict path handles them.
func NewCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return codePrefix + strings.ToUpper(hex.EncodeToString(b)), nil
}
