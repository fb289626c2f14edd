package payment

import (
	"time"

	"github.com/google/uuid"
)

type Provider string

const (
	ProviderRazorpay  Provider = "razorpay"
	ProviderUPIManual Provider = "upi_manual"
)

type Status string

const (
	StatusInitiated Status = "initiated"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsTerminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusRefunded, StatusCancelled:
		return true
	default:
		return false
	}
}

// Payment records one value-transfer attempt against a booking. At most one
// payment per booking is in a non-terminal state at a time.
type Payment struct {
	ID            uuid.UUID
	BookingID     uuid.UUID
	AmountRupees  int64
	Currency      string
	Provider      Provider
	Status        Status
	IsVerified    bool
	IntentID      *string
	PayerName     *string
	UTR           *string
	ScreenshotURL *string
	Note          *string
	VerifiedBy    *uuid.UUID
	VerifiedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
