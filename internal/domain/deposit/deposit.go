package deposit

import "errors"

var (
	ErrInvalidParticipants = errors.New("participants must be at least 1")
	ErrInvalidCapacity     = errors.New("capacity must be positive")
	ErrInvalidPrice        = errors.New("price per person cannot be negative")
)

// Tier boundaries: groups filling 60% or more of a slot pay a reduced deposit.
const (
	largeGroupRatio     = 0.6
	largeGroupPercent   = 15
	defaultGroupPercent = 20
)

// Quote is the server-computed deposit for a prospective hold. Any amount the
// client sends along is advisory only; this is the single source of truth.
type Quote struct {
	Percent      int
	AmountRupees int64
}

// Calculate returns the tiered deposit for pricePerPerson*participants,
// rounded up to the next whole rupee. Pure function, no I/O.
func Calculate(pricePerPerson int64, participants, capacity int) (Quote, error) {
	if participants < 1 {
		return Quote{}, ErrInvalidParticipants
	}
	if capacity < 1 {
		return Quote{}, ErrInvalidCapacity
	}
	if pricePerPerson < 0 {
		return Quote{}, ErrInvalidPrice
	}

	percent := defaultGroupPercent
	if float64(participants)/float64(capacity) >= largeGroupRatio {
		percent = largeGroupPercent
	}

	total := pricePerPerson * int64(participants) * int64(percent)
	amount := total / 100
	if total%100 != 0 {
		amount++
	}

	return Quote{Percent: percent, AmountRupees: amount}, nil
}
