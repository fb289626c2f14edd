//go:build unit

package deposit_test

import (
	"testing"

	"tidebook/internal/domain/deposit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name           string
		pricePerPerson int64
		participants   int
		capacity       int
		wantPercent    int
		wantAmount     int64
	}{
		{
			name:           "large group at exactly 60 percent gets reduced rate",
			pricePerPerson: 1000,
			participants:   6,
			capacity:       10,
			wantPercent:    15,
			wantAmount:     900,
		},
		{
			name:           "small group below 60 percent pays full rate",
			pricePerPerson: 1000,
			participants:   5,
			capacity:       10,
			wantPercent:    20,
			wantAmount:     1000,
		},
		{
			name:           "full slot gets reduced rate",
			pricePerPerson: 500,
			participants:   8,
			capacity:       8,
			wantPercent:    15,
			wantAmount:     600,
		},
		{
			name:           "single participant in small slot",
			pricePerPerson: 1500,
			participants:   1,
			capacity:       4,
			wantPercent:    20,
			wantAmount:     300,
		},
		{
			name:           "fractional rupee rounds up",
			pricePerPerson: 333,
			participants:   1,
			capacity:       10,
			wantPercent:    20,
			wantAmount:     67, // 66.6 rounds up
		},
		{
			name:           "free slot yields zero deposit",
			pricePerPerson: 0,
			participants:   3,
			capacity:       10,
			wantPercent:    20,
			wantAmount:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := deposit.Calculate(tt.pricePerPerson, tt.participants, tt.capacity)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPercent, quote.Percent)
			assert.Equal(t, tt.wantAmount, quote.AmountRupees)
		})
	}
}

func TestCalculateValidation(t *testing.T) {
	tests := []struct {
		name           string
		pricePerPerson int64
		participants   int
		capacity       int
		wantErr        error
	}{
		{"zero participants", 1000, 0, 10, deposit.ErrInvalidParticipants},
		{"negative participants", 1000, -2, 10, deposit.ErrInvalidParticipants},
		{"zero capacity", 1000, 1, 0, deposit.ErrInvalidCapacity},
		{"negative price", -1, 1, 10, deposit.ErrInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := deposit.Calculate(tt.pricePerPerson, tt.participants, tt.capacity)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
