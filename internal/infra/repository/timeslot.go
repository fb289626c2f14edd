package repository

import (
	"context"
	"errors"

	"tidebook/internal/domain/slot"
	"tidebook/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TimeSlotRepository struct {
	db DB
}

func NewTimeSlotRepository(db DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

const timeSlotColumns = `id, school_id, sport_id, date, start_time, end_time,
	capacity, seats_left, price_per_person, status, created_at, updated_at`

func (r *TimeSlotRepository) FindByID(ctx context.Context, id uuid.UUID) (*slot.TimeSlot, error) {
	row := r.db.QueryRow(ctx, `SELECT `+timeSlotColumns+` FROM time_slots WHERE id = $1`, id)

	var s slot.TimeSlot
	err := row.Scan(&s.ID, &s.SchoolID, &s.SportID, &s.Date, &s.StartTime, &s.EndTime,
		&s.Capacity, &s.SeatsLeft, &s.PricePerPerson, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.NewRepoErr(infra.KindNotFound, "time slot not found")
		}
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to find time slot", err)
	}
	return &s, nil
}

// ClaimSeats is the atomic check-and-decrement. The single conditional UPDATE
// lets Postgres row locking serialize concurrent claimants; zero rows affected
// means the slot is closed, missing, or short on seats.
func (r *TimeSlotRepository) ClaimSeats(ctx context.Context, id uuid.UUID, n int) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE time_slots
		SET seats_left = seats_left - $2, updated_at = now()
		WHERE id = $1 AND status = 'open' AND seats_left >= $2`,
		id, n)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to claim seats", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM time_slots WHERE id = $1)`, id).Scan(&exists); err != nil {
			return infra.WrapRepoErr(infra.KindDBFailure, "failed to check time slot", err)
		}
		if !exists {
			return infra.NewRepoErr(infra.KindNotFound, "time slot not found")
		}
		return infra.NewRepoErr(infra.KindInsufficient, "not enough seats left")
	}
	return nil
}

// ReleaseSeats is the inverse of ClaimSeats. The capacity guard keeps
// seats_left <= capacity even if a caller bug double-releases; callers treat
// the CONFLICT kind as corruption, not a business outcome.
func (r *TimeSlotRepository) ReleaseSeats(ctx context.Context, id uuid.UUID, n int) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE time_slots
		SET seats_left = seats_left + $2, updated_at = now()
		WHERE id = $1 AND seats_left + $2 <= capacity`,
		id, n)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to release seats", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM time_slots WHERE id = $1)`, id).Scan(&exists); err != nil {
			return infra.WrapRepoErr(infra.KindDBFailure, "failed to check time slot", err)
		}
		if !exists {
			return infra.NewRepoErr(infra.KindNotFound, "time slot not found")
		}
		return infra.NewRepoErr(infra.KindConflict, "release would exceed capacity")
	}
	return nil
}
