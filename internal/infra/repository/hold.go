package repository

import (
	"context"
	"errors"
	"time"

	"tidebook/internal/domain/booking"
	"tidebook/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type HoldRepository struct {
	db DB
}

func NewHoldRepository(db DB) *HoldRepository {
	return &HoldRepository{db: db}
}

func (r *HoldRepository) Create(ctx context.Context, h *booking.Hold) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO holds (id, booking_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)`,
		h.ID, h.BookingID, h.CreatedAt, h.ExpiresAt)
	if err != nil {
		if isUniqueViolation(err) {
			return infra.WrapRepoErr(infra.KindDuplicateKey, "hold already exists for booking", err)
		}
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to create hold", err)
	}
	return nil
}

func (r *HoldRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*booking.Hold, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, booking_id, created_at, expires_at
		FROM holds WHERE booking_id = $1`, bookingID)

	var h booking.Hold
	if err := row.Scan(&h.ID, &h.BookingID, &h.CreatedAt, &h.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.NewRepoErr(infra.KindNotFound, "hold not found")
		}
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to find hold", err)
	}
	return &h, nil
}

func (r *HoldRepository) UpdateExpiry(ctx context.Context, bookingID uuid.UUID, expiresAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE holds SET expires_at = $2 WHERE booking_id = $1`,
		bookingID, expiresAt)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to update hold expiry", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "hold not found")
	}
	return nil
}

func (r *HoldRepository) DeleteByBookingID(ctx context.Context, bookingID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM holds WHERE booking_id = $1`, bookingID)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to delete hold", err)
	}
	return nil
}
