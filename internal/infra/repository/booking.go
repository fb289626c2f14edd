package repository

import (
	"context"
	"errors"
	"time"

	"tidebook/internal/domain/booking"
	"tidebook/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type BookingRepository struct {
	db DB
}

func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, booking_code, user_id, school_id, sport_id, time_slot_id,
	participants, amount, status, verification_expires_at, deposit_claimed_at,
	created_at, updated_at`

func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO bookings (id, booking_code, user_id, school_id, sport_id,
			time_slot_id, participants, amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		b.ID, b.Code, b.UserID, b.SchoolID, b.SportID,
		b.TimeSlotID, b.Participants, b.AmountRupees, b.Status)
	if err != nil {
		if isUniqueViolation(err) {
			return infra.WrapRepoErr(infra.KindDuplicateKey, "booking code already exists", err)
		}
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to create booking", err)
	}
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	return scanBooking(row)
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to booking.Status) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE bookings SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2`,
		id, from, to)
	if err != nil {
		return false, infra.WrapRepoErr(infra.KindDBFailure, "failed to update booking status", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *BookingRepository) SetDepositClaimed(ctx context.Context, id uuid.UUID, claimedAt, verificationExpiresAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE bookings
		SET deposit_claimed_at = $2, verification_expires_at = $3, updated_at = now()
		WHERE id = $1`,
		id, claimedAt, verificationExpiresAt)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to set deposit claim", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "booking not found")
	}
	return nil
}

func (r *BookingRepository) ExpiredHeld(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		SELECT b.id
		FROM bookings b
		JOIN holds h ON h.booking_id = b.id
		WHERE b.status = $1 AND h.expires_at <= $2
		ORDER BY h.expires_at
		LIMIT $3`,
		booking.StatusHeld, now, limit)
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to list expired holds", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

func (r *BookingRepository) ExpiredAwaitingVerification(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id
		FROM bookings
		WHERE status = $1 AND verification_expires_at IS NOT NULL AND verification_expires_at <= $2
		ORDER BY verification_expires_at
		LIMIT $3`,
		booking.StatusAwaitingVerification, now, limit)
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to list expired verifications", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

func scanBooking(row pgx.Row) (*booking.Booking, error) {
	var b booking.Booking
	err := row.Scan(&b.ID, &b.Code, &b.UserID, &b.SchoolID, &b.SportID, &b.TimeSlotID,
		&b.Participants, &b.AmountRupees, &b.Status, &b.VerificationExpiresAt,
		&b.DepositClaimedAt, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.NewRepoErr(infra.KindNotFound, "booking not found")
		}
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to scan booking", err)
	}
	return &b, nil
}

func scanIDs(rows pgx.Rows) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to scan booking id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to iterate bookings", err)
	}
	return ids, nil
}

const pgErrCodeUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrCodeUniqueViolation
}
