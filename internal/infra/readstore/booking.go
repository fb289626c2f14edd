package readstore

import (
	"context"
	"errors"

	"tidebook/internal/infra"
	"tidebook/internal/infra/repository"
	"tidebook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type BookingReadStore struct {
	db repository.DB
}

func NewBookingReadStore(db repository.DB) *BookingReadStore {
	return &BookingReadStore{db: db}
}

func (r *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	row := r.db.QueryRow(ctx, `
		SELECT b.id, b.booking_code, b.user_id, b.school_id, b.sport_id, b.time_slot_id,
			ts.date, ts.start_time, b.participants, b.amount, b.status,
			h.expires_at, b.verification_expires_at,
			p.provider, p.status, p.payer_name, p.utr,
			b.created_at, b.updated_at
		FROM bookings b
		JOIN time_slots ts ON ts.id = b.time_slot_id
		LEFT JOIN holds h ON h.booking_id = b.id
		LEFT JOIN LATERAL (
			SELECT provider, status, payer_name, utr
			FROM payments
			WHERE booking_id = b.id
			ORDER BY created_at DESC
			LIMIT 1
		) p ON true
		WHERE b.id = $1`, id)

	var v queries.BookingView
	err := row.Scan(&v.ID, &v.Code, &v.UserID, &v.SchoolID, &v.SportID, &v.TimeSlotID,
		&v.SlotDate, &v.SlotStartTime, &v.Participants, &v.AmountRupees, &v.Status,
		&v.HoldExpiresAt, &v.VerificationExpiresAt,
		&v.PaymentProvider, &v.PaymentStatus, &v.PayerName, &v.UTR,
		&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr(infra.KindNotFound, "booking not found", err)
		}
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to find booking view", err)
	}
	return &v, nil
}

const bookingListQuery = `
	SELECT b.id, b.booking_code, b.time_slot_id, ts.date, ts.start_time, b.participants,
		b.amount, b.status, b.created_at
	FROM bookings b
	JOIN time_slots ts ON ts.id = b.time_slot_id`

func (r *BookingReadStore) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]*queries.BookingListItem, error) {
	rows, err := r.db.Query(ctx, bookingListQuery+`
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to list user bookings", err)
	}
	defer rows.Close()
	return scanListItems(rows)
}

func (r *BookingReadStore) FindBySchoolID(ctx context.Context, schoolID uuid.UUID, status *string, limit, offset int32) ([]*queries.BookingListItem, error) {
	rows, err := r.db.Query(ctx, bookingListQuery+`
		WHERE b.school_id = $1 AND ($2::text IS NULL OR b.status = $2)
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT $3 OFFSET $4`, schoolID, status, limit, offset)
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to list school bookings", err)
	}
	defer rows.Close()
	return scanListItems(rows)
}

func (r *BookingReadStore) FindSlotAvailability(ctx context.Context, timeSlotID uuid.UUID) (*queries.SlotAvailabilityView, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, date, start_time, end_time, capacity, seats_left, price_per_person, status
		FROM time_slots
		WHERE id = $1`, timeSlotID)

	var v queries.SlotAvailabilityView
	err := row.Scan(&v.TimeSlotID, &v.Date, &v.StartTime, &v.EndTime, &v.Capacity, &v.SeatsLeft,
		&v.PricePerPerson, &v.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr(infra.KindNotFound, "time slot not found", err)
		}
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to find slot availability", err)
	}
	return &v, nil
}

func scanListItems(rows pgx.Rows) ([]*queries.BookingListItem, error) {
	items := make([]*queries.BookingListItem, 0)
	for rows.Next() {
		var it queries.BookingListItem
		if err := rows.Scan(&it.ID, &it.Code, &it.TimeSlotID, &it.SlotDate, &it.SlotStartTime,
			&it.Participants, &it.AmountRupees, &it.Status, &it.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to scan booking row", err)
		}
		items = append(items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to iterate booking rows", err)
	}
	return items, nil
}
