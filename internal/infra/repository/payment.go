package repository

import (
	"context"
	"errors"
	"time"

	"tidebook/internal/domain/payment"
	"tidebook/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PaymentRepository struct {
	db DB
}

func NewPaymentRepository(db DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, booking_id, amount, currency, provider, status, is_verified,
	intent_id, payer_name, utr, screenshot_url, note, verified_by, verified_at,
	created_at, updated_at`

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO payments (id, booking_id, amount, currency, provider, status,
			is_verified, intent_id, payer_name, utr, screenshot_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.BookingID, p.AmountRupees, p.Currency, p.Provider, p.Status,
		p.IsVerified, p.IntentID, p.PayerName, p.UTR, p.ScreenshotURL)
	if err != nil {
		if isUniqueViolation(err) {
			return infra.WrapRepoErr(infra.KindDuplicateKey, "payment intent already recorded", err)
		}
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to create payment", err)
	}
	return nil
}

func (r *PaymentRepository) FindActiveByBookingID(ctx context.Context, bookingID uuid.UUID) (*payment.Payment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE booking_id = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT 1`,
		bookingID, payment.StatusInitiated)
	return scanPayment(row)
}

func (r *PaymentRepository) FindLatestByBookingID(ctx context.Context, bookingID uuid.UUID) (*payment.Payment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE booking_id = $1
		ORDER BY created_at DESC
		LIMIT 1`,
		bookingID)
	return scanPayment(row)
}

func (r *PaymentRepository) FindByIntentID(ctx context.Context, intentID string) (*payment.Payment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+paymentColumns+` FROM payments WHERE intent_id = $1`, intentID)
	return scanPayment(row)
}

func (r *PaymentRepository) UpdateManualClaim(ctx context.Context, id uuid.UUID, payerName, utr string, screenshotURL *string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE payments
		SET payer_name = $2, utr = $3, screenshot_url = $4, updated_at = now()
		WHERE id = $1`,
		id, payerName, utr, screenshotURL)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to update manual claim", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "payment not found")
	}
	return nil
}

func (r *PaymentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status payment.Status) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE payments SET status = $2, updated_at = now() WHERE id = $1`,
		id, status)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to update payment status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "payment not found")
	}
	return nil
}

func (r *PaymentRepository) SetNote(ctx context.Context, id uuid.UUID, note string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE payments SET note = $2, updated_at = now() WHERE id = $1`,
		id, note)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to set payment note", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "payment not found")
	}
	return nil
}

func (r *PaymentRepository) MarkVerified(ctx context.Context, id uuid.UUID, verifiedBy uuid.UUID, verifiedAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE payments
		SET status = $2, is_verified = true, verified_by = $3, verified_at = $4, updated_at = now()
		WHERE id = $1`,
		id, payment.StatusSucceeded, verifiedBy, verifiedAt)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to mark payment verified", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "payment not found")
	}
	return nil
}

func scanPayment(row pgx.Row) (*payment.Payment, error) {
	var p payment.Payment
	err := row.Scan(&p.ID, &p.BookingID, &p.AmountRupees, &p.Currency, &p.Provider,
		&p.Status, &p.IsVerified, &p.IntentID, &p.PayerName, &p.UTR, &p.ScreenshotURL,
		&p.Note, &p.VerifiedBy, &p.VerifiedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.NewRepoErr(infra.KindNotFound, "payment not found")
		}
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to scan payment", err)
	}
	return &p, nil
}
