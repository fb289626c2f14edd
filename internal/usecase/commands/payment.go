package commands

import (
	"context"
	"log/slog"
	"time"

	"tidebook/internal/domain/booking"
	"tidebook/internal/domain/payment"
	"tidebook/internal/infra"
	"tidebook/internal/pkg/clock"
	"tidebook/internal/pkg/config"
	"tidebook/internal/pkg/errs"
	"tidebook/internal/usecase/shared"

	"github.com/google/uuid"
)

// PaymentGateway is the boundary to the hosted payment provider. CreateOrder
// is called outside any store transaction; the order id it returns becomes
// the payment's intent id.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (string, error)
}

type GatewayEvent string

const (
	EventPaymentCaptured GatewayEvent = "payment.captured"
	EventPaymentFailed   GatewayEvent = "payment.failed"
)

type ClaimPaymentInput struct {
	PayerName     string
	UTR           string
	ScreenshotURL *string
}

type GatewayOrderResult struct {
	OrderID      string
	AmountRupees int64
	Currency     string
}

type PaymentCommands interface {
	ClaimPayment(ctx context.Context, userID, bookingID uuid.UUID, in ClaimPaymentInput) error
	ConfirmDeposit(ctx context.Context, operatorID, bookingID uuid.UUID) error
	RejectDeposit(ctx context.Context, operatorID, bookingID uuid.UUID, note string) error
	CancelBySchool(ctx context.Context, operatorID, bookingID uuid.UUID) error
	RefundDeposit(ctx context.Context, operatorID, bookingID uuid.UUID) error
	ConsumeBooking(ctx context.Context, operatorID, bookingID uuid.UUID) error
	CreateGatewayOrder(ctx context.Context, userID, bookingID uuid.UUID) (*GatewayOrderResult, error)
	HandleGatewayEvent(ctx context.Context, orderID string, event GatewayEvent) error
	ExpireVerifications(ctx context.Context) (int, error)
}

type paymentCommandsImpl struct {
	uow     shared.UnitOfWork
	gateway PaymentGateway
	clock   clock.Clock
	cfg     config.BookingConfig
}

func NewPaymentCommands(uow shared.UnitOfWork, gateway PaymentGateway, clk clock.Clock, cfg config.Config) PaymentCommands {
	return &paymentCommandsImpl{
		uow:     uow,
		gateway: gateway,
		clock:   clk,
		cfg:     cfg.Booking,
	}
}

// ClaimPayment records a manual UPI payment claim. From held it opens the
// verification window; while already awaiting verification it updates the
// existing payment instead of creating a duplicate.
func (p *paymentCommandsImpl) ClaimPayment(ctx context.Context, userID, bookingID uuid.UUID, in ClaimPaymentInput) error {
	if in.PayerName == "" || in.UTR == "" {
		return errs.Mark(errs.New("payer name and UTR are required"), ErrValidation)
	}

	now := p.clock.Now()
	return p.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := findOwnedBooking(ctx, tx, userID, bookingID)
		if err != nil {
			return err
		}

		switch b.Status {
		case booking.StatusHeld:
			if err := applyTransition(ctx, tx, b, booking.StatusAwaitingVerification, "claim payment"); err != nil {
				return err
			}
			expiresAt := now.Add(p.cfg.VerificationTTL)
			if err := tx.Bookings().SetDepositClaimed(ctx, bookingID, now, expiresAt); err != nil {
				return errs.Mark(err, ErrStoreFailed)
			}
		case booking.StatusAwaitingVerification:
			// Second claim on the same booking: fall through to the upsert.
		default:
			return invalidState("claim payment", b.Status)
		}

		return p.upsertManualClaim(ctx, tx, b, in)
	})
}

func (p *paymentCommandsImpl) upsertManualClaim(ctx context.Context, tx shared.Tx, b *booking.Booking, in ClaimPaymentInput) error {
	existing, err := tx.Payments().FindActiveByBookingID(ctx, b.ID)
	if err != nil {
		if !infra.IsKind(err, infra.KindNotFound) {
			return errs.Mark(err, ErrStoreFailed)
		}
		return createManualPayment(ctx, tx, b, in)
	}

	if existing.Provider != payment.ProviderUPIManual {
		// An unpaid gateway order; cancel it (keeping its intent id for
		// reconciliation) and record the manual attempt separately.
		if err := tx.Payments().UpdateStatus(ctx, existing.ID, payment.StatusCancelled); err != nil {
			return errs.Mark(err, ErrStoreFailed)
		}
		return createManualPayment(ctx, tx, b, in)
	}

	if err := tx.Payments().UpdateManualClaim(ctx, existing.ID, in.PayerName, in.UTR, in.ScreenshotURL); err != nil {
		return errs.Mark(err, ErrStoreFailed)
	}
	return nil
}

func createManualPayment(ctx context.Context, tx shared.Tx, b *booking.Booking, in ClaimPaymentInput) error {
	pay := &payment.Payment{
		ID:            uuid.New(),
		BookingID:     b.ID,
		AmountRupees:  b.AmountRupees,
		Currency:      "INR",
		Provider:      payment.ProviderUPIManual,
		Status:        payment.StatusInitiated,
		PayerName:     &in.PayerName,
		UTR:           &in.UTR,
		ScreenshotURL: in.ScreenshotURL,
	}
	if err := tx.Payments().Create(ctx, pay); err != nil {
		return errs.Mark(err, ErrStoreFailed)
	}
	return nil
}

func (p *paymentCommandsImpl) ConfirmDeposit(ctx context.Context, operatorID, bookingID uuid.UUID) error {
	now := p.clock.Now()
	return p.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := findBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if b.Status != booking.StatusAwaitingVerification {
			return invalidState("confirm deposit", b.Status)
		}

		pay, err := tx.Payments().FindActiveByBookingID(ctx, bookingID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrPaymentNotFound
			}
			return errs.Mark(err, ErrStoreFailed)
		}

		if err := applyTransition(ctx, tx, b, booking.StatusPaidDeposit, "confirm deposit"); err != nil {
			return err
		}
		if err := tx.Payments().MarkVerified(ctx, pay.ID, operatorID, now); err != nil {
			return errs.Mark(err, ErrStoreFailed)
		}
		// The hold is consumed once the deposit is in.
		if err := tx.Holds().DeleteByBookingID(ctx, bookingID); err != nil {
			return errs.Mark(err, ErrStoreFailed)
		}
		return nil
	})
}

// RejectDeposit turns an awaiting booking away and frees its seats. If the
// sweeper already expired the booking, the seats are gone too, so the
// rejection is a no-op rather than an error.
func (p *paymentCommandsImpl) RejectDeposit(ctx context.Context, operatorID, bookingID uuid.UUID, note string) error {
	return p.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := findBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if b.Status == booking.StatusExpired {
			return nil
		}
		if b.Status != booking.StatusAwaitingVerification {
			return invalidState("reject deposit", b.Status)
		}

		if err := applyTransition(ctx, tx, b, booking.StatusCancelledBySchool, "reject deposit"); err != nil {
			return err
		}
		if err := tx.Holds().DeleteByBookingID(ctx, bookingID); err != nil {
			return errs.Mark(err, ErrStoreFailed)
		}

		pay, err := tx.Payments().FindActiveByBookingID(ctx, bookingID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil
			}
			return errs.Mark(err, ErrStoreFailed)
		}
		if note != "" {
			if err := tx.Payments().SetNote(ctx, pay.ID, note); err != nil {
				return errs.Mark(err, ErrStoreFailed)
			}
		}
		if err := tx.Payments().UpdateStatus(ctx, pay.ID, payment.StatusFailed); err != nil {
			return errs.Mark(err, ErrStoreFailed)
		}
		return nil
	})
}

func (p *paymentCommandsImpl) CancelBySchool(ctx context.Context, operatorID, bookingID uuid.UUID) error {
	return p.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := findBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if err := applyTransition(ctx, tx, b, booking.StatusCancelledBySchool, "cancel booking"); err != nil {
			return err
		}
		if err := tx.Holds().DeleteByBookingID(ctx, bookingID); err != nil {
			return errs.Mark(err, ErrStoreFailed)
		}
		return cancelActivePayment(ctx, tx, bookingID)
	})
}

// RefundDeposit handles cancellations after the deposit was confirmed: the
// booking moves to refunded_deposit and its seats go back on sale.
func (p *paymentCommandsImpl) RefundDeposit(ctx context.Context, operatorID, bookingID uuid.UUID) error {
	return p.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := findBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if err := applyTransition(ctx, tx, b, booking.StatusRefundedDeposit, "refund deposit"); err != nil {
			return err
		}

		pay, err := tx.Payments().FindLatestByBookingID(ctx, bookingID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrPaymentNotFound
			}
			return errs.Mark(err, ErrStoreFailed)
		}
		if err := tx.Payments().UpdateStatus(ctx, pay.ID, payment.StatusRefunded); err != nil {
			return errs.Mark(err, ErrStoreFailed)
		}
		return nil
	})
}

func (p *paymentCommandsImpl) ConsumeBooking(ctx context.Context, operatorID, bookingID uuid.UUID) error {
	return p.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := findBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		return applyTransition(ctx, tx, b, booking.StatusConsumed, "consume booking")
	})
}

// CreateGatewayOrder registers a gateway order for a held booking. The
// gateway round trip happens between two short transactions; no store lock is
// held across the network call.
func (p *paymentCommandsImpl) CreateGatewayOrder(ctx context.Context, userID, bookingID uuid.UUID) (*GatewayOrderResult, error) {
	var amount int64
	var code string

	err := p.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := findOwnedBooking(ctx, tx, userID, bookingID)
		if err != nil {
			return err
		}
		if b.Status != booking.StatusHeld {
			return invalidState("create gateway order", b.Status)
		}
		amount = b.AmountRupees
		code = b.Code
		return nil
	})
	if err != nil {
		return nil, err
	}

	orderID, err := p.gateway.CreateOrder(ctx, amount*100, "INR", code)
	if err != nil {
		return nil, errs.Mark(err, ErrUpstreamPayment)
	}

	err = p.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := findOwnedBooking(ctx, tx, userID, bookingID)
		if err != nil {
			return err
		}
		if b.Status != booking.StatusHeld {
			return invalidState("create gateway order", b.Status)
		}
		// A retried order supersedes any attempt still sitting in initiated;
		// at most one payment per booking stays non-terminal.
		if err := cancelActivePayment(ctx, tx, bookingID); err != nil {
			return err
		}

		pay := &payment.Payment{
			ID:           uuid.New(),
			BookingID:    bookingID,
			AmountRupees: amount,
			Currency:     "INR",
			Provider:     payment.ProviderRazorpay,
			Status:       payment.StatusInitiated,
			IntentID:     &orderID,
		}
		if err := tx.Payments().Create(ctx, pay); err != nil {
			return errs.Mark(err, ErrStoreFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &GatewayOrderResult{OrderID: orderID, AmountRupees: amount, Currency: "INR"}, nil
}

// HandleGatewayEvent reconciles an asynchronous gateway notification into the
// booking lifecycle, keyed by the order id recorded at order creation.
func (p *paymentCommandsImpl) HandleGatewayEvent(ctx context.Context, orderID string, event GatewayEvent) error {
	return p.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		pay, err := tx.Payments().FindByIntentID(ctx, orderID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrPaymentNotFound
			}
			return errs.Mark(err, ErrStoreFailed)
		}

		b, err := findBooking(ctx, tx, pay.BookingID)
		if err != nil {
			return err
		}

		switch event {
		case EventPaymentCaptured:
			if b.Status == booking.StatusPaidDeposit {
				// Webhook redelivery; already settled.
				return nil
			}
			if b.Status == booking.StatusExpired {
				// The sweeper released the seats before the money arrived;
				// surfacing the race lets the operator trigger a refund.
				return ErrHoldExpiredRace
			}
			if err := applyTransition(ctx, tx, b, booking.StatusPaidDeposit, "gateway capture"); err != nil {
				return err
			}
			if err := tx.Payments().UpdateStatus(ctx, pay.ID, payment.StatusSucceeded); err != nil {
				return errs.Mark(err, ErrStoreFailed)
			}
			if err := tx.Holds().DeleteByBookingID(ctx, b.ID); err != nil {
				return errs.Mark(err, ErrStoreFailed)
			}
			return nil
		case EventPaymentFailed:
			if pay.Status != payment.StatusInitiated {
				return nil
			}
			// The booking stays held until the hold lapses; the customer may
			// retry with another payment.
			if err := tx.Payments().UpdateStatus(ctx, pay.ID, payment.StatusFailed); err != nil {
				return errs.Mark(err, ErrStoreFailed)
			}
			return nil
		default:
			return errs.Mark(errs.New("unknown gateway event"), ErrValidation)
		}
	})
}

// ExpireVerifications is the verification-side counterpart of ExpireHolds.
func (p *paymentCommandsImpl) ExpireVerifications(ctx context.Context) (int, error) {
	now := p.clock.Now()

	var candidates []uuid.UUID
	err := p.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		ids, err := tx.Bookings().ExpiredAwaitingVerification(ctx, now, p.cfg.SweepBatchSize)
		if err != nil {
			return errs.Mark(err, ErrStoreFailed)
		}
		candidates = ids
		return nil
	})
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, id := range candidates {
		if err := p.expireVerificationOne(ctx, id, now); err != nil {
			slog.Error("failed to expire verification", "booking_id", id, "error", err.Error())
			continue
		}
		expired++
	}
	return expired, nil
}

func (p *paymentCommandsImpl) expireVerificationOne(ctx context.Context, bookingID uuid.UUID, now time.Time) error {
	return p.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := tx.Bookings().FindByID(ctx, bookingID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil
			}
			return errs.Mark(err, ErrStoreFailed)
		}
		if b.Status != booking.StatusAwaitingVerification {
			return nil
		}
		if b.VerificationExpiresAt == nil || b.VerificationExpiresAt.After(now) {
			return nil
		}

		if err := applyTransition(ctx, tx, b, booking.StatusExpired, "expire verification"); err != nil {
			return err
		}
		if err := tx.Holds().DeleteByBookingID(ctx, bookingID); err != nil {
			return errs.Mark(err, ErrStoreFailed)
		}
		return cancelActivePayment(ctx, tx, bookingID)
	})
}

func findBooking(ctx context.Context, tx shared.Tx, bookingID uuid.UUID) (*booking.Booking, error) {
	b, err := tx.Bookings().FindByID(ctx, bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, errs.Mark(err, ErrStoreFailed)
	}
	return b, nil
}
