package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type BookingView struct {
	ID                    uuid.UUID  `json:"id"`
	Code                  string     `json:"code"`
	UserID                uuid.UUID  `json:"user_id"`
	SchoolID              uuid.UUID  `json:"school_id"`
	SportID               uuid.UUID  `json:"sport_id"`
	TimeSlotID            uuid.UUID  `json:"time_slot_id"`
	SlotDate              time.Time  `json:"slot_date"`
	SlotStartTime         time.Time  `json:"slot_start_time"`
	Participants          int        `json:"participants"`
	AmountRupees          int64      `json:"amount_rupees"`
	Status                string     `json:"status"`
	HoldExpiresAt         *time.Time `json:"hold_expires_at,omitempty"`
	VerificationExpiresAt *time.Time `json:"verification_expires_at,omitempty"`
	PaymentProvider       *string    `json:"payment_provider,omitempty"`
	PaymentStatus         *string    `json:"payment_status,omitempty"`
	PayerName             *string    `json:"payer_name,omitempty"`
	UTR                   *string    `json:"utr,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

type BookingListItem struct {
	ID            uuid.UUID `json:"id"`
	Code          string    `json:"code"`
	TimeSlotID    uuid.UUID `json:"time_slot_id"`
	SlotDate      time.Time `json:"slot_date"`
	SlotStartTime time.Time `json:"slot_start_time"`
	Participants  int       `json:"participants"`
	AmountRupees  int64     `json:"amount_rupees"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

type SlotAvailabilityView struct {
	TimeSlotID     uuid.UUID `json:"time_slot_id"`
	Date           time.Time `json:"date"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	Capacity       int       `json:"capacity"`
	SeatsLeft      int       `json:"seats_left"`
	PricePerPerson int64     `json:"price_per_person"`
	Status         string    `json:"status"`
}

type BookingViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]*BookingListItem, error)
	FindBySchoolID(ctx context.Context, schoolID uuid.UUID, status *string, limit, offset int32) ([]*BookingListItem, error)
	FindSlotAvailability(ctx context.Context, timeSlotID uuid.UUID) (*SlotAvailabilityView, error)
}

type BookingQueries interface {
	// GetForUser returns the booking only when actor owns it.
	GetForUser(ctx context.Context, actor uuid.UUID, id uuid.UUID) (*BookingView, error)
	// GetForSchool returns the booking only when it belongs to schoolID.
	GetForSchool(ctx context.Context, schoolID uuid.UUID, id uuid.UUID) (*BookingView, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*BookingListItem, error)
	ListBySchool(ctx context.Context, schoolID uuid.UUID, status *string, limit, offset int) ([]*BookingListItem, error)
	SlotAvailability(ctx context.Context, timeSlotID uuid.UUID) (*SlotAvailabilityView, error)
}

type bookingQueriesImpl struct {
	repo BookingViewRepo
}

func NewBookingQueries(repo BookingViewRepo) BookingQueries {
	return &bookingQueriesImpl{repo: repo}
}

const defaultListLimit = 50

func (q *bookingQueriesImpl) GetForUser(ctx context.Context, actor uuid.UUID, id uuid.UUID) (*BookingView, error) {
	v, err := q.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if v.UserID != actor {
		return nil, ErrViewNotFound
	}
	return v, nil
}

func (q *bookingQueriesImpl) GetForSchool(ctx context.Context, schoolID uuid.UUID, id uuid.UUID) (*BookingView, error) {
	v, err := q.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if v.SchoolID != schoolID {
		return nil, ErrViewNotFound
	}
	return v, nil
}

func (q *bookingQueriesImpl) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*BookingListItem, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return q.repo.FindByUserID(ctx, userID, int32(limit), int32(offset))
}

func (q *bookingQueriesImpl) ListBySchool(ctx context.Context, schoolID uuid.UUID, status *string, limit, offset int) ([]*BookingListItem, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return q.repo.FindBySchoolID(ctx, schoolID, status, int32(limit), int32(offset))
}

func (q *bookingQueriesImpl) SlotAvailability(ctx context.Context, timeSlotID uuid.UUID) (*SlotAvailabilityView, error) {
	v, err := q.repo.FindSlotAvailability(ctx, timeSlotID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return v, nil
}
