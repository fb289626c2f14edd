package response

import (
	"time"

	"tidebook/internal/usecase/commands"
	"tidebook/internal/usecase/queries"

	"github.com/google/uuid"
)

type HoldResponse struct {
	BookingID      uuid.UUID `json:"booking_id"`
	BookingCode    string    `json:"booking_code"`
	AmountRupees   int64     `json:"amount_rupees"`
	DepositPercent int       `json:"deposit_percent"`
	ExpiresAt      time.Time `json:"expires_at"`
}

func FromHoldResult(r *commands.CreateHoldResult) *HoldResponse {
	return &HoldResponse{
		BookingID:      r.BookingID,
		BookingCode:    r.BookingCode,
		AmountRupees:   r.AmountRupees,
		DepositPercent: r.DepositPercent,
		ExpiresAt:      r.ExpiresAt,
	}
}

type ExtendHoldResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
}

type GatewayOrderResponse struct {
	OrderID      string `json:"order_id"`
	AmountRupees int64  `json:"amount_rupees"`
	Currency     string `json:"currency"`
}

func FromGatewayOrder(r *commands.GatewayOrderResult) *GatewayOrderResponse {
	return &GatewayOrderResponse{
		OrderID:      r.OrderID,
		AmountRupees: r.AmountRupees,
		Currency:     r.Currency,
	}
}

type BookingResponse struct {
	ID                    uuid.UUID  `json:"id"`
	Code                  string     `json:"code"`
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
}

func FromBookingView(v *queries.BookingView) *BookingResponse {
	return &BookingResponse{
		ID:                    v.ID,
		Code:                  v.Code,
		TimeSlotID:            v.TimeSlotID,
		SlotDate:              v.SlotDate,
		SlotStartTime:         v.SlotStartTime,
		Participants:          v.Participants,
		AmountRupees:          v.AmountRupees,
		Status:                v.Status,
		HoldExpiresAt:         v.HoldExpiresAt,
		VerificationExpiresAt: v.VerificationExpiresAt,
		PaymentProvider:       v.PaymentProvider,
		PaymentStatus:         v.PaymentStatus,
		PayerName:             v.PayerName,
		UTR:                   v.UTR,
		CreatedAt:             v.CreatedAt,
	}
}

type BookingListResponse struct {
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

func FromBookingListItem(it *queries.BookingListItem) *BookingListResponse {
	return &BookingListResponse{
		ID:            it.ID,
		Code:          it.Code,
		TimeSlotID:    it.TimeSlotID,
		SlotDate:      it.SlotDate,
		SlotStartTime: it.SlotStartTime,
		Participants:  it.Participants,
		AmountRupees:  it.AmountRupees,
		Status:        it.Status,
		CreatedAt:     it.CreatedAt,
	}
}

type SlotAvailabilityResponse struct {
	TimeSlotID     uuid.UUID `json:"time_slot_id"`
	Date           time.Time `json:"date"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	Capacity       int       `json:"capacity"`
	SeatsLeft      int       `json:"seats_left"`
	PricePerPerson int64     `json:"price_per_person"`
	Status         string    `json:"status"`
}

func FromSlotAvailability(v *queries.SlotAvailabilityView) *SlotAvailabilityResponse {
	return &SlotAvailabilityResponse{
		TimeSlotID:     v.TimeSlotID,
		Date:           v.Date,
		StartTime:      v.StartTime,
		EndTime:        v.EndTime,
		Capacity:       v.Capacity,
		SeatsLeft:      v.SeatsLeft,
		PricePerPerson: v.PricePerPerson,
		Status:         v.Status,
	}
}
