package request

import "github.com/google/uuid"

type CreateHoldRequest struct {
	TimeSlotID   uuid.UUID `json:"time_slot_id" binding:"required"`
	Participants int       `json:"participants" binding:"required,min=1"`
}

type ExtendHoldRequest struct {
	Minutes int `json:"minutes" binding:"required,min=1"`
}

type ClaimPaymentRequest struct {
	PayerName     string  `json:"payer_name" binding:"required"`
	UTR           string  `json:"utr" binding:"required"`
	ScreenshotURL *string `json:"screenshot_url,omitempty"`
}

type RejectDepositRequest struct {
	Note string `json:"note,omitempty"`
}
