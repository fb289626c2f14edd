package api

import (
	"errors"
	"net/http"
	"strconv"

	reqdto "tidebook/internal/handler/dto/request"
	resdto "tidebook/internal/handler/dto/response"
	"tidebook/internal/handler/middleware"
	"tidebook/internal/usecase/commands"
	"tidebook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	holds    commands.HoldCommands
	payments commands.PaymentCommands
	queries  queries.BookingQueries
}

func NewBookingHandler(holds commands.HoldCommands, payments commands.PaymentCommands, q queries.BookingQueries) *BookingHandler {
	return &BookingHandler{
		holds:    holds,
		payments: payments,
		queries:  q,
	}
}

// @Summary Create seat hold
// @Description Claim seats on a time slot and open a time-boxed hold
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateHoldRequest true "Hold request"
// @Success 201 {object} resdto.HoldResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /bookings/holds [post]
func (h *BookingHandler) CreateHold(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var req reqdto.CreateHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.holds.CreateHold(c.Request.Context(), userID, commands.CreateHoldInput{
		TimeSlotID:   req.TimeSlotID,
		Participants: req.Participants,
	})
	if err != nil {
		respondCommandError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resdto.FromHoldResult(result))
}

// @Summary Extend hold
// @Description Push the hold expiry forward, capped by the maximum hold lifetime
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.ExtendHoldRequest true "Extension request"
// @Success 200 {object} resdto.ExtendHoldResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /bookings/{id}/extend [post]
func (h *BookingHandler) ExtendHold(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	bookingID, err := parseBookingID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID format"})
		return
	}

	var req reqdto.ExtendHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	expiresAt, err := h.holds.ExtendHold(c.Request.Context(), userID, bookingID, req.Minutes)
	if err != nil {
		respondCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.ExtendHoldResponse{ExpiresAt: expiresAt})
}

// @Summary Cancel booking
// @Description Cancel own booking and release its seats
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /bookings/{id} [delete]
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	bookingID, err := parseBookingID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID format"})
		return
	}

	if err := h.holds.CancelByUser(c.Request.Context(), userID, bookingID); err != nil {
		respondCommandError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Claim manual payment
// @Description Record a manual UPI payment claim and open the verification window
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.ClaimPaymentRequest true "Payment claim"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /bookings/{id}/payment-claim [post]
func (h *BookingHandler) ClaimPayment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	bookingID, err := parseBookingID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID format"})
		return
	}

	var req reqdto.ClaimPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	err = h.payments.ClaimPayment(c.Request.Context(), userID, bookingID, commands.ClaimPaymentInput{
		PayerName:     req.PayerName,
		UTR:           req.UTR,
		ScreenshotURL: req.ScreenshotURL,
	})
	if err != nil {
		respondCommandError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Create gateway order
// @Description Register a payment gateway order for a held booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 201 {object} resdto.GatewayOrderResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /bookings/{id}/gateway-order [post]
func (h *BookingHandler) CreateGatewayOrder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	bookingID, err := parseBookingID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID format"})
		return
	}

	result, err := h.payments.CreateGatewayOrder(c.Request.Context(), userID, bookingID)
	if err != nil {
		respondCommandError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resdto.FromGatewayOrder(result))
}

// @Summary Get booking
// @Description Get own booking by ID
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 404 {object} map[string]string
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	bookingID, err := parseBookingID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID format"})
		return
	}

	view, err := h.queries.GetForUser(c.Request.Context(), userID, bookingID)
	if err != nil {
		respondQueryError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary List own bookings
// @Description List the current user's bookings, newest first
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.BookingListResponse
// @Router /bookings [get]
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	limit, offset := parsePagination(c)
	items, err := h.queries.ListByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondQueryError(c, err)
		return
	}

	resp := make([]*resdto.BookingListResponse, len(items))
	for i, it := range items {
		resp[i] = resdto.FromBookingListItem(it)
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Get slot availability
// @Description Current seats_left and pricing for a time slot
// @Tags slots
// @Produce json
// @Param id path string true "Time slot ID"
// @Success 200 {object} resdto.SlotAvailabilityResponse
// @Failure 404 {object} map[string]string
// @Router /slots/{id}/availability [get]
func (h *BookingHandler) GetSlotAvailability(c *gin.Context) {
	slotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid time slot ID format"})
		return
	}

	view, err := h.queries.SlotAvailability(c.Request.Context(), slotID)
	if err != nil {
		respondQueryError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromSlotAvailability(view))
}

func parseBookingID(c *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}

func parsePagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func respondCommandError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrBookingNotFound),
		errors.Is(err, commands.ErrSlotNotFound),
		errors.Is(err, commands.ErrHoldNotFound),
		errors.Is(err, commands.ErrPaymentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, commands.ErrSlotFull):
		c.JSON(http.StatusConflict, gin.H{"error": "Not enough seats left"})
	case errors.Is(err, commands.ErrHoldExpiredRace):
		c.JSON(http.StatusGone, gin.H{"error": "Hold expired before the operation completed"})
	case errors.Is(err, commands.ErrInvalidState):
		var ise *commands.InvalidStateError
		if errors.As(err, &ise) {
			c.JSON(http.StatusConflict, gin.H{
				"error":          "Operation not allowed in current state",
				"current_status": string(ise.Current),
			})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": "Operation not allowed in current state"})
	case errors.Is(err, commands.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed"})
	case errors.Is(err, commands.ErrUpstreamPayment):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Payment gateway unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func respondQueryError(c *gin.Context, err error) {
	if errors.Is(err, queries.ErrViewNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
