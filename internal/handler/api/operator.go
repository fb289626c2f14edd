package api

import (
	"net/http"

	"tidebook/internal/domain/identity"
	reqdto "tidebook/internal/handler/dto/request"
	resdto "tidebook/internal/handler/dto/response"
	"tidebook/internal/handler/middleware"
	"tidebook/internal/usecase/commands"
	"tidebook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OperatorHandler covers the school-operator side of the verification
// workflow. Every route is scoped to the operator's school claim.
type OperatorHandler struct {
	payments commands.PaymentCommands
	queries  queries.BookingQueries
}

func NewOperatorHandler(payments commands.PaymentCommands, q queries.BookingQueries) *OperatorHandler {
	return &OperatorHandler{
		payments: payments,
		queries:  q,
	}
}

// @Summary Confirm deposit
// @Description Verify a claimed deposit and lock the booking in
// @Tags operator
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /operator/bookings/{id}/confirm [post]
func (h *OperatorHandler) ConfirmDeposit(c *gin.Context) {
	operatorID, bookingID, ok := h.operatorScope(c)
	if !ok {
		return
	}

	if err := h.payments.ConfirmDeposit(c.Request.Context(), operatorID, bookingID); err != nil {
		respondCommandError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Reject deposit
// @Description Reject a claimed deposit and release the seats
// @Tags operator
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.RejectDepositRequest false "Rejection note"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /operator/bookings/{id}/reject [post]
func (h *OperatorHandler) RejectDeposit(c *gin.Context) {
	operatorID, bookingID, ok := h.operatorScope(c)
	if !ok {
		return
	}

	var req reqdto.RejectDepositRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.payments.RejectDeposit(c.Request.Context(), operatorID, bookingID, req.Note); err != nil {
		respondCommandError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Cancel booking
// @Description Cancel a booking on behalf of the school and release the seats
// @Tags operator
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /operator/bookings/{id}/cancel [post]
func (h *OperatorHandler) CancelBooking(c *gin.Context) {
	operatorID, bookingID, ok := h.operatorScope(c)
	if !ok {
		return
	}

	if err := h.payments.CancelBySchool(c.Request.Context(), operatorID, bookingID); err != nil {
		respondCommandError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Refund deposit
// @Description Refund a confirmed deposit and release the seats
// @Tags operator
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /operator/bookings/{id}/refund [post]
func (h *OperatorHandler) RefundDeposit(c *gin.Context) {
	operatorID, bookingID, ok := h.operatorScope(c)
	if !ok {
		return
	}

	if err := h.payments.RefundDeposit(c.Request.Context(), operatorID, bookingID); err != nil {
		respondCommandError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Consume booking
// @Description Mark a paid booking as consumed after the session happens
// @Tags operator
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /operator/bookings/{id}/consume [post]
func (h *OperatorHandler) ConsumeBooking(c *gin.Context) {
	operatorID, bookingID, ok := h.operatorScope(c)
	if !ok {
		return
	}

	if err := h.payments.ConsumeBooking(c.Request.Context(), operatorID, bookingID); err != nil {
		respondCommandError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Get school booking
// @Description Get a booking belonging to the operator's school
// @Tags operator
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 404 {object} map[string]string
// @Router /operator/bookings/{id} [get]
func (h *OperatorHandler) GetBooking(c *gin.Context) {
	schoolID, ok := middleware.GetSchoolID(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "School scope required"})
		return
	}

	bookingID, err := parseBookingID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID format"})
		return
	}

	view, err := h.queries.GetForSchool(c.Request.Context(), schoolID, bookingID)
	if err != nil {
		respondQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary List school bookings
// @Description List bookings for the operator's school, optionally by status
// @Tags operator
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by booking status"
// @Success 200 {array} resdto.BookingListResponse
// @Router /operator/bookings [get]
func (h *OperatorHandler) ListBookings(c *gin.Context) {
	schoolID, ok := middleware.GetSchoolID(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "School scope required"})
		return
	}

	var status *string
	if s := c.Query("status"); s != "" {
		status = &s
	}

	limit, offset := parsePagination(c)
	items, err := h.queries.ListBySchool(c.Request.Context(), schoolID, status, limit, offset)
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

// operatorScope resolves the caller and target booking, and for operators
// verifies the booking belongs to their school. Admins pass without a school
// claim.
func (h *OperatorHandler) operatorScope(c *gin.Context) (operatorID, bookingID uuid.UUID, ok bool) {
	principal, found := middleware.GetPrincipal(c)
	if !found {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return uuid.Nil, uuid.Nil, false
	}

	bookingID, err := parseBookingID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID format"})
		return uuid.Nil, uuid.Nil, false
	}

	if principal.Role != identity.RoleAdmin {
		if principal.SchoolID == nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "School scope required"})
			return uuid.Nil, uuid.Nil, false
		}
		if _, err := h.queries.GetForSchool(c.Request.Context(), *principal.SchoolID, bookingID); err != nil {
			respondQueryError(c, err)
			return uuid.Nil, uuid.Nil, false
		}
	}
	return principal.UserID, bookingID, true
}
