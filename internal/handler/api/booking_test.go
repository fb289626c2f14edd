//go:build unit

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tidebook/internal/domain/booking"
	"tidebook/internal/handler/api"
	"tidebook/internal/usecase"
	"tidebook/internal/usecase/commands"
	"tidebook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type fakeHoldCommands struct {
	createResult *commands.CreateHoldResult
	createErr    error
	extendResult time.Time
	extendErr    error
	cancelErr    error
}

func (f *fakeHoldCommands) CreateHold(_ context.Context, _ uuid.UUID, _ commands.CreateHoldInput) (*commands.CreateHoldResult, error) {
	return f.createResult, f.createErr
}

func (f *fakeHoldCommands) ExtendHold(_ context.Context, _, _ uuid.UUID, _ int) (time.Time, error) {
	return f.extendResult, f.extendErr
}

func (f *fakeHoldCommands) CancelByUser(_ context.Context, _, _ uuid.UUID) error {
	return f.cancelErr
}

func (f *fakeHoldCommands) ExpireHolds(_ context.Context) (int, error) {
	return 0, nil
}

type fakePaymentCommands struct {
	commands.PaymentCommands
	claimErr error
	orderRes *commands.GatewayOrderResult
	orderErr error
}

func (f *fakePaymentCommands) ClaimPayment(_ context.Context, _, _ uuid.UUID, _ commands.ClaimPaymentInput) error {
	return f.claimErr
}

func (f *fakePaymentCommands) CreateGatewayOrder(_ context.Context, _, _ uuid.UUID) (*commands.GatewayOrderResult, error) {
	return f.orderRes, f.orderErr
}

type fakeBookingQueries struct {
	view    *queries.BookingView
	viewErr error
	items   []*queries.BookingListItem
	listErr error
}

func (f *fakeBookingQueries) GetForUser(_ context.Context, _, _ uuid.UUID) (*queries.BookingView, error) {
	return f.view, f.viewErr
}

func (f *fakeBookingQueries) GetForSchool(_ context.Context, _, _ uuid.UUID) (*queries.BookingView, error) {
	return f.view, f.viewErr
}

func (f *fakeBookingQueries) ListByUser(_ context.Context, _ uuid.UUID, _, _ int) ([]*queries.BookingListItem, error) {
	return f.items, f.listErr
}

func (f *fakeBookingQueries) ListBySchool(_ context.Context, _ uuid.UUID, _ *string, _, _ int) ([]*queries.BookingListItem, error) {
	return f.items, f.listErr
}

func (f *fakeBookingQueries) SlotAvailability(_ context.Context, _ uuid.UUID) (*queries.SlotAvailabilityView, error) {
	return nil, queries.ErrViewNotFound
}

type BookingHandlerTestSuite struct {
	suite.Suite
	router   *gin.Engine
	holds    *fakeHoldCommands
	payments *fakePaymentCommands
	queries  *fakeBookingQueries
	userID   uuid.UUID
}

func (s *BookingHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.holds = &fakeHoldCommands{}
	s.payments = &fakePaymentCommands{}
	s.queries = &fakeBookingQueries{}
	s.userID = uuid.New()

	handler := api.NewBookingHandler(s.holds, s.payments, s.queries)

	authStub := func(c *gin.Context) {
		c.Set("principal", usecase.Principal{UserID: s.userID})
		c.Next()
	}

	s.router.POST("/bookings/holds", authStub, handler.CreateHold)
	s.router.GET("/bookings/:id", authStub, handler.GetBooking)
	s.router.GET("/bookings", authStub, handler.ListMyBookings)
	s.router.DELETE("/bookings/:id", authStub, handler.CancelBooking)
	s.router.POST("/bookings/:id/extend", authStub, handler.ExtendHold)
	s.router.POST("/bookings/:id/payment-claim", authStub, handler.ClaimPayment)
	s.router.POST("/bookings/:id/gateway-order", authStub, handler.CreateGatewayOrder)
	s.router.GET("/slots/:id/availability", handler.GetSlotAvailability)
}

func TestBookingHandlerSuite(t *testing.T) {
	suite.Run(t, new(BookingHandlerTestSuite))
}

func (s *BookingHandlerTestSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *BookingHandlerTestSuite) TestCreateHoldSuccess() {
	bookingID := uuid.New()
	s.holds.createResult = &commands.CreateHoldResult{
		BookingID:      bookingID,
		BookingCode:    "TB-1A2B3C4D",
		AmountRupees:   900,
		DepositPercent: 15,
		ExpiresAt:      time.Now().Add(5 * time.Minute),
	}

	w := s.do(http.MethodPost, "/bookings/holds", gin.H{
		"time_slot_id": uuid.New().String(),
		"participants": 6,
	})

	s.Equal(http.StatusCreated, w.Code)

	var resp map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(bookingID.String(), resp["booking_id"])
	s.Equal("TB-1A2B3C4D", resp["booking_code"])
	s.Equal(float64(900), resp["amount_rupees"])
	s.Equal(float64(15), resp["deposit_percent"])
}

func (s *BookingHandlerTestSuite) TestCreateHoldSlotFullMapsToConflict() {
	s.holds.createErr = commands.ErrSlotFull

	w := s.do(http.MethodPost, "/bookings/holds", gin.H{
		"time_slot_id": uuid.New().String(),
		"participants": 2,
	})
	s.Equal(http.StatusConflict, w.Code)
}

func (s *BookingHandlerTestSuite) TestCreateHoldMissingFields() {
	w := s.do(http.MethodPost, "/bookings/holds", gin.H{
		"participants": 2,
	})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *BookingHandlerTestSuite) TestCancelInvalidStateReportsCurrentStatus() {
	s.holds.cancelErr = &commands.InvalidStateError{Op: "cancel booking", Current: booking.StatusExpired}

	w := s.do(http.MethodDelete, "/bookings/"+uuid.New().String(), nil)
	s.Equal(http.StatusConflict, w.Code)

	var resp map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("expired", resp["current_status"])
}

func (s *BookingHandlerTestSuite) TestExtendHoldExpiredRaceMapsToGone() {
	s.holds.extendErr = commands.ErrHoldExpiredRace

	w := s.do(http.MethodPost, "/bookings/"+uuid.New().String()+"/extend", gin.H{"minutes": 10})
	s.Equal(http.StatusGone, w.Code)
}

func (s *BookingHandlerTestSuite) TestClaimPaymentAccepted() {
	w := s.do(http.MethodPost, "/bookings/"+uuid.New().String()+"/payment-claim", gin.H{
		"payer_name": "A Kumar",
		"utr":        "UTR0001",
	})
	s.Equal(http.StatusNoContent, w.Code)
}

func (s *BookingHandlerTestSuite) TestGatewayOrderUpstreamFailureMapsToBadGateway() {
	s.payments.orderErr = commands.ErrUpstreamPayment

	w := s.do(http.MethodPost, "/bookings/"+uuid.New().String()+"/gateway-order", nil)
	s.Equal(http.StatusBadGateway, w.Code)
}

func (s *BookingHandlerTestSuite) TestGetBookingNotFound() {
	s.queries.viewErr = queries.ErrViewNotFound

	w := s.do(http.MethodGet, "/bookings/"+uuid.New().String(), nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *BookingHandlerTestSuite) TestGetBookingInvalidID() {
	w := s.do(http.MethodGet, "/bookings/not-a-uuid", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *BookingHandlerTestSuite) TestListMyBookings() {
	s.queries.items = []*queries.BookingListItem{
		{ID: uuid.New(), Code: "TB-AAAA1111", Status: "held"},
		{ID: uuid.New(), Code: "TB-BBBB2222", Status: "paid_deposit"},
	}

	w := s.do(http.MethodGet, "/bookings", nil)
	s.Equal(http.StatusOK, w.Code)

	var resp []map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Len(resp, 2)
	s.Equal("TB-AAAA1111", resp[0]["code"])
}

func (s *BookingHandlerTestSuite) TestSlotAvailabilityNotFound() {
	w := s.do(http.MethodGet, "/slots/"+uuid.New().String()+"/availability", nil)
	s.Equal(http.StatusNotFound, w.Code)
}
