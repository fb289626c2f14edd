//go:build unit

package api_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"tidebook/internal/handler/api"
	"tidebook/internal/pkg/config"
	"tidebook/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

const testWebhookSecret = "whsec_test"

type fakeWebhookPayments struct {
	commands.PaymentCommands
	gotOrderID string
	gotEvent   commands.GatewayEvent
	calls      int
	err        error
}

func (f *fakeWebhookPayments) HandleGatewayEvent(_ context.Context, orderID string, event commands.GatewayEvent) error {
	f.calls++
	f.gotOrderID = orderID
	f.gotEvent = event
	return f.err
}

type WebhookHandlerTestSuite struct {
	suite.Suite
	router   *gin.Engine
	payments *fakeWebhookPayments
}

func (s *WebhookHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.payments = &fakeWebhookPayments{}

	cfg := config.NewTestConfig()
	cfg.Razorpay.WebhookSecret = testWebhookSecret

	handler := api.NewWebhookHandler(s.payments, cfg)
	s.router.POST("/webhooks/razorpay", handler.HandleRazorpay)
}

func TestWebhookHandlerSuite(t *testing.T) {
	suite.Run(t, new(WebhookHandlerTestSuite))
}

func (s *WebhookHandlerTestSuite) post(body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Razorpay-Signature", signature)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func capturedBody(orderID string) []byte {
	return []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"order_id":"` + orderID + `"}}}}`)
}

func (s *WebhookHandlerTestSuite) TestValidSignatureProcessesEvent() {
	body := capturedBody("order_abc")

	w := s.post(body, sign(body))
	s.Equal(http.StatusOK, w.Code)
	s.Equal(1, s.payments.calls)
	s.Equal("order_abc", s.payments.gotOrderID)
	s.Equal(commands.EventPaymentCaptured, s.payments.gotEvent)
}

func (s *WebhookHandlerTestSuite) TestMissingSignatureRejected() {
	w := s.post(capturedBody("order_abc"), "")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Zero(s.payments.calls)
}

func (s *WebhookHandlerTestSuite) TestTamperedBodyRejected() {
	body := capturedBody("order_abc")
	signature := sign(body)
	tampered := capturedBody("order_xyz")

	w := s.post(tampered, signature)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Zero(s.payments.calls)
}

func (s *WebhookHandlerTestSuite) TestUnknownEventAcknowledged() {
	body := []byte(`{"event":"refund.processed","payload":{}}`)

	w := s.post(body, sign(body))
	s.Equal(http.StatusOK, w.Code)
	s.Zero(s.payments.calls)
}

func (s *WebhookHandlerTestSuite) TestUnknownOrderAcknowledged() {
	s.payments.err = commands.ErrPaymentNotFound
	body := capturedBody("order_unknown")

	w := s.post(body, sign(body))
	s.Equal(http.StatusOK, w.Code)
}

func (s *WebhookHandlerTestSuite) TestStoreFailureTriggersRetry() {
	s.payments.err = commands.ErrStoreFailed
	body := capturedBody("order_abc")

	w := s.post(body, sign(body))
	s.Equal(http.StatusInternalServerError, w.Code)
}

func (s *WebhookHandlerTestSuite) TestFailedEventRouted() {
	body := []byte(`{"event":"payment.failed","payload":{"payment":{"entity":{"order_id":"order_abc"}}}}`)

	w := s.post(body, sign(body))
	s.Equal(http.StatusOK, w.Code)
	s.Equal(commands.EventPaymentFailed, s.payments.gotEvent)
}
