package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"tidebook/internal/pkg/config"
	"tidebook/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	payments commands.PaymentCommands
	secret   string
}

func NewWebhookHandler(payments commands.PaymentCommands, cfg config.Config) *WebhookHandler {
	return &WebhookHandler{
		payments: payments,
		secret:   cfg.Razorpay.WebhookSecret,
	}
}

type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// @Summary Razorpay webhook
// @Description Receive payment events from the gateway
// @Tags webhooks
// @Accept json
// @Produce json
// @Param X-Razorpay-Signature header string true "HMAC-SHA256 of the raw body"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /webhooks/razorpay [post]
func (h *WebhookHandler) HandleRazorpay(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	if !h.verifySignature(body, c.GetHeader("X-Razorpay-Signature")) {
		slog.Warn("webhook signature mismatch", "path", c.Request.URL.Path)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		return
	}

	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	var event commands.GatewayEvent
	switch env.Event {
	case string(commands.EventPaymentCaptured):
		event = commands.EventPaymentCaptured
	case string(commands.EventPaymentFailed):
		event = commands.EventPaymentFailed
	default:
		// Unhandled event types are acknowledged so the gateway stops
		// redelivering them.
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	orderID := env.Payload.Payment.Entity.OrderID
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing order id"})
		return
	}

	if err := h.payments.HandleGatewayEvent(c.Request.Context(), orderID, event); err != nil {
		switch {
		case errors.Is(err, commands.ErrPaymentNotFound):
			// Order we never created; acknowledge so it is not redelivered.
			slog.Warn("webhook for unknown order", "order_id", orderID)
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		case errors.Is(err, commands.ErrHoldExpiredRace):
			slog.Warn("payment captured after hold expiry", "order_id", orderID)
			c.JSON(http.StatusOK, gin.H{"status": "expired"})
		default:
			// 5xx makes the gateway retry.
			slog.Error("webhook processing failed", "order_id", orderID, "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "processed"})
}

func (h *WebhookHandler) verifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
