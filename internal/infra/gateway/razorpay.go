// Package gateway talks to the hosted payment provider over its REST API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"tidebook/internal/pkg/config"
	"tidebook/internal/pkg/errs"
)

const requestTimeout = 10 * time.Second

type RazorpayClient struct {
	baseURL   string
	keyID     string
	keySecret string
	httpc     *http.Client
}

func NewRazorpayClient(cfg config.RazorpayConfig) *RazorpayClient {
	return &RazorpayClient{
		baseURL:   cfg.BaseURL,
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		httpc:     &http.Client{Timeout: requestTimeout},
	}
}

type orderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type orderResponse struct {
	ID string `json:"id"`
}

type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder registers an order with the provider; the amount is in the
// currency's minor unit (paise for INR).
func (c *RazorpayClient) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (string, error) {
	body, err := json.Marshal(orderRequest{
		Amount:   amountPaise,
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return "", errs.Wrap(err, "failed to encode order request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return "", errs.Wrap(err, "failed to build order request")
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", errs.Wrap(err, "order request failed")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", errs.Wrap(err, "failed to read order response")
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Description != "" {
			return "", errs.New("gateway rejected order: " + apiErr.Error.Description)
		}
		return "", errs.New("gateway returned status " + resp.Status)
	}

	var order orderResponse
	if err := json.Unmarshal(data, &order); err != nil {
		return "", errs.Wrap(err, "failed to decode order response")
	}
	if order.ID == "" {
		return "", errs.New("gateway returned an empty order id")
	}
	return order.ID, nil
}
