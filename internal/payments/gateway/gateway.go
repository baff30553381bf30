// Package gateway talks to the hosted card processor. Card data never
// reaches this backend; the hosted widget exchanges it for a one-time
// nonce and only that nonce travels here.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"curryhouse/internal/config"
)

type Gateway interface {
	TokenizationKey() string
	Sale(ctx context.Context, nonce string, amount float64, orderNumber string) (string, error)
}

// DeclineError carries the processor's own message, which is surfaced to
// the customer verbatim.
type DeclineError struct {
	Message string
}

func (e *DeclineError) Error() string { return e.Message }

type Client struct {
	cfg  config.GatewayConfig
	http *http.Client
}

func New(cfg config.GatewayConfig) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) TokenizationKey() string { return c.cfg.TokenizationKey }

type saleRequest struct {
	PaymentMethodNonce  string  `json:"payment_method_nonce"`
	Amount              float64 `json:"amount"`
	OrderID             string  `json:"order_id,omitempty"`
	SubmitForSettlement bool    `json:"submit_for_settlement"`
}

type saleResponse struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}

// Sale authorizes and captures the amount against the tokenized card.
func (c *Client) Sale(ctx context.Context, nonce string, amount float64, orderNumber string) (string, error) {
	body, err := json.Marshal(saleRequest{
		PaymentMethodNonce:  nonce,
		Amount:              amount,
		OrderID:             orderNumber,
		SubmitForSettlement: true,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/transactions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.MerchantID, c.cfg.PrivateKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var sr saleResponse
	_ = json.Unmarshal(raw, &sr)

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		if sr.TransactionID == "" {
			return "", fmt.Errorf("gateway returned no transaction id")
		}
		return sr.TransactionID, nil
	case resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusUnprocessableEntity:
		msg := sr.Message
		if msg == "" {
			msg = "card declined"
		}
		return "", &DeclineError{Message: msg}
	default:
		return "", fmt.Errorf("gateway error: status %d", resp.StatusCode)
	}
}
