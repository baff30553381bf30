package handlers

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"curryhouse/internal/common/httpx"
	"curryhouse/internal/domain"
	"curryhouse/internal/payments/gateway"
)

type PaymentHandler struct {
	gw  gateway.Gateway
	log *logrus.Entry
}

func NewPaymentHandler(gw gateway.Gateway, log *logrus.Entry) *PaymentHandler {
	return &PaymentHandler{gw: gw, log: log}
}

// ClientConfig hands the ordering page the public key the hosted card
// widget needs to tokenize card data in the browser.
func (h *PaymentHandler) ClientConfig(w http.ResponseWriter, r *http.Request) {
	key := h.gw.TokenizationKey()
	if key == "" {
		httpx.Error(w, http.StatusServiceUnavailable, "payment gateway is not configured")
		return
	}
	httpx.JSON(w, http.StatusOK, domain.ClientConfigResponse{TokenizationKey: key})
}

// Process captures a payment against the submitted nonce. Declines carry
// the processor's message through untouched; nothing is retried.
func (h *PaymentHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req domain.PaymentProcessRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Nonce == "" {
		httpx.Error(w, http.StatusBadRequest, "payment nonce is required")
		return
	}
	if req.Amount <= 0 {
		httpx.Error(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	txnID, err := h.gw.Sale(r.Context(), req.Nonce, req.Amount, req.OrderNumber)
	if err != nil {
		var decline *gateway.DeclineError
		if errors.As(err, &decline) {
			httpx.Error(w, http.StatusPaymentRequired, decline.Message)
			return
		}
		h.log.WithError(err).Error("gateway sale failed")
		httpx.Error(w, http.StatusBadGateway, "payment could not be processed")
		return
	}

	httpx.JSON(w, http.StatusOK, domain.PaymentProcessResponse{
		TransactionID: txnID,
		Status:        domain.PaymentPaid,
	})
}
