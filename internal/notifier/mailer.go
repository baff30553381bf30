package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"curryhouse/internal/config"
)

// Mailer delivers a message through whatever email API is configured.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type apiMailer struct {
	cfg  config.MailConfig
	http *http.Client

	// retryWait is how long to sleep after a 429 before trying again.
	retryWait time.Duration
}

func NewMailer(cfg config.MailConfig) Mailer {
	return &apiMailer{
		cfg:       cfg,
		http:      &http.Client{Timeout: 15 * time.Second},
		retryWait: 2 * time.Second,
	}
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// Send posts the message to the mail API. Rate limiting (HTTP 429) is
// waited out and retried up to twice; any other failure is final.
func (m *apiMailer) Send(ctx context.Context, to, subject, body string) error {
	payload, err := json.Marshal(sendRequest{
		From:    m.cfg.From,
		To:      to,
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt <= 2; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(m.retryWait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			m.cfg.BaseURL+"/messages", bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+m.cfg.APIKey)

		resp, err := m.http.Do(req)
		if err != nil {
			return fmt.Errorf("mail request: %w", err)
		}
		resp.Body.Close()

		switch {
		case resp.StatusCode < 300:
			return nil
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("mail API rate limited")
			continue
		default:
			return fmt.Errorf("mail API status %d", resp.StatusCode)
		}
	}
	return lastErr
}
