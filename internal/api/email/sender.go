// Package email renders and delivers transactional email. Delivery goes
// through an HTTP email API; rendering uses embedded html/template files.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrSendFailed reports that the email API rejected or failed a send.
var ErrSendFailed = errors.New("email: send failed")

// Sender delivers a single email. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// APISender sends through a Resend-compatible HTTP email API.
type APISender struct {
	BaseURL    string
	APIKey     string
	From       string
	HTTPClient *http.Client
}

// NewAPISender builds a sender with a sane default timeout.
func NewAPISender(baseURL, apiKey, from string) *APISender {
	return &APISender{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		From:       from,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *APISender) Send(ctx context.Context, to, subject, html string) error {
	payload, err := json.Marshal(map[string]any{
		"from":    s.From,
		"to":      []string{to},
		"subject": subject,
		"html":    html,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.BaseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrSendFailed, resp.StatusCode)
	}
	return nil
}
