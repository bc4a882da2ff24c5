package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/drivehub/drivehub-backend/internal/domain/providers"
	"github.com/drivehub/drivehub-backend/pkg/config"
)

// HTTPEmailSender delivers mail through a transactional mail HTTP API.
type HTTPEmailSender struct {
	apiURL     string
	apiKey     string
	from       string
	httpClient *http.Client
}

// NewHTTPEmailSender creates a sender for the configured mail API.
func NewHTTPEmailSender(cfg *config.MailConfig) (*HTTPEmailSender, error) {
	if cfg.APIURL == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("MAIL_API_URL and MAIL_API_KEY must be set")
	}

	return &HTTPEmailSender{
		apiURL: cfg.APIURL,
		apiKey: cfg.APIKey,
		from:   cfg.From,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

type emailRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// Send delivers a plain-text message to a single recipient.
func (s *HTTPEmailSender) Send(ctx context.Context, to, subject, body string) error {
	payload, err := json.Marshal(emailRequest{
		From:    s.from,
		To:      to,
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call mail API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("mail API returned %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// LogEmailSender logs messages instead of sending them. Used when no mail
// API is configured.
type LogEmailSender struct{}

// NewLogEmailSender creates a log-only sender.
func NewLogEmailSender() *LogEmailSender {
	return &LogEmailSender{}
}

// Send logs the message and succeeds.
func (s *LogEmailSender) Send(ctx context.Context, to, subject, body string) error {
	log.Info().Str("to", to).Str("subject", subject).Msg("email delivery skipped (no mail API configured)")
	return nil
}

var (
	_ providers.EmailSender = (*HTTPEmailSender)(nil)
	_ providers.EmailSender = (*LogEmailSender)(nil)
)
