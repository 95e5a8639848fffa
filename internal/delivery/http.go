package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/pkg/logger"
	"github.com/ignite/newsletter/internal/service/sending"
	"github.com/rs/zerolog"
)

// maxErrorBody caps how much of a provider error response is kept.
const maxErrorBody = 4 << 10

// HTTPSender posts messages as JSON to a Postmark-style email API.
type HTTPSender struct {
	endpoint string
	sender   string
	token    string
	client   *http.Client
}

type sendEmailRequest struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HtmlBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
}

// NewHTTPSender creates a sender that posts to {baseURL}/email.
func NewHTTPSender(baseURL, sender, token string, timeout time.Duration) (*HTTPSender, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: email base_url is empty", sending.ErrNotConfigured)
	}
	endpoint, err := url.JoinPath(baseURL, "email")
	if err != nil {
		return nil, fmt.Errorf("email base_url: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSender{
		endpoint: endpoint,
		sender:   sender,
		token:    token,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// Send delivers msg in a single request.
func (s *HTTPSender) Send(ctx context.Context, msg *domain.EmailMessage) error {
	payload, err := json.Marshal(sendEmailRequest{
		From:     s.sender,
		To:       msg.To.String(),
		Subject:  msg.Subject,
		HtmlBody: msg.HTMLBody,
		TextBody: msg.TextBody,
	})
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Postmark-Server-Token", s.token)

	if err := doSend(s.client, req); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Debug().Str("provider", "http").Str("to", logger.RedactEmail(msg.To.String())).Msg("email sent")
	return nil
}

// doSend executes req and turns transport failures and non-2xx responses
// into errors wrapping sending.ErrTransport.
func doSend(client *http.Client, req *http.Request) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", sending.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %s returned %d: %s", sending.ErrTransport, req.URL.Host, resp.StatusCode, bytes.TrimSpace(body))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
